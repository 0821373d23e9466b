package web

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/pkg/extract"
)

// blockedTags are stripped from rendered HTML before text extraction;
// blockedClasses are additionally dropped as selectors on top of the tag list.
var blockedTags = []string{"script", "style", "nav", "header", "footer", "aside"}
var blockedClasses = []string{".advert", ".ad", ".ads", ".sponsored", ".newsletter", ".cookie", ".banner"}

var errorPageMarkers = []string{
	"upstream connect error", "404 page not found", "403 forbidden",
	"502 bad gateway", "503 service unavailable", "504 gateway timeout",
}

// HeadlessBrowser renders the page in a pooled headless Chrome instance,
// strips boilerplate containers, and reads the remaining text. Gated by a
// feature flag in the caller. A 403, 404, 502, 503 or 504 status on the
// document navigation cancels the attempt; no in-browser readability or
// metadata pass is run on that path.
type HeadlessBrowser struct {
	Pool              *BrowserPool
	Timeout           time.Duration
	CaptureScreenshot bool
	log               logging.Logger
}

func NewHeadlessBrowser(pool *BrowserPool, captureScreenshot bool) *HeadlessBrowser {
	return &HeadlessBrowser{
		Pool:              pool,
		Timeout:           30 * time.Second,
		CaptureScreenshot: captureScreenshot,
		log:               logging.Get().WithField("component", "headless_browser"),
	}
}

func (h *HeadlessBrowser) Name() string { return "HeadlessBrowser" }

func (h *HeadlessBrowser) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	taskCtx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	instance, err := h.Pool.Get(taskCtx)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("acquire browser instance: %w", err)
	}
	defer h.Pool.Put(instance)

	page, err := h.setupPage(instance)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("setup page: %w", err)
	}

	var closeMu sync.Mutex
	closed := false
	closePage := func() {
		closeMu.Lock()
		defer closeMu.Unlock()
		if !closed {
			page.Close()
			closed = true
		}
	}
	defer closePage()

	url := src.Input.Href
	wait := page.EachEvent(func(e *proto.NetworkResponseReceived) {
		if e.Type == proto.NetworkResourceTypeDocument && e.Response.URL == url {
			switch e.Response.Status {
			case 403, 404, 502, 503, 504:
				h.log.Warn("error status on navigation, aborting", logging.Fields{
					"status": e.Response.Status, "url": url,
				})
				cancel()
			}
		}
	})
	defer wait()

	if err := page.Context(taskCtx).Navigate(url); err != nil {
		return extract.Outcome{}, fmt.Errorf("navigate: %w", err)
	}

	if err := page.Context(taskCtx).WaitLoad(); err != nil && !errors.Is(taskCtx.Err(), context.Canceled) {
		h.log.Warn("wait for load failed", logging.Fields{"error": err.Error()})
	}

	html, err := page.HTML()
	if err != nil {
		html = ""
	}

	if isErrorPage(html) {
		return extract.Outcome{}, fmt.Errorf("detected error page for %s", url)
	}

	text := stripBoilerplate(html)

	outcome := extract.Outcome{Text: text, Method: h.Name()}
	if h.CaptureScreenshot {
		if shot, err := h.takeScreenshot(page); err == nil {
			outcome.Screenshot = shot
		}
	}
	return outcome, nil
}

func (h *HeadlessBrowser) setupPage(instance *BrowserInstance) (*rod.Page, error) {
	page, err := instance.Browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	}); err != nil {
		return nil, err
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: 1366, Height: 768}); err != nil {
		return nil, err
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(hijack *rod.Hijack) {
		switch hijack.Request.Type() {
		case proto.NetworkResourceTypeImage, proto.NetworkResourceTypeFont, proto.NetworkResourceTypeMedia:
			hijack.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		hijack.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	return page, nil
}

func (h *HeadlessBrowser) takeScreenshot(page *rod.Page) ([]byte, error) {
	var data []byte
	err := rod.Try(func() {
		data = page.MustScreenshot()
	})
	return data, err
}

func isErrorPage(html string) bool {
	if len(html) >= 400 {
		return false
	}
	lower := strings.ToLower(html)
	for _, marker := range errorPageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func stripBoilerplate(html string) string {
	// Crude but safe tag/class stripping used only as a cheap text pass for
	// the rendered DOM; the outer ReadabilityLocal strategy does the real
	// HTML parsing. Here we only need a best-effort plain-text rendering.
	text := html
	for _, tag := range blockedTags {
		text = stripTagBlocks(text, tag)
	}
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		doc.Find(strings.Join(blockedClasses, ", ")).Remove()
		if rendered, err := doc.Html(); err == nil {
			text = rendered
		}
	}
	return stripAngleBrackets(text)
}

func stripTagBlocks(html, tag string) string {
	open := "<" + tag
	close := "</" + tag + ">"
	for {
		start := strings.Index(strings.ToLower(html), open)
		if start < 0 {
			break
		}
		end := strings.Index(strings.ToLower(html[start:]), close)
		if end < 0 {
			break
		}
		html = html[:start] + html[start+end+len(close):]
	}
	return html
}

func stripAngleBrackets(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch r {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
