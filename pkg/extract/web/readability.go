package web

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

// containerSelectors are tried, in order, when the readability heuristic
// itself does not produce a confident result — grounded on the same
// fallback chain used by article-extraction libraries in the wild.
var containerSelectors = []string{"article", ".post-content", ".entry-content", ".content", ".main-content"}

// ReadabilityLocal fetches the URL itself and runs a readability-style
// heuristic locally, falling back to container-selector scraping.
type ReadabilityLocal struct {
	Fetcher   *fetchx.Fetcher
	sanitizer *bluemonday.Policy
}

func NewReadabilityLocal(fetcher *fetchx.Fetcher) *ReadabilityLocal {
	return &ReadabilityLocal{Fetcher: fetcher, sanitizer: bluemonday.StrictPolicy()}
}

func (r *ReadabilityLocal) Name() string { return "ReadabilityLocal" }

func (r *ReadabilityLocal) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	res, err := r.Fetcher.Get(ctx, src.Input.Href)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("readability fetch: %w", err)
	}

	pageURL, err := url.Parse(src.Input.Href)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("parse page url: %w", err)
	}

	if article, err := readability.FromReader(strings.NewReader(string(res.Body)), pageURL); err == nil {
		text := strings.TrimSpace(article.TextContent)
		if text != "" {
			return extract.Outcome{Text: r.sanitizer.Sanitize(text), Method: r.Name()}, nil
		}
	}

	text, err := r.fromContainerSelectors(string(res.Body))
	if err != nil {
		return extract.Outcome{}, err
	}
	return extract.Outcome{Text: r.sanitizer.Sanitize(text), Method: r.Name()}, nil
}

func (r *ReadabilityLocal) fromContainerSelectors(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html for container selectors: %w", err)
	}
	doc.Find("script,style,nav,header,footer").Remove()

	for _, sel := range containerSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("no container selector matched")
}
