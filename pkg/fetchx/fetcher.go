// Package fetchx implements the bounded HTTP Fetcher: user-agent rotation,
// per-host rate limiting, a hard timeout, a response size cap, and MIME
// sniffing on the response body.
package fetchx

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"mime"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/internal/pipelineerr"
	"github.com/adaudit/compliance/internal/retry"
)

const (
	defaultTimeout  = 60 * time.Second
	maxMediaSize    = 100 << 20
	defaultAttempts = 3
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 18_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 Mobile/15E148 Safari/604.1",
}

// Fetcher performs bounded HTTP GETs. It is a process-wide singleton, safe
// for concurrent use: per-host limiters are created lazily under a mutex.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	maxBytes   int64
	log        logging.Logger
	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

func New(log logging.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{},
		timeout:  defaultTimeout,
		maxBytes: maxMediaSize,
		log:      log.WithField("component", "fetcher"),
		limiters: make(map[string]*rate.Limiter),
	}
}

// WithMaxBytes overrides the body size cap, used by tests and by the
// MAX_MEDIA_SIZE configuration knob.
func (f *Fetcher) WithMaxBytes(n int64) *Fetcher {
	f.maxBytes = n
	return f
}

// Result is the (bytes, mime) pair the Extractors family consumes.
type Result struct {
	Body []byte
	MIME string
}

// Get performs a bounded GET against target, enforcing the timeout, size
// cap and user-agent rotation described in SPEC_FULL §4.2.
func (f *Fetcher) Get(ctx context.Context, target string) (Result, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Result{}, pipelineerr.Wrap(pipelineerr.KindInputInvalid, "malformed fetch url", err)
	}

	if err := f.hostLimiter(u.Hostname()).Wait(ctx); err != nil {
		return Result{}, pipelineerr.Wrap(pipelineerr.KindFetchNetwork, "rate limiter wait failed", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	result, err := retry.Do(ctx, defaultAttempts, func() (Result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return Result{}, pipelineerr.Wrap(pipelineerr.KindInputInvalid, "build fetch request", err)
		}
		req.Header.Set("User-Agent", randomUserAgent())

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, pipelineerr.Wrap(pipelineerr.KindFetchTimeout, "fetch timed out", err)
			}
			return Result{}, pipelineerr.Wrap(pipelineerr.KindFetchNetwork, "fetch failed", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return Result{}, &pipelineerr.Error{
				Kind:    pipelineerr.KindFetchHTTP,
				Message: "non-2xx response",
				Status:  resp.StatusCode,
			}
		}

		limited := io.LimitReader(resp.Body, f.maxBytes+1)
		body, err := io.ReadAll(limited)
		if err != nil {
			return Result{}, pipelineerr.Wrap(pipelineerr.KindFetchNetwork, "read response body", err)
		}
		if int64(len(body)) > f.maxBytes {
			return Result{}, pipelineerr.New(pipelineerr.KindPayloadTooLarge, "response exceeds max media size")
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(body)
		}
		mimeType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			mimeType = contentType
		}

		return Result{Body: body, MIME: mimeType}, nil
	})
	if err != nil {
		return Result{}, err
	}

	f.log.Debug("fetch completed", logging.Fields{
		"url": target, "bytes": len(result.Body), "mime": result.MIME,
	})
	return result, nil
}

// Post performs a bounded POST, used by the innertube player call and any
// other JSON-body upstream the extraction strategies need to reach.
func (f *Fetcher) Post(ctx context.Context, target, contentType string, body []byte) (Result, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Result{}, pipelineerr.Wrap(pipelineerr.KindInputInvalid, "malformed fetch url", err)
	}

	if err := f.hostLimiter(u.Hostname()).Wait(ctx); err != nil {
		return Result{}, pipelineerr.Wrap(pipelineerr.KindFetchNetwork, "rate limiter wait failed", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	return retry.Do(ctx, defaultAttempts, func() (Result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			return Result{}, pipelineerr.Wrap(pipelineerr.KindInputInvalid, "build fetch request", err)
		}
		req.Header.Set("User-Agent", randomUserAgent())
		req.Header.Set("Content-Type", contentType)

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, pipelineerr.Wrap(pipelineerr.KindFetchTimeout, "fetch timed out", err)
			}
			return Result{}, pipelineerr.Wrap(pipelineerr.KindFetchNetwork, "fetch failed", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return Result{}, &pipelineerr.Error{
				Kind:    pipelineerr.KindFetchHTTP,
				Message: "non-2xx response",
				Status:  resp.StatusCode,
			}
		}

		limited := io.LimitReader(resp.Body, f.maxBytes+1)
		respBody, err := io.ReadAll(limited)
		if err != nil {
			return Result{}, pipelineerr.Wrap(pipelineerr.KindFetchNetwork, "read response body", err)
		}
		if int64(len(respBody)) > f.maxBytes {
			return Result{}, pipelineerr.New(pipelineerr.KindPayloadTooLarge, "response exceeds max media size")
		}

		respContentType := resp.Header.Get("Content-Type")
		if respContentType == "" {
			respContentType = http.DetectContentType(respBody)
		}
		mimeType, _, err := mime.ParseMediaType(respContentType)
		if err != nil {
			mimeType = respContentType
		}

		return Result{Body: respBody, MIME: mimeType}, nil
	})
}

func (f *Fetcher) hostLimiter(host string) *rate.Limiter {
	f.limitersMu.Lock()
	defer f.limitersMu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(200*time.Millisecond), 5)
		f.limiters[host] = l
	}
	return l
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}
