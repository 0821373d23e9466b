// Package web implements the WebPage strategy family: ReaderProxy,
// ReadabilityLocal, HeadlessBrowser and MetadataOnly, tried in that order
// per SPEC_FULL §4.10.
package web

import (
	"context"
	"fmt"
	"net/url"

	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

// ReaderProxy fetches a remote plaintext rendering of a URL through a
// reader-mode proxy. It is the cheapest strategy and runs first.
type ReaderProxy struct {
	Fetcher   *fetchx.Fetcher
	ProxyBase string // e.g. "https://r.jina.ai/"
}

func NewReaderProxy(fetcher *fetchx.Fetcher) *ReaderProxy {
	return &ReaderProxy{Fetcher: fetcher, ProxyBase: "https://r.jina.ai/"}
}

func (p *ReaderProxy) Name() string { return "ReaderProxy" }

func (p *ReaderProxy) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	target := p.ProxyBase + src.Input.Href
	if _, err := url.Parse(target); err != nil {
		return extract.Outcome{}, fmt.Errorf("build reader proxy url: %w", err)
	}

	res, err := p.Fetcher.Get(ctx, target)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("reader proxy fetch: %w", err)
	}

	return extract.Outcome{Text: string(res.Body), Method: p.Name()}, nil
}
