// Package media implements the MediaURL strategy family: fetch the target,
// and either transcribe it as audio/video or, if the fetched MIME turns out
// to be HTML, degrade to the WebPage plan (spec §4.10).
package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

// Transcriber is satisfied by the reasoner's transcription model.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// FetchThenTranscribe downloads the target URL and transcribes the body
// directly, without the DASH-stream resolution YouTube audio needs.
type FetchThenTranscribe struct {
	Fetcher     *fetchx.Fetcher
	Transcriber Transcriber
}

func New(fetcher *fetchx.Fetcher, transcriber Transcriber) *FetchThenTranscribe {
	return &FetchThenTranscribe{Fetcher: fetcher, Transcriber: transcriber}
}

func (f *FetchThenTranscribe) Name() string { return "FetchThenTranscribe" }

// IsHTML reports whether a fetched MediaURL body turned out to be a web
// page, in which case the pipeline should fall back to the WebPage catalog
// instead of attempting transcription.
func IsHTML(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/html")
}

func (f *FetchThenTranscribe) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	res, err := f.Fetcher.Get(ctx, src.Input.Href)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("fetch media url: %w", err)
	}

	if IsHTML(res.MIME) {
		return extract.Outcome{}, fmt.Errorf("media url resolved to html content, degrade to webpage plan")
	}

	text, err := f.Transcriber.Transcribe(ctx, res.Body, res.MIME)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("transcribe media: %w", err)
	}

	return extract.Outcome{Text: text, Method: f.Name()}, nil
}
