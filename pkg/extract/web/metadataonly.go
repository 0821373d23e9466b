package web

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

// MetadataOnly is the last-resort WebPage strategy: it returns only the
// page <title> and meta description, formatted as "Title: …; Description: …".
type MetadataOnly struct {
	Fetcher *fetchx.Fetcher
}

func NewMetadataOnly(fetcher *fetchx.Fetcher) *MetadataOnly {
	return &MetadataOnly{Fetcher: fetcher}
}

func (m *MetadataOnly) Name() string { return "MetadataOnly" }

func (m *MetadataOnly) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	res, err := m.Fetcher.Get(ctx, src.Input.Href)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("metadata-only fetch: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(res.Body)))
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("parse html for metadata: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	description = strings.TrimSpace(description)

	if title == "" && description == "" {
		return extract.Outcome{}, fmt.Errorf("no title or description metadata found")
	}

	text := fmt.Sprintf("Title: %s; Description: %s", title, description)
	return extract.Outcome{Text: text, Method: m.Name()}, nil
}
