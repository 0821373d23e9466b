package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

const oEmbedEndpoint = "https://www.youtube.com/oembed?format=json&url="

// OEmbed falls back to YouTube's public oEmbed endpoint when captions are
// unavailable, returning only the video title and channel name.
type OEmbed struct {
	Fetcher    *fetchx.Fetcher
	oEmbedBase string
}

func NewOEmbed(fetcher *fetchx.Fetcher) *OEmbed {
	return &OEmbed{Fetcher: fetcher, oEmbedBase: oEmbedEndpoint}
}

func (o *OEmbed) Name() string { return "OEmbed" }

type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ProviderName string `json:"provider_name"`
}

func (o *OEmbed) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	base := o.oEmbedBase
	if base == "" {
		base = oEmbedEndpoint
	}
	target := base + url.QueryEscape(src.Input.Href)

	res, err := o.Fetcher.Get(ctx, target)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("oembed fetch: %w", err)
	}

	var parsed oEmbedResponse
	if err := json.Unmarshal(res.Body, &parsed); err != nil {
		return extract.Outcome{}, fmt.Errorf("decode oembed response: %w", err)
	}

	title := strings.TrimSpace(parsed.Title)
	author := strings.TrimSpace(parsed.AuthorName)
	if title == "" && author == "" {
		return extract.Outcome{}, fmt.Errorf("oembed response missing title and author")
	}

	return extract.Outcome{
		Text:   fmt.Sprintf("Title: %s; Channel: %s", title, author),
		Method: o.Name(),
	}, nil
}
