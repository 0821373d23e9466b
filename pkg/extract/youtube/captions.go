// Package youtube implements the YouTube strategy family: CaptionTrack,
// OEmbed metadata fallback, and the audio-download+transcribe path.
// CaptionTrack is grounded on the innertube player / timedtext XML flow:
// fetch the watch page, extract the embedded API key, call the innertube
// player endpoint for captionTracks, then fetch and parse the timedtext XML.
package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

const (
	watchURLFmt     = "https://www.youtube.com/watch?v=%s"
	innertubeAPIFmt = "https://www.youtube.com/youtubei/v1/player?key=%s"
)

var apiKeyPattern = regexp.MustCompile(`"INNERTUBE_API_KEY":"([^"]+)"`)

var innertubeContext = map[string]any{
	"client": map[string]string{
		"clientName":    "ANDROID",
		"clientVersion": "20.10.38",
	},
}

// CaptionTrack fetches the published caption track for a YouTube video and
// concatenates its segments into plain text.
type CaptionTrack struct {
	Fetcher *fetchx.Fetcher
}

func NewCaptionTrack(fetcher *fetchx.Fetcher) *CaptionTrack {
	return &CaptionTrack{Fetcher: fetcher}
}

func (c *CaptionTrack) Name() string { return "CaptionTrack" }

func (c *CaptionTrack) Extract(ctx context.Context, src extract.Source) (extract.Outcome, error) {
	videoID, err := VideoID(src.Input.Href)
	if err != nil {
		return extract.Outcome{}, err
	}

	watchHTML, err := c.Fetcher.Get(ctx, fmt.Sprintf(watchURLFmt, videoID))
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("fetch watch page: %w", err)
	}

	apiKey, err := extractAPIKey(string(watchHTML.Body))
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("extract innertube api key: %w", err)
	}

	playerData, err := c.postPlayer(ctx, apiKey, videoID)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("call innertube player: %w", err)
	}

	captionURL, err := pickCaptionURL(playerData)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("pick caption track: %w", err)
	}

	xmlBody, err := c.Fetcher.Get(ctx, captionURL)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("fetch timedtext xml: %w", err)
	}

	segments, err := parseTimedTextXML(xmlBody.Body)
	if err != nil {
		return extract.Outcome{}, fmt.Errorf("parse timedtext xml: %w", err)
	}

	return extract.Outcome{Text: strings.Join(segments, " "), Method: c.Name()}, nil
}

func (c *CaptionTrack) postPlayer(ctx context.Context, apiKey, videoID string) (map[string]any, error) {
	body := map[string]any{
		"context": innertubeContext,
		"videoId": videoID,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.Fetcher.Post(ctx, fmt.Sprintf(innertubeAPIFmt, apiKey), "application/json", payload)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode innertube response: %w", err)
	}
	return out, nil
}

func extractAPIKey(watchHTML string) (string, error) {
	m := apiKeyPattern.FindStringSubmatch(watchHTML)
	if m == nil {
		return "", errors.New("innertube api key not found in watch page")
	}
	return m[1], nil
}

func pickCaptionURL(playerData map[string]any) (string, error) {
	capRoot, _ := playerData["captions"].(map[string]any)
	tracklist, _ := capRoot["playerCaptionsTracklistRenderer"].(map[string]any)
	tracks, _ := tracklist["captionTracks"].([]any)
	if len(tracks) == 0 {
		return "", errors.New("transcripts disabled or unavailable")
	}

	first := ""
	for _, it := range tracks {
		t, _ := it.(map[string]any)
		base, _ := t["baseUrl"].(string)
		kind, _ := t["kind"].(string)
		if base == "" {
			continue
		}
		if first == "" {
			first = base
		}
		if strings.TrimSpace(kind) != "asr" {
			return base, nil
		}
	}
	if first != "" {
		return first, nil
	}
	return "", errors.New("no usable caption track found")
}

func parseTimedTextXML(body []byte) ([]string, error) {
	type textEl struct {
		XMLName xml.Name `xml:"text"`
		Body    string   `xml:",innerxml"`
	}
	type transcript struct {
		XMLName xml.Name `xml:"transcript"`
		Texts   []textEl `xml:"text"`
	}

	var tx transcript
	if err := xml.Unmarshal(body, &tx); err != nil {
		return nil, err
	}

	var out []string
	for _, t := range tx.Texts {
		text := stripTags(html.UnescapeString(t.Body))
		if strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("empty caption track")
	}
	return out, nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	s = strings.ReplaceAll(s, "<br>", " ")
	s = strings.ReplaceAll(s, "<br/>", " ")
	s = tagPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// VideoID extracts the 11-character video id from any of the accepted
// YouTube host forms (youtube.com/watch?v=, youtu.be/<id>, m.youtube.com).
func VideoID(href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse youtube url: %w", err)
	}

	if strings.Contains(u.Host, "youtu.be") {
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", errors.New("youtu.be url missing video id")
		}
		return id, nil
	}

	id := u.Query().Get("v")
	if id == "" {
		return "", errors.New("youtube url missing v query parameter")
	}
	return id, nil
}
