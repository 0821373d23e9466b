package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoID_WatchURL(t *testing.T) {
	id, err := VideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30s")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", id)
}

func TestVideoID_ShortURL(t *testing.T) {
	id, err := VideoID("https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", id)
}

func TestVideoID_MissingParam(t *testing.T) {
	_, err := VideoID("https://www.youtube.com/watch")
	assert.Error(t, err)
}

func TestVideoID_MalformedURL(t *testing.T) {
	_, err := VideoID("http://[::1]:namedport")
	assert.Error(t, err)
}

func TestPickCaptionURL_PrefersNonASR(t *testing.T) {
	playerData := map[string]any{
		"captions": map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{
				"captionTracks": []any{
					map[string]any{"baseUrl": "https://example.com/asr", "kind": "asr"},
					map[string]any{"baseUrl": "https://example.com/manual"},
				},
			},
		},
	}
	url, err := pickCaptionURL(playerData)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/manual", url)
}

func TestPickCaptionURL_FallsBackToASR(t *testing.T) {
	playerData := map[string]any{
		"captions": map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{
				"captionTracks": []any{
					map[string]any{"baseUrl": "https://example.com/asr", "kind": "asr"},
				},
			},
		},
	}
	url, err := pickCaptionURL(playerData)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/asr", url)
}

func TestPickCaptionURL_NoTracks(t *testing.T) {
	_, err := pickCaptionURL(map[string]any{})
	assert.Error(t, err)
}

func TestParseTimedTextXML(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
		`<text start="0.0" dur="1.5">Hello &amp; welcome</text>` +
		`<text start="1.5" dur="2.0">to the show</text>` +
		`</transcript>`

	segments, err := parseTimedTextXML([]byte(xml))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello & welcome", "to the show"}, segments)
}

func TestParseTimedTextXML_Empty(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8" ?><transcript></transcript>`
	_, err := parseTimedTextXML([]byte(xml))
	assert.Error(t, err)
}

func TestExtractAPIKey(t *testing.T) {
	html := `var ytcfg = {"INNERTUBE_API_KEY":"AIzaSyABC123","other":"x"};`
	key, err := extractAPIKey(html)
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyABC123", key)
}

func TestExtractAPIKey_NotFound(t *testing.T) {
	_, err := extractAPIKey("no key here")
	assert.Error(t, err)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "hello world", stripTags("hello<br>world"))
	assert.Equal(t, "bold text", stripTags("<b>bold</b> text"))
}
