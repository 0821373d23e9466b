package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/pkg/audit"
	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fetchx"
)

func TestOEmbed_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"A Great Video","author_name":"Some Channel","provider_name":"YouTube"}`))
	}))
	defer server.Close()

	strategy := &OEmbed{Fetcher: fetchx.New(logging.Get())}
	strategy.oEmbedBase = server.URL + "?format=json&url="

	src := extract.Source{Input: audit.Input{Href: "https://www.youtube.com/watch?v=abc"}}
	outcome, err := strategy.Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Contains(t, outcome.Text, "A Great Video")
	assert.Contains(t, outcome.Text, "Some Channel")
	assert.Equal(t, "OEmbed", outcome.Method)
}

func TestOEmbed_Extract_MissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	strategy := &OEmbed{Fetcher: fetchx.New(logging.Get())}
	strategy.oEmbedBase = server.URL + "?format=json&url="

	src := extract.Source{Input: audit.Input{Href: "https://www.youtube.com/watch?v=abc"}}
	_, err := strategy.Extract(context.Background(), src)
	assert.Error(t, err)
}
