package media

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

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return f.text, f.err
}

func TestFetchThenTranscribe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake-audio-bytes"))
	}))
	defer srv.Close()

	strategy := New(fetchx.New(logging.Get()), fakeTranscriber{text: "buy now and save"})
	outcome, err := strategy.Extract(context.Background(), extract.Source{
		Input: audit.NewURLInput(srv.URL, audit.Options{}),
	})
	require.NoError(t, err)
	assert.Equal(t, "buy now and save", outcome.Text)
}

func TestFetchThenTranscribe_DegradesOnHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	strategy := New(fetchx.New(logging.Get()), fakeTranscriber{text: "unused"})
	_, err := strategy.Extract(context.Background(), extract.Source{
		Input: audit.NewURLInput(srv.URL, audit.Options{}),
	})
	assert.Error(t, err)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("text/html"))
	assert.True(t, IsHTML("text/html; charset=utf-8"))
	assert.False(t, IsHTML("audio/mpeg"))
	assert.False(t, IsHTML("video/mp4"))
}
