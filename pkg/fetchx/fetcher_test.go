package fetchx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/internal/pipelineerr"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	f := New(logging.Get())
	result, err := f.Get(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(result.Body))
	assert.Equal(t, "text/plain", result.MIME)
}

func TestGet_NonRetriable4xxReturnsImmediately(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(logging.Get())
	_, err := f.Get(t.Context(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var pe *pipelineerr.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, pipelineerr.KindFetchHTTP, pe.Kind)
	assert.Equal(t, http.StatusNotFound, pe.Status)
}

func TestGet_RetriesOn5xxThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(logging.Get())
	result, err := f.Get(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(result.Body))
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestGet_OversizedBodyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 100))
	}))
	defer srv.Close()

	f := New(logging.Get()).WithMaxBytes(10)
	_, err := f.Get(t.Context(), srv.URL)
	require.Error(t, err)

	var pe *pipelineerr.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, pipelineerr.KindPayloadTooLarge, pe.Kind)
}

func TestPost_SendsBodyAndContentType(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody = make([]byte, r.ContentLength)
		r.Body.Read(gotBody)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := New(logging.Get())
	result, err := f.Post(t.Context(), srv.URL, "application/json", []byte(`{"q":1}`))
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, `{"q":1}`, string(gotBody))
	assert.Contains(t, string(result.Body), "ok")
}

func TestGet_MalformedURL(t *testing.T) {
	f := New(logging.Get())
	_, err := f.Get(t.Context(), "http://[::1")
	require.Error(t, err)

	var pe *pipelineerr.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, pipelineerr.KindInputInvalid, pe.Kind)
}
