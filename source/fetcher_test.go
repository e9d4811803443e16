package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_SendsHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(WithUserAgent("marketfeed-test"))
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "marketfeed-test", gotUA)
	assert.Equal(t, DefaultAcceptLanguage, gotLang)
}

func TestFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewFetcher().Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "403")
}

func TestFetcher_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := NewFetcher().Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewFetcher(WithTimeout(50*time.Millisecond)).Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewFetcher().Get(context.Background(), url)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestReport(t *testing.T) {
	var r Report[string]
	assert.True(t, r.Empty())

	r.Add(Parsed("a"))
	r.Add(Skipped[string]("row 2", "missing title"))
	r.Add(Parsed("b"))

	assert.False(t, r.Empty())
	assert.Equal(t, []string{"a", "b"}, r.Records)
	require.Len(t, r.Skipped, 1)
	assert.Equal(t, Skip{Ref: "row 2", Reason: "missing title"}, r.Skipped[0])

	v, ok := Parsed(3).Record()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = Skipped[int]("x", "y").Record()
	assert.False(t, ok)
}
