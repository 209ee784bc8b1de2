package media_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-richtext/internal/media"
)

func testFetcher() *media.HTTPFetcher {
	return media.NewHTTPFetcher(media.FetcherConfig{
		Timeout:      2 * time.Second,
		RetryMax:     0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	}, nil)
}

func TestHTTPFetcherDownloadsImage(t *testing.T) {
	payload := encodePNG(t, solidImage(4, 4, color.White))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	fetched, err := testFetcher().Fetch(context.Background(), server.URL+"/a.png", 1<<20)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fetched.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %q", fetched.ContentType)
	}
	if !bytes.Equal(fetched.Data, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestHTTPFetcherFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/huge":
			_, _ = w.Write(bytes.Repeat([]byte{0xAB}, 4096))
		}
	}))
	defer server.Close()

	cases := []struct {
		name string
		url  string
		want error
	}{
		{name: "not found", url: server.URL + "/missing", want: media.ErrImageFetch},
		{name: "server error", url: server.URL + "/broken", want: media.ErrImageFetch},
		{name: "too large", url: server.URL + "/huge", want: media.ErrImageTooLarge},
		{name: "unsupported scheme", url: "ftp://example.com/a.png", want: media.ErrImageFetch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fetched, err := testFetcher().Fetch(context.Background(), tc.url, 1024)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if fetched != nil {
				t.Fatalf("expected no payload on failure")
			}
		})
	}
}

func TestHTTPFetcherHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := testFetcher().Fetch(ctx, server.URL, 1024)
	if !errors.Is(err, media.ErrImageFetch) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled fetch error, got %v", err)
	}
}
