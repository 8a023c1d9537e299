package repo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchReturnsBodyAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "watcher/1.0", r.Header.Get("User-Agent"))
		require.Equal(t, "en-US", r.Header.Get("Accept-Language"))
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "too many requests")
	}))
	defer srv.Close()

	f := NewPageFetcher(5*time.Second, "watcher/1.0", 10, 0)
	res, err := f.Fetch(context.Background(), srv.URL, map[string]string{"Accept-Language": "en-US"})
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	require.Equal(t, "too many requests", res.Body)
	require.Equal(t, 0, res.Redirects)
}

func TestFetchCountsRedirects(t *testing.T) {
	var srv *httptest.Server
	hops := 0
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hops < 3 {
			hops++
			http.Redirect(w, r, srv.URL+fmt.Sprintf("/hop/%d", hops), http.StatusFound)
			return
		}
		fmt.Fprint(w, "landed")
	}))
	defer srv.Close()

	f := NewPageFetcher(5*time.Second, "", 10, 0)
	res, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.Equal(t, 3, res.Redirects)
	require.Equal(t, "landed", res.Body)
	require.Contains(t, res.FinalURL, "/hop/3")
}

func TestFetchStopsAtRedirectCap(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/again", http.StatusFound)
	}))
	defer srv.Close()

	f := NewPageFetcher(5*time.Second, "", 4, 0)
	res, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	// The last response is surfaced so the classifier can see the loop.
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Greater(t, res.Redirects, 4)
}

func TestFetchTimeoutIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewPageFetcher(20*time.Millisecond, "", 10, 0)
	_, err := f.Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)
}

func TestFetchBodyIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 1024; i++ {
			fmt.Fprint(w, "xxxxxxxxxx")
		}
	}))
	defer srv.Close()

	f := NewPageFetcher(5*time.Second, "", 10, 100)
	res, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.Len(t, res.Body, 100)
}
