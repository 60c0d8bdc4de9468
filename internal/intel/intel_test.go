package intel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><title> Phoenix Journal </title></head><body>
<article>
<p>First   paragraph.</p>
<p></p>
<p>Second paragraph.</p>
<p>Third paragraph.</p>
</article></body></html>`

func TestFetch_ExtractsTitleAndParagraphs(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	f := NewFetcher(WithMaxParagraphs(2))
	rec := f.Fetch(context.Background(), srv.URL)

	require.False(t, rec.Failed(), rec.Error)
	assert.Equal(t, srv.URL, rec.URL)
	assert.Equal(t, "Phoenix Journal", rec.Title)
	assert.Equal(t, "First paragraph. Second paragraph.", rec.Text)
	assert.Equal(t, "Mozilla/5.0", gotUA)
}

func TestFetch_NoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>only text</p></body></html>")
	}))
	defer srv.Close()

	rec := NewFetcher().Fetch(context.Background(), srv.URL)

	require.False(t, rec.Failed(), rec.Error)
	assert.Equal(t, "No Title", rec.Title)
	assert.Equal(t, "only text", rec.Text)
}

func TestFetch_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	rec := NewFetcher().Fetch(context.Background(), srv.URL)

	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "404")
	assert.Empty(t, rec.Title)
}

func TestFetch_UnreachableWithinTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	f := NewFetcher(WithTimeout(100 * time.Millisecond))

	start := time.Now()
	rec := f.Fetch(context.Background(), srv.URL)
	elapsed := time.Since(start)

	assert.True(t, rec.Failed())
	assert.Equal(t, srv.URL, rec.URL)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestFetch_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp//missing", "http://"} {
		rec := NewFetcher().Fetch(context.Background(), raw)
		assert.True(t, rec.Failed(), "url %q", raw)
		assert.Equal(t, raw, rec.URL)
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	rec := NewFetcher(WithTimeout(time.Second)).Fetch(context.Background(), addr)
	assert.True(t, rec.Failed())
}

func TestFetch_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><title>Big</title></head><body><p>kept</p>")
		fmt.Fprint(w, strings.Repeat("<p>dropped</p>", 1000))
	}))
	defer srv.Close()

	rec := NewFetcher(WithMaxBodyBytes(80)).Fetch(context.Background(), srv.URL)

	require.False(t, rec.Failed(), rec.Error)
	assert.Equal(t, "Big", rec.Title)
	assert.True(t, strings.HasPrefix(rec.Text, "kept"))
	assert.Less(t, strings.Count(rec.Text, "dropped"), 5)
}

func TestFetchAll_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(50 * time.Millisecond)
		}
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "<html><head><title>%s</title></head></html>", r.URL.Path)
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/slow", srv.URL + "/missing", srv.URL + "/fast"}
	records := NewFetcher(WithConcurrency(3)).FetchAll(context.Background(), urls)

	require.Len(t, records, 3)
	assert.Equal(t, "/slow", records[0].Title)
	assert.True(t, records[1].Failed())
	assert.Equal(t, "/fast", records[2].Title)
	for i, rec := range records {
		assert.Equal(t, urls[i], rec.URL)
	}
}
