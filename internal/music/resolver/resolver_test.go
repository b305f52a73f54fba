package resolver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://www.youtube.com/watch?v=abc"))
	assert.True(t, isURL("http://youtu.be/abc"))
	assert.False(t, isURL("never gonna give you up"))
	assert.False(t, isURL("youtube.com/watch?v=abc"))
}

func TestIsVideoURL(t *testing.T) {
	assert.True(t, isVideoURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.True(t, isVideoURL("https://music.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.True(t, isVideoURL("https://youtu.be/dQw4w9WgXcQ"))
	assert.False(t, isVideoURL("https://www.youtube.com/playlist?list=PL123"))
	assert.False(t, isVideoURL("https://example.com/watch?v=abc"))
}

func TestExtractListID(t *testing.T) {
	assert.Equal(t, "PLabc123", extractListID("https://www.youtube.com/playlist?list=PLabc123"))
	assert.Equal(t, "RDdQw4w9WgXcQ", extractListID("https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=RDdQw4w9WgXcQ"))
	assert.Empty(t, extractListID("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
}

func TestCleanVideoURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=RDdQw4w9WgXcQ&index=2",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			"https://music.youtube.com/watch?v=dQw4w9WgXcQ&feature=share",
			"https://music.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			"https://youtu.be/dQw4w9WgXcQ?t=42",
			"https://youtu.be/dQw4w9WgXcQ",
		},
		{
			// non-watch path passes through untouched
			"https://www.youtube.com/playlist?list=PL123",
			"https://www.youtube.com/playlist?list=PL123",
		},
		{
			"https://example.com/watch?v=abc",
			"https://example.com/watch?v=abc",
		},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, cleanVideoURL(c.in), "input %q", c.in)
	}
}

func TestIsBundle(t *testing.T) {
	r := New()

	assert.True(t, r.IsBundle("https://www.youtube.com/playlist?list=PL123"))
	assert.True(t, r.IsBundle("https://www.youtube.com/watch?v=abc&list=RDabc"))
	assert.False(t, r.IsBundle("https://www.youtube.com/watch?v=abc"))
	// free text is never a bundle even if it mentions a playlist
	assert.False(t, r.IsBundle("my favourite playlist"))
}

func newScrapeResolver(handler http.Handler) (*Resolver, *httptest.Server) {
	srv := httptest.NewServer(handler)
	r := &Resolver{
		http:    srv.Client(),
		baseURL: srv.URL,
	}
	return r, srv
}

func TestSearchFirstVideoURL(t *testing.T) {
	page := `{"contents":[{"url":"/watch?v=dQw4w9WgXcQ&pp=xyz"},{"url":"/watch?v=other006789"}]}`
	r, srv := newScrapeResolver(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/results", req.URL.Path)
		assert.Equal(t, "rick astley", req.URL.Query().Get("search_query"))
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	got, err := r.searchFirstVideoURL("rick astley")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/watch?v=dQw4w9WgXcQ", got)
}

func TestSearchNoResults(t *testing.T) {
	r, srv := newScrapeResolver(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"contents":[]}`)
	}))
	defer srv.Close()

	_, err := r.searchFirstVideoURL("nothing here")
	assert.ErrorIs(t, err, errNoVideoMatch)
}

func TestSearchHTTPError(t *testing.T) {
	r, srv := newScrapeResolver(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := r.searchFirstVideoURL("anything")
	assert.Error(t, err)
}

func TestScrapePlaylistVideosDedupesKeepingOrder(t *testing.T) {
	page := `"url":"/watch?v=aaaaaaaaaaa" ... "url":"/watch?v=bbbbbbbbbbb" ... "url":"/watch?v=aaaaaaaaaaa" ... "url":"/watch?v=ccccccccccc"`
	r, srv := newScrapeResolver(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	urls, err := r.scrapePlaylistVideos(srv.URL + "/watch?v=aaaaaaaaaaa&list=RDaaaaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/watch?v=aaaaaaaaaaa",
		srv.URL + "/watch?v=bbbbbbbbbbb",
		srv.URL + "/watch?v=ccccccccccc",
	}, urls)
}

func TestScrapePlaylistVideosEmptyPage(t *testing.T) {
	r, srv := newScrapeResolver(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, "<html>nothing embedded</html>")
	}))
	defer srv.Close()

	_, err := r.scrapePlaylistVideos(srv.URL + "/playlist?list=PLempty")
	assert.ErrorIs(t, err, errEmptyPlaylist)
}
