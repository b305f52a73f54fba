package resolver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
)

var (
	videoPattern    = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]+)(?:\\u0026list=([a-zA-Z0-9_-]+))?[^"]*`)
	watchURLPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)

	errNoVideoMatch  = errors.New("no video found for the given title")
	errEmptyPlaylist = errors.New("no video URLs found in the playlist")
)

// searchFirstVideoURL scrapes the search results page and returns the first
// video hit.
func (r *Resolver) searchFirstVideoURL(query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", r.baseURL, url.QueryEscape(query))

	resp, err := r.http.Get(searchURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search failed with status code %v", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	matches := videoPattern.FindStringSubmatch(string(body))
	if len(matches) > 1 {
		return fmt.Sprintf("%s/watch?v=%s", r.baseURL, matches[1]), nil
	}

	return "", errNoVideoMatch
}

// scrapePlaylistVideos pulls the watch URLs embedded in a playlist or mix
// page, deduplicated with order kept.
func (r *Resolver) scrapePlaylistVideos(listURL string) ([]string, error) {
	resp, err := r.http.Get(listURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("playlist fetch failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	matches := watchURLPattern.FindAllStringSubmatch(string(body), -1)
	seen := make(map[string]struct{}, len(matches))
	var urls []string
	for _, m := range matches {
		if len(m) < 2 {
			continue
		}
		u := fmt.Sprintf("%s/watch?v=%s", r.baseURL, m[1])
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	if len(urls) == 0 {
		return nil, errEmptyPlaylist
	}
	return urls, nil
}
