package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	simplejson "github.com/bitly/go-simplejson"

	"github.com/VanDung-dev/DSB-bot/pkg/retrylimit"
)

// ErrNoImages is returned when a query yields no usable results.
var ErrNoImages = errors.New("no images found for query")

var vqdPattern = regexp.MustCompile(`vqd=['"]?([\d-]+)['"]?`)

// searchError carries the HTTP status for the retry layer.
type searchError struct{ code int }

func (e *searchError) Error() string   { return fmt.Sprintf("image search failed with status %d", e.code) }
func (e *searchError) StatusCode() int { return e.code }

// Image is one image search hit.
type Image struct {
	Title     string
	URL       string // direct image URL
	PageURL   string // page the image was found on
	Thumbnail string
}

// ImageClient queries the DuckDuckGo image endpoint. Each search needs a
// short-lived vqd token scraped from the HTML search page first.
type ImageClient struct {
	http    *http.Client
	baseURL string
	limiter *retrylimit.AdaptiveLimiter
}

func NewImageClient() *ImageClient {
	return &ImageClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://duckduckgo.com",
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
	}
}

// SearchImages returns up to limit image hits for query, retrying transient
// failures. An empty result set is final and not retried.
func (c *ImageClient) SearchImages(ctx context.Context, query string, limit int) ([]Image, error) {
	var images []Image
	err := retrylimit.WithRetryMax(ctx, func() error {
		imgs, err := c.search(ctx, query, limit)
		if err != nil {
			if errors.Is(err, ErrNoImages) {
				return &retrylimit.FatalError{Err: err}
			}
			return err
		}
		images = imgs
		return nil
	}, c.limiter, 3)
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (c *ImageClient) search(ctx context.Context, query string, limit int) ([]Image, error) {
	if limit <= 0 {
		limit = 1
	}

	vqd, err := c.fetchVQD(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("token fetch failed: %w", err)
	}

	params := url.Values{}
	params.Set("l", "us-en")
	params.Set("o", "json")
	params.Set("q", query)
	params.Set("vqd", vqd)
	params.Set("f", ",,,")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/i.js?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", c.baseURL+"/")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &searchError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	js, err := simplejson.NewJson(body)
	if err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	results := js.Get("results")
	arr, err := results.Array()
	if err != nil || len(arr) == 0 {
		return nil, ErrNoImages
	}

	var images []Image
	for i := range arr {
		item := results.GetIndex(i)
		img := Image{
			Title:     item.Get("title").MustString(),
			URL:       item.Get("image").MustString(),
			PageURL:   item.Get("url").MustString(),
			Thumbnail: item.Get("thumbnail").MustString(),
		}
		if img.URL == "" {
			continue
		}
		images = append(images, img)
		if len(images) >= limit {
			break
		}
	}

	if len(images) == 0 {
		return nil, ErrNoImages
	}
	return images, nil
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// fetchVQD scrapes the search page for the request token the image API
// requires.
func (c *ImageClient) fetchVQD(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("iax", "images")
	params.Set("ia", "images")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &searchError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	matches := vqdPattern.FindSubmatch(body)
	if len(matches) < 2 {
		// page-format change, not transient
		return "", &retrylimit.FatalError{Err: errors.New("vqd token not found in search page")}
	}
	return string(matches[1]), nil
}
