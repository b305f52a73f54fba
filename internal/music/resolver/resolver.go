package resolver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"github.com/VanDung-dev/DSB-bot/internal/music/player"
)

// Resolver turns play queries (titles, video URLs, playlist URLs) into
// streamable tracks. Metadata and stream URLs come from the YouTube data
// client; free-text search and mix expansion go through the public search
// pages.
type Resolver struct {
	yt      *youtube.Client
	http    *http.Client
	baseURL string
}

func New() *Resolver {
	return &Resolver{
		yt: &youtube.Client{
			HTTPClient: &http.Client{Timeout: 15 * time.Second},
		},
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://www.youtube.com",
	}
}

// IsBundle reports whether query is a playlist or mix URL that expands into
// multiple tracks.
func (r *Resolver) IsBundle(query string) bool {
	if !isURL(query) {
		return false
	}
	return strings.Contains(query, "list=") || strings.Contains(query, "/playlist")
}

// ResolveBundle expands a playlist or mix URL into per-video URLs, original
// order preserved. Regular playlists go through the playlist API; mixes are
// synthetic and only exist in the watch page, so those get scraped.
func (r *Resolver) ResolveBundle(query string) ([]string, error) {
	listID := extractListID(query)
	if listID != "" && !strings.HasPrefix(listID, "RD") {
		playlist, err := r.yt.GetPlaylist(query)
		if err == nil && len(playlist.Videos) > 0 {
			urls := make([]string, 0, len(playlist.Videos))
			for _, entry := range playlist.Videos {
				urls = append(urls, fmt.Sprintf("%s/watch?v=%s", r.baseURL, entry.ID))
			}
			return urls, nil
		}
		// fall through to the page scrape
	}

	return r.scrapePlaylistVideos(query)
}

// ResolveTrack resolves one query into a playable track. Free text is
// searched first; URLs are stripped of tracking params before lookup.
func (r *Resolver) ResolveTrack(query string) (*player.Track, error) {
	query = strings.TrimSpace(query)

	pageURL := query
	if !isURL(query) {
		found, err := r.searchFirstVideoURL(query)
		if err != nil {
			return nil, fmt.Errorf("could not find video for query %q: %w", query, err)
		}
		pageURL = found
	} else if !isVideoURL(query) {
		return nil, errors.New("unsupported URL format")
	}
	pageURL = cleanVideoURL(pageURL)

	video, err := r.yt.GetVideo(pageURL)
	if err != nil {
		return nil, fmt.Errorf("video lookup failed: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, errors.New("no audio formats found for video")
	}

	streamURL, err := r.yt.GetStreamURL(video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("get stream URL error: %w", err)
	}

	return &player.Track{
		Title:     video.Title,
		StreamURL: streamURL,
		PageURL:   pageURL,
		Duration:  video.Duration,
		Uploader:  video.Author,
	}, nil
}
