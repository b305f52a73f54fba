package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// The translate endpoint rejects long inputs, so text is spoken in chunks.
const maxChunkLen = 200

const ttsEndpoint = "https://translate.google.com/translate_tts"

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("no text to synthesize")

var supportedLangs = map[string]string{
	"en": "English",
	"vi": "Vietnamese",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"th": "Thai",
	"id": "Indonesian",
	"hi": "Hindi",
	"ar": "Arabic",
}

// IsSupportedLang reports whether code is a usable TTS language.
func IsSupportedLang(code string) bool {
	_, ok := supportedLangs[code]
	return ok
}

// SupportedLangs returns the language codes accepted by the synthesizer.
func SupportedLangs() map[string]string {
	out := make(map[string]string, len(supportedLangs))
	for k, v := range supportedLangs {
		out[k] = v
	}
	return out
}

// Client synthesizes speech through the public translate TTS endpoint and
// writes the MP3 chunks to temp files.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// Synthesize turns text into one MP3 file per chunk, in speaking order. The
// returned cleanup removes the files and must be called once playback is
// done.
func (c *Client) Synthesize(ctx context.Context, text, lang string) ([]string, func(), error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, ErrEmptyText
	}
	if !IsSupportedLang(lang) {
		return nil, nil, fmt.Errorf("unsupported TTS language: %s", lang)
	}

	chunks := splitChunks(text, maxChunkLen)

	var files []string
	cleanup := func() {
		for _, f := range files {
			os.Remove(f)
		}
	}

	for _, chunk := range chunks {
		path, err := c.fetchChunk(ctx, chunk, lang)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		files = append(files, path)
	}

	return files, cleanup, nil
}

func (c *Client) fetchChunk(ctx context.Context, chunk, lang string) (string, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ttsEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tts request failed with status %d", resp.StatusCode)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("tts-%s.mp3", uuid.NewString()))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

// splitChunks breaks text into pieces no longer than limit, preferring word
// boundaries. A single overlong word gets hard-split.
func splitChunks(text string, limit int) []string {
	words := strings.Fields(text)
	var chunks []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	for _, w := range words {
		for len(w) > limit {
			// cut on a rune boundary; CJK text arrives as one long "word"
			cut := limit
			for cut > 0 && !utf8.RuneStart(w[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			flush()
			chunks = append(chunks, w[:cut])
			w = w[cut:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(w) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	flush()

	return chunks
}
