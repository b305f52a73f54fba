package player

import (
	"fmt"
	"time"
)

// Track is a resolved, playable unit. Immutable once resolved; the queue and
// the now-playing slot hold copies.
type Track struct {
	Title     string
	StreamURL string // playable source locator
	PageURL   string // display URL
	Duration  time.Duration
	Uploader  string
	ChannelID string // text channel to notify on playback start
}

// DurationString renders the duration as m:ss for embeds.
func (t Track) DurationString() string {
	total := int(t.Duration.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// VoiceHandle is the live connection used to emit audio into a guild's voice
// channel. Play starts asynchronous playback and invokes onDone exactly once
// when the source ends, errors out mid-stream, or is stopped. Stop only
// signals; it never waits for the playback goroutine.
type VoiceHandle interface {
	Play(source string, onDone func()) error
	Pause() error
	Resume() error
	Stop()
	IsPlaying() bool
	IsPaused() bool
	ChannelID() string
	Disconnect() error
}

// Connector joins a guild voice channel and returns a handle for it.
type Connector interface {
	Connect(guildID, channelID string) (VoiceHandle, error)
}

// TrackResolver turns user queries into playable tracks.
type TrackResolver interface {
	// IsBundle reports whether input references a multi-track collection.
	IsBundle(input string) bool
	// ResolveBundle expands a collection reference into an ordered sequence
	// of single-track queries. An empty result means the whole bundle failed.
	ResolveBundle(input string) ([]string, error)
	// ResolveTrack resolves one query to a Track.
	ResolveTrack(query string) (*Track, error)
}

// Notifier posts playback notices to a text destination.
type Notifier interface {
	NowPlaying(channelID string, t Track)
}
