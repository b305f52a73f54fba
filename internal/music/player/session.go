package player

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/VanDung-dev/DSB-bot/internal/music/voicegate"
)

// maxStartFailures caps consecutive playback-start failures per dispatch
// chain; after that the error is surfaced instead of skipping forever.
const maxStartFailures = 3

// Session holds one guild's playback state: the FIFO queue, the now-playing
// slot, the voice handle and the inactivity timer. All mutation happens under
// mu; the voice handle's completion callback re-enters through onTrackDone.
type Session struct {
	guildID string
	reg     *Registry

	mu          sync.Mutex
	queue       []Track
	nowPlaying  *Track
	voice       VoiceHandle
	idleTimer   *time.Timer
	playGen     uint64 // bumped per playback start; stale callbacks are ignored
	consecFails int
}

// EnqueueResult tells the command surface what happened to a play request.
type EnqueueResult struct {
	Started       bool  // playback began immediately with Track
	Track         Track // the started track, or the first track queued
	Queued        int   // tracks appended
	Skipped       int   // bundle entries dropped due to resolution failures
	Position      int   // 1-based queue position of the last appended track when not started
	PendingSpeech bool  // tracks parked behind an active utterance; dispatched on its release
}

// Enqueue resolves query and appends the result to the guild's queue,
// starting playback if nothing is playing. The session lock is held for the
// whole call so concurrent play requests on one guild serialize end to end:
// connect, queue inspection and append are atomic per guild.
func (r *Registry) Enqueue(guildID, voiceChannelID, textChannelID, query string) (*EnqueueResult, error) {
	if voiceChannelID == "" {
		return nil, ErrNoVoiceChannel
	}

	s := r.GetOrCreate(guildID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voice == nil {
		vh, err := r.connector.Connect(guildID, voiceChannelID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVoiceConnectFailed, err)
		}
		s.voice = vh
	}

	s.cancelIdleLocked()

	if holder, held := r.gate.Holder(guildID); held && holder == voicegate.OwnerSpeech {
		s.rearmIdleIfQuietLocked()
		return nil, ErrBusyWithSpeech
	}

	tracks, skipped, err := r.resolveQuery(guildID, query)
	if err != nil {
		s.rearmIdleIfQuietLocked()
		return nil, err
	}
	for i := range tracks {
		tracks[i].ChannelID = textChannelID
	}

	s.queue = append(s.queue, tracks...)
	log.Printf("[Player] %s: queued %d track(s) (%d skipped) | queueLen=%d", guildID, len(tracks), skipped, len(s.queue))

	res := &EnqueueResult{Track: tracks[0], Queued: len(tracks), Skipped: skipped}
	if s.nowPlaying == nil {
		if err := s.dispatchLocked(); err != nil {
			if errors.Is(err, ErrBusyWithSpeech) {
				// speech took the gate between the entry check and dispatch;
				// the tracks stay queued and play when the utterance releases
				res.PendingSpeech = true
				res.Position = len(s.queue)
				return res, nil
			}
			return nil, err
		}
		res.Started = true
		if s.nowPlaying != nil {
			res.Track = *s.nowPlaying
		}
	} else {
		res.Position = len(s.queue)
	}
	return res, nil
}

// resolveQuery expands bundles and resolves each entry. Individual bundle
// entries that fail to resolve are logged and skipped; only a fully-failed
// resolution is fatal.
func (r *Registry) resolveQuery(guildID, query string) ([]Track, int, error) {
	if !r.resolver.IsBundle(query) {
		t, err := r.resolver.ResolveTrack(query)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %q", ErrTrackNotFound, query)
		}
		return []Track{*t}, 0, nil
	}

	entries, err := r.resolver.ResolveBundle(query)
	if err != nil || len(entries) == 0 {
		return nil, 0, fmt.Errorf("%w: %q", ErrTrackNotFound, query)
	}

	var tracks []Track
	skipped := 0
	for _, entry := range entries {
		t, err := r.resolver.ResolveTrack(entry)
		if err != nil {
			log.Printf("[Player] %s: skipping bundle entry %q: %v", guildID, entry, err)
			skipped++
			continue
		}
		tracks = append(tracks, *t)
	}
	if len(tracks) == 0 {
		return nil, 0, fmt.Errorf("%w: %q", ErrTrackNotFound, query)
	}
	return tracks, skipped, nil
}

// dispatchLocked advances the queue: pops the FIFO head into nowPlaying and
// starts it, or, with an empty queue, clears nowPlaying, returns the audio
// gate and schedules the idle teardown. Callers must hold s.mu.
func (s *Session) dispatchLocked() error {
	for {
		if len(s.queue) == 0 {
			s.nowPlaying = nil
			s.reg.gate.Release(s.guildID, voicegate.OwnerMusic)
			s.startIdleLocked()
			return nil
		}

		if !s.reg.gate.TryAcquire(s.guildID, voicegate.OwnerMusic) {
			// speech slipped in ahead of us; the queue stays intact and is
			// dispatched again when the speech release hands the gate back
			s.nowPlaying = nil
			return ErrBusyWithSpeech
		}

		t := s.queue[0]
		s.queue = s.queue[1:]
		s.nowPlaying = &t

		s.playGen++
		gen := s.playGen
		if err := s.voice.Play(t.StreamURL, func() { s.onTrackDone(gen) }); err != nil {
			log.Printf("[Player] %s: failed to start %q: %v, skipping", s.guildID, t.Title, err)
			s.consecFails++
			if s.consecFails >= maxStartFailures {
				s.consecFails = 0
				s.nowPlaying = nil
				s.reg.gate.Release(s.guildID, voicegate.OwnerMusic)
				s.startIdleLocked()
				return fmt.Errorf("%w: %d tracks in a row", ErrPlaybackStartFailed, maxStartFailures)
			}
			continue
		}
		s.consecFails = 0

		log.Printf("[Player] %s: now playing %q | queueLen=%d", s.guildID, t.Title, len(s.queue))
		if t.ChannelID != "" && s.reg.notifier != nil {
			s.reg.notifier.NowPlaying(t.ChannelID, t)
		}
		return nil
	}
}

// onTrackDone is the completion callback. Each playback start captures its
// generation; a stale generation means the session already moved past that
// track (skip racing natural completion, or teardown), so the callback is
// dropped instead of double-advancing the queue.
func (s *Session) onTrackDone(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.playGen {
		return
	}
	if err := s.dispatchLocked(); err != nil {
		log.Printf("[Player] %s: dispatch after track end: %v", s.guildID, err)
	}
}

func (s *Session) startIdleLocked() {
	s.cancelIdleLocked()
	if s.voice == nil {
		return
	}
	s.idleTimer = time.AfterFunc(s.reg.idleTimeout, func() { s.reg.idleFire(s.guildID) })
}

// rearmIdleIfQuietLocked restarts the idle timer when a request leaves the
// session with nothing playing and nothing queued, so a failed request after
// a fresh voice connect cannot hold the handle forever.
func (s *Session) rearmIdleIfQuietLocked() {
	if s.nowPlaying == nil && len(s.queue) == 0 {
		s.startIdleLocked()
	}
}

func (s *Session) cancelIdleLocked() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
}

// Skip stops the active track; the completion callback advances the queue.
func (r *Registry) Skip(guildID string) (*Track, error) {
	s, ok := r.get(guildID)
	if !ok {
		return nil, ErrNothingPlaying
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nowPlaying == nil || s.voice == nil {
		return nil, ErrNothingPlaying
	}

	t := *s.nowPlaying
	s.voice.Stop()
	return &t, nil
}

// PauseToggle pauses if playing, resumes if paused.
func (r *Registry) PauseToggle(guildID string) (resumed bool, err error) {
	s, ok := r.get(guildID)
	if !ok {
		return false, ErrNothingToPauseOrResume
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice == nil {
		return false, ErrNothingToPauseOrResume
	}

	switch {
	case s.voice.IsPaused():
		return true, s.voice.Resume()
	case s.voice.IsPlaying():
		return false, s.voice.Pause()
	default:
		return false, ErrNothingToPauseOrResume
	}
}

// Stop halts playback and clears the queue but keeps the voice connection;
// the idle timer decides when to actually leave.
func (r *Registry) Stop(guildID string) error {
	s, ok := r.get(guildID)
	if !ok {
		return ErrNothingPlaying
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nowPlaying == nil && len(s.queue) == 0 {
		return ErrNothingPlaying
	}

	s.queue = nil
	s.nowPlaying = nil
	s.playGen++ // orphan the in-flight completion callback
	if s.voice != nil {
		s.voice.Stop()
	}
	r.gate.Release(s.guildID, voicegate.OwnerMusic)
	s.startIdleLocked()
	log.Printf("[Player] %s: playback stopped, queue cleared", guildID)
	return nil
}

// Leave tears the whole session down and disconnects from voice.
func (r *Registry) Leave(guildID string) error {
	if _, ok := r.get(guildID); !ok {
		return ErrNotConnected
	}
	r.Teardown(guildID)
	return nil
}

// Clear drops every queued track but leaves the current one playing.
// Returns how many tracks were removed.
func (r *Registry) Clear(guildID string) int {
	s, ok := r.get(guildID)
	if !ok {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.queue)
	s.queue = nil
	if n > 0 {
		log.Printf("[Player] %s: cleared %d queued track(s)", guildID, n)
	}
	return n
}

// RemoveAt removes the track at the 1-based queue position, preserving the
// relative order of the rest.
func (r *Registry) RemoveAt(guildID string, position int) (*Track, error) {
	s, ok := r.get(guildID)
	if !ok {
		return nil, ErrInvalidIndex
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if position < 1 || position > len(s.queue) {
		return nil, ErrInvalidIndex
	}

	t := s.queue[position-1]
	s.queue = append(s.queue[:position-1], s.queue[position:]...)
	return &t, nil
}

// QueueSnapshot is a read-only view of a guild's playback state.
type QueueSnapshot struct {
	NowPlaying *Track
	Queue      []Track
}

// Queue returns an ordered snapshot of the guild's queue plus the current
// track. Never mutates; unknown guilds return an empty snapshot.
func (r *Registry) Queue(guildID string) QueueSnapshot {
	s, ok := r.get(guildID)
	if !ok {
		return QueueSnapshot{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := QueueSnapshot{Queue: make([]Track, len(s.queue))}
	copy(snap.Queue, s.queue)
	if s.nowPlaying != nil {
		t := *s.nowPlaying
		snap.NowPlaying = &t
	}
	return snap
}
