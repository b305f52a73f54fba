package player

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/VanDung-dev/DSB-bot/internal/music/voicegate"
)

// DefaultIdleTimeout is how long an idle session keeps its voice connection
// before leaving the channel.
const DefaultIdleTimeout = 60 * time.Second

// Registry owns one Session per guild. It is the sole authority that creates
// and destroys voice connections; all session-mutating operations go through
// it. Independent guilds never contend.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	connector   Connector
	resolver    TrackResolver
	gate        *voicegate.Gate
	notifier    Notifier
	idleTimeout time.Duration
}

func NewRegistry(connector Connector, resolver TrackResolver, gate *voicegate.Gate, notifier Notifier, idleTimeout time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		connector:   connector,
		resolver:    resolver,
		gate:        gate,
		notifier:    notifier,
		idleTimeout: idleTimeout,
	}
}

// GetOrCreate returns the guild's session, lazily allocating it.
func (r *Registry) GetOrCreate(guildID string) *Session {
	r.mu.RLock()
	s, ok := r.sessions[guildID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[guildID]; ok {
		return s
	}
	s = &Session{guildID: guildID, reg: r}
	r.sessions[guildID] = s
	return s
}

func (r *Registry) get(guildID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// Teardown stops playback, releases the voice connection and removes the
// session. Idempotent: unknown guilds are a no-op.
func (r *Registry) Teardown(guildID string) {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	if ok {
		delete(r.sessions, guildID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	s.cancelIdleLocked()
	s.queue = nil
	s.nowPlaying = nil
	s.playGen++ // orphan any in-flight completion callback
	if s.voice != nil {
		s.voice.Stop()
		if err := s.voice.Disconnect(); err != nil {
			log.Printf("[Player] %s: voice disconnect: %v", guildID, err)
		}
		s.voice = nil
	}
	s.mu.Unlock()

	r.gate.Release(guildID, voicegate.OwnerMusic)
	log.Printf("[Player] %s: session torn down", guildID)
}

// ClaimForSpeech hands the guild's voice connection to the speech component.
// It acquires the guild audio gate fail-fast, cancels any pending idle
// teardown, and connects if no handle exists yet. The returned release func
// must be called after the utterance; it returns the gate and either restarts
// the idle timer or dispatches music that queued up meanwhile.
func (r *Registry) ClaimForSpeech(guildID, channelID string) (VoiceHandle, func(), error) {
	if !r.gate.TryAcquire(guildID, voicegate.OwnerSpeech) {
		return nil, nil, ErrBusyWithMusic
	}

	s := r.GetOrCreate(guildID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelIdleLocked()
	if s.voice == nil {
		vh, err := r.connector.Connect(guildID, channelID)
		if err != nil {
			r.gate.Release(guildID, voicegate.OwnerSpeech)
			return nil, nil, fmt.Errorf("%w: %v", ErrVoiceConnectFailed, err)
		}
		s.voice = vh
	}

	vh := s.voice
	release := func() {
		r.gate.Release(guildID, voicegate.OwnerSpeech)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.nowPlaying == nil && len(s.queue) > 0 {
			// music lost the gate race after queueing; pick it up now
			if err := s.dispatchLocked(); err != nil {
				log.Printf("[Player] %s: dispatch after speech: %v", guildID, err)
			}
		} else if s.nowPlaying == nil && s.voice != nil {
			s.startIdleLocked()
		}
	}
	return vh, release, nil
}

// idleFire runs when a session's inactivity delay elapses. The idle check
// and the removal happen under both locks: a play request racing a timer
// that already fired wins, and the session stays up.
func (r *Registry) idleFire(guildID string) {
	if holder, held := r.gate.Holder(guildID); held && holder == voicegate.OwnerSpeech {
		return
	}

	r.mu.Lock()
	s, ok := r.sessions[guildID]
	if !ok {
		r.mu.Unlock()
		return
	}
	s.mu.Lock()
	if len(s.queue) != 0 || s.nowPlaying != nil {
		s.mu.Unlock()
		r.mu.Unlock()
		return
	}
	delete(r.sessions, guildID)
	r.mu.Unlock()

	s.cancelIdleLocked()
	s.playGen++
	if s.voice != nil {
		s.voice.Stop()
		if err := s.voice.Disconnect(); err != nil {
			log.Printf("[Player] %s: voice disconnect: %v", guildID, err)
		}
		s.voice = nil
	}
	s.mu.Unlock()

	r.gate.Release(guildID, voicegate.OwnerMusic)
	log.Printf("[Player] %s: idle timeout reached, left voice", guildID)
}
