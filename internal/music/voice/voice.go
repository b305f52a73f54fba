package voice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// Handle wraps one guild's discordgo voice connection and streams audio
// sources into it. A source is anything ffmpeg can open: an HTTPS stream
// URL or a local file path.
type Handle struct {
	vc *discordgo.VoiceConnection

	mu      sync.Mutex
	playing bool
	paused  bool
	stop    chan struct{}
}

// NewHandle wraps an established voice connection.
func NewHandle(vc *discordgo.VoiceConnection) *Handle {
	return &Handle{vc: vc}
}

// Play starts streaming source and returns once the decode pipeline is up.
// onDone fires exactly once when the stream ends for any reason, stop
// included. Calling Play while a stream is active is a mistake; the caller
// is expected to wait for onDone.
func (h *Handle) Play(source string, onDone func()) error {
	h.mu.Lock()
	if h.playing {
		h.mu.Unlock()
		return errors.New("voice handle is already streaming")
	}

	reader, cleanup, err := ffmpegPCM(source)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("open source: %w", err)
	}

	h.playing = true
	h.paused = false
	h.stop = make(chan struct{})
	stop := h.stop
	h.mu.Unlock()

	var doneOnce sync.Once
	go func() {
		defer cleanup()
		defer reader.Close()

		if err := h.vc.Speaking(true); err != nil {
			log.Printf("[Voice] speaking on: %v", err)
		}
		if err := h.encodeLoop(reader, stop); err != nil {
			log.Printf("[Voice] stream ended: %v", err)
		}
		if err := h.vc.Speaking(false); err != nil {
			log.Printf("[Voice] speaking off: %v", err)
		}

		h.mu.Lock()
		h.playing = false
		h.paused = false
		h.mu.Unlock()

		doneOnce.Do(onDone)
	}()

	return nil
}

// encodeLoop reads raw s16le PCM frames, encodes them to Opus and pushes
// them onto the connection's send channel until the stream drains or stop
// closes.
func (h *Handle) encodeLoop(stream io.Reader, stop <-chan struct{}) error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if h.waitWhilePaused(stop) {
			return nil
		}

		if _, err := io.ReadFull(stream, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case h.vc.OpusSend <- opus:
		case <-stop:
			return nil
		}
	}
}

// waitWhilePaused parks the encode loop between frames while paused.
// Returns true if stop closed during the wait.
func (h *Handle) waitWhilePaused(stop <-chan struct{}) bool {
	for {
		h.mu.Lock()
		paused := h.paused
		h.mu.Unlock()
		if !paused {
			return false
		}

		select {
		case <-stop:
			return true
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Pause suspends frame delivery without tearing down the source.
func (h *Handle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.playing {
		return errors.New("nothing is streaming")
	}
	h.paused = true
	return h.vc.Speaking(false)
}

// Resume continues a paused stream.
func (h *Handle) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.playing {
		return errors.New("nothing is streaming")
	}
	h.paused = false
	return h.vc.Speaking(true)
}

// Stop signals the active stream to end. It never waits for the playback
// goroutine; completion is reported through the Play callback.
func (h *Handle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		select {
		case <-h.stop:
		default:
			close(h.stop)
		}
	}
}

// IsPlaying reports whether a stream is active and not paused.
func (h *Handle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing && !h.paused
}

// IsPaused reports whether a stream is active but paused.
func (h *Handle) IsPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing && h.paused
}

// ChannelID returns the joined voice channel.
func (h *Handle) ChannelID() string {
	return h.vc.ChannelID
}

// Disconnect leaves the voice channel. Active streams should be stopped
// first.
func (h *Handle) Disconnect() error {
	return h.vc.Disconnect()
}
