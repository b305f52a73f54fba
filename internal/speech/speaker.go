package speech

import (
	"context"
	"fmt"
	"log"

	"github.com/VanDung-dev/DSB-bot/internal/music/player"
)

// Speaker plays synthesized speech through a guild's voice connection. The
// session registry arbitrates the connection, so speech never talks over
// music: claiming fails fast while a track is playing, and music dispatch
// resumes when the claim is released.
type Speaker struct {
	reg  *player.Registry
	tts  *Client
	lang string
}

func NewSpeaker(reg *player.Registry, tts *Client, lang string) *Speaker {
	if lang == "" {
		lang = "en"
	}
	return &Speaker{reg: reg, tts: tts, lang: lang}
}

// Say synthesizes text and speaks it in the guild's voice channel, blocking
// until the last chunk finishes or ctx is canceled.
func (s *Speaker) Say(ctx context.Context, guildID, voiceChannelID, text string) error {
	return s.SayLang(ctx, guildID, voiceChannelID, text, s.lang)
}

// SayLang is Say with an explicit language code.
func (s *Speaker) SayLang(ctx context.Context, guildID, voiceChannelID, text, lang string) error {
	if voiceChannelID == "" {
		return player.ErrNoVoiceChannel
	}

	files, cleanup, err := s.tts.Synthesize(ctx, text, lang)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	defer cleanup()

	vh, release, err := s.reg.ClaimForSpeech(guildID, voiceChannelID)
	if err != nil {
		return err
	}
	defer release()

	for _, file := range files {
		done := make(chan struct{})
		if err := vh.Play(file, func() { close(done) }); err != nil {
			return fmt.Errorf("play chunk: %w", err)
		}

		select {
		case <-done:
		case <-ctx.Done():
			vh.Stop()
			<-done
			return ctx.Err()
		}
	}

	log.Printf("[Speech] %s: spoke %d chunk(s)", guildID, len(files))
	return nil
}
