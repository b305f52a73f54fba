package say

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/command"
	"github.com/VanDung-dev/DSB-bot/internal/music/player"
	"github.com/VanDung-dev/DSB-bot/internal/speech"
)

// VoiceStateFinder locates the voice channel a user currently sits in.
type VoiceStateFinder interface {
	FindUserVoiceState(guildID, userID string) (*discordgo.VoiceState, error)
}

// SayCommand speaks text in the caller's voice channel.
type SayCommand struct {
	Speaker *speech.Speaker
	Voice   VoiceStateFinder
}

func (c *SayCommand) Name() string        { return "say" }
func (c *SayCommand) Description() string { return "Speak text in your voice channel" }
func (c *SayCommand) Group() string       { return "speech" }
func (c *SayCommand) Category() string    { return "🗣️ Speech" }
func (c *SayCommand) RequireAdmin() bool  { return false }

func (c *SayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "What should I say?",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "language",
				Description: "Language code (en, vi, fr, ...)",
				Required:    false,
			},
		},
	}
}

func (c *SayCommand) Run(ctx *command.SlashContext) error {
	s := ctx.Session
	e := ctx.Event

	text := strings.TrimSpace(ctx.StringOption("text"))
	if text == "" {
		return command.RespondEphemeral(s, e, "🗣️ Give me something to say.")
	}

	lang := ctx.StringOption("language")
	if lang != "" && !speech.IsSupportedLang(lang) {
		return command.RespondEphemeral(s, e, fmt.Sprintf("🗣️ Unsupported language: %s", lang))
	}

	if err := command.Defer(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	voiceChannelID := ""
	if vs, err := c.Voice.FindUserVoiceState(e.GuildID, e.Member.User.ID); err == nil {
		voiceChannelID = vs.ChannelID
	}

	speakCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var err error
	if lang == "" {
		err = c.Speaker.Say(speakCtx, e.GuildID, voiceChannelID, text)
	} else {
		err = c.Speaker.SayLang(speakCtx, e.GuildID, voiceChannelID, text, lang)
	}
	if err != nil {
		return command.Followup(s, e, speechErrorMessage(err))
	}

	return command.Followup(s, e, fmt.Sprintf("🗣️ Said: %s", text))
}

func speechErrorMessage(err error) string {
	switch {
	case errors.Is(err, player.ErrNoVoiceChannel):
		return "🗣️ You need to be in a voice channel first."
	case errors.Is(err, player.ErrBusyWithMusic):
		return "🗣️ I'm playing music right now, stop it first or wait for the track to end."
	case errors.Is(err, player.ErrVoiceConnectFailed):
		return "🗣️ Couldn't join your voice channel."
	case errors.Is(err, speech.ErrEmptyText):
		return "🗣️ There was nothing to say."
	default:
		return fmt.Sprintf("🗣️ Error: %v", err)
	}
}
