package music

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/command"
	"github.com/VanDung-dev/DSB-bot/internal/music/player"
)

// VoiceStateFinder locates the voice channel a user currently sits in.
type VoiceStateFinder interface {
	FindUserVoiceState(guildID, userID string) (*discordgo.VoiceState, error)
}

// MusicCommand drives the per-guild playback queue.
type MusicCommand struct {
	Registry *player.Registry
	Voice    VoiceStateFinder
}

func (c *MusicCommand) Name() string        { return "music" }
func (c *MusicCommand) Description() string { return "Control music playback" }
func (c *MusicCommand) Group() string       { return "music" }
func (c *MusicCommand) Category() string    { return "🎵 Music" }
func (c *MusicCommand) RequireAdmin() bool  { return false }

func (c *MusicCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "play",
				Description: "Play a track or playlist, or queue it",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "input",
						Description: "Link or search query",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "skip",
				Description: "Skip the current track",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "pause",
				Description: "Pause or resume playback",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stop",
				Description: "Stop playback and clear the queue",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "leave",
				Description: "Leave the voice channel",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Remove a queued track by position",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "position",
						Description: "Queue position, starting at 1",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "clear",
				Description: "Clear the queue, keeping the current track",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "queue",
				Description: "Show the current queue",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "nowplaying",
				Description: "Show the track playing right now",
			},
		},
	}
}

func (c *MusicCommand) Run(ctx *command.SlashContext) error {
	s := ctx.Session
	e := ctx.Event

	if len(e.ApplicationCommandData().Options) == 0 {
		return command.RespondEphemeral(s, e, "Missing subcommand.")
	}

	sub := e.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "play":
		var input string
		for _, opt := range sub.Options {
			if opt.Name == "input" {
				input = opt.StringValue()
			}
		}
		return c.runPlay(s, e, input)
	case "skip":
		return c.runSkip(s, e)
	case "pause":
		return c.runPause(s, e)
	case "stop":
		return c.runStop(s, e)
	case "leave":
		return c.runLeave(s, e)
	case "remove":
		var pos int64
		for _, opt := range sub.Options {
			if opt.Name == "position" {
				pos = opt.IntValue()
			}
		}
		return c.runRemove(s, e, int(pos))
	case "clear":
		return c.runClear(s, e)
	case "queue":
		return c.runQueue(s, e)
	case "nowplaying":
		return c.runNowPlaying(s, e)
	default:
		return command.RespondEphemeral(s, e, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}
}

func (c *MusicCommand) runPlay(s *discordgo.Session, e *discordgo.InteractionCreate, input string) error {
	if strings.TrimSpace(input) == "" {
		return command.RespondEphemeral(s, e, "🎵 Input is required.")
	}

	// Resolution can take seconds; acknowledge before the 3s deadline.
	if err := command.Defer(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	voiceChannelID := ""
	if vs, err := c.Voice.FindUserVoiceState(e.GuildID, e.Member.User.ID); err == nil {
		voiceChannelID = vs.ChannelID
	}

	res, err := c.Registry.Enqueue(e.GuildID, voiceChannelID, e.ChannelID, input)
	if err != nil {
		return command.Followup(s, e, playbackErrorMessage(err))
	}

	if res.PendingSpeech {
		desc := fmt.Sprintf("🎶 [%s](%s)\nPlayback starts after I finish speaking.", res.Track.Title, res.Track.PageURL)
		if res.Queued > 1 {
			desc = fmt.Sprintf("🎶 %d tracks queued\nPlayback starts after I finish speaking.", res.Queued)
		}
		return command.FollowupEmbed(s, e, &discordgo.MessageEmbed{
			Title:       "➕ Added to Queue",
			Description: desc,
			Color:       command.EmbedColor,
		})
	}

	if res.Started {
		desc := fmt.Sprintf("🎶 [%s](%s)", res.Track.Title, res.Track.PageURL)
		if res.Queued > 1 {
			desc += fmt.Sprintf("\n%d more track(s) queued", res.Queued-1)
		}
		if res.Skipped > 0 {
			desc += fmt.Sprintf("\n%d entr(ies) could not be resolved", res.Skipped)
		}
		return command.FollowupEmbed(s, e, &discordgo.MessageEmbed{
			Title:       "▶️ Now Playing",
			Description: desc,
			Color:       command.EmbedColor,
		})
	}

	desc := fmt.Sprintf("🎶 [%s](%s) at position %d", res.Track.Title, res.Track.PageURL, res.Position-res.Queued+1)
	if res.Queued > 1 {
		desc = fmt.Sprintf("🎶 %d tracks queued, first at position %d", res.Queued, res.Position-res.Queued+1)
	}
	return command.FollowupEmbed(s, e, &discordgo.MessageEmbed{
		Title:       "➕ Added to Queue",
		Description: desc,
		Color:       command.EmbedColor,
	})
}

func (c *MusicCommand) runSkip(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	t, err := c.Registry.Skip(e.GuildID)
	if err != nil {
		return command.RespondEphemeral(s, e, playbackErrorMessage(err))
	}
	return command.Respond(s, e, fmt.Sprintf("⏭️ Skipped **%s**", t.Title))
}

func (c *MusicCommand) runPause(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	resumed, err := c.Registry.PauseToggle(e.GuildID)
	if err != nil {
		return command.RespondEphemeral(s, e, playbackErrorMessage(err))
	}
	if resumed {
		return command.Respond(s, e, "▶️ Resumed playback.")
	}
	return command.Respond(s, e, "⏸️ Paused playback.")
}

func (c *MusicCommand) runStop(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	if err := c.Registry.Stop(e.GuildID); err != nil {
		return command.RespondEphemeral(s, e, playbackErrorMessage(err))
	}
	return command.Respond(s, e, "⏹️ Playback stopped. Queue cleared.")
}

func (c *MusicCommand) runLeave(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	if err := c.Registry.Leave(e.GuildID); err != nil {
		return command.RespondEphemeral(s, e, playbackErrorMessage(err))
	}
	return command.Respond(s, e, "👋 Left the voice channel.")
}

func (c *MusicCommand) runRemove(s *discordgo.Session, e *discordgo.InteractionCreate, position int) error {
	t, err := c.Registry.RemoveAt(e.GuildID, position)
	if err != nil {
		return command.RespondEphemeral(s, e, playbackErrorMessage(err))
	}
	return command.Respond(s, e, fmt.Sprintf("🗑️ Removed **%s** from the queue.", t.Title))
}

func (c *MusicCommand) runClear(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	n := c.Registry.Clear(e.GuildID)
	if n == 0 {
		return command.RespondEphemeral(s, e, "🎵 The queue is already empty.")
	}
	return command.Respond(s, e, fmt.Sprintf("🗑️ Cleared %d queued track(s).", n))
}

func (c *MusicCommand) runNowPlaying(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	snap := c.Registry.Queue(e.GuildID)
	if snap.NowPlaying == nil {
		return command.RespondEphemeral(s, e, "🎵 Nothing is playing.")
	}
	return command.RespondEmbed(s, e, &discordgo.MessageEmbed{
		Title: "▶️ Now Playing",
		Description: fmt.Sprintf("🎶 [%s](%s) `%s`",
			snap.NowPlaying.Title, snap.NowPlaying.PageURL, snap.NowPlaying.DurationString()),
		Color: command.EmbedColor,
	})
}

func (c *MusicCommand) runQueue(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	snap := c.Registry.Queue(e.GuildID)
	if snap.NowPlaying == nil && len(snap.Queue) == 0 {
		return command.RespondEphemeral(s, e, "🎵 The queue is empty.")
	}

	var sb strings.Builder
	if snap.NowPlaying != nil {
		fmt.Fprintf(&sb, "**Now playing:** [%s](%s) `%s`\n",
			snap.NowPlaying.Title, snap.NowPlaying.PageURL, snap.NowPlaying.DurationString())
	}
	for i, t := range snap.Queue {
		fmt.Fprintf(&sb, "`%d.` [%s](%s) `%s`\n", i+1, t.Title, t.PageURL, t.DurationString())
		if i >= 19 {
			fmt.Fprintf(&sb, "...and %d more", len(snap.Queue)-i-1)
			break
		}
	}

	return command.RespondEmbed(s, e, &discordgo.MessageEmbed{
		Title:       "🎵 Queue",
		Description: sb.String(),
		Color:       command.EmbedColor,
	})
}

// playbackErrorMessage maps player errors to user-facing text.
func playbackErrorMessage(err error) string {
	switch {
	case errors.Is(err, player.ErrNoVoiceChannel):
		return "🎵 You need to be in a voice channel first."
	case errors.Is(err, player.ErrBusyWithSpeech):
		return "🎵 I'm speaking right now, try again in a moment."
	case errors.Is(err, player.ErrTrackNotFound):
		return "🎵 Couldn't find anything for that."
	case errors.Is(err, player.ErrNothingPlaying):
		return "🎵 Nothing is playing."
	case errors.Is(err, player.ErrNothingToPauseOrResume):
		return "🎵 Nothing to pause or resume."
	case errors.Is(err, player.ErrInvalidIndex):
		return "🎵 That queue position doesn't exist."
	case errors.Is(err, player.ErrNotConnected):
		return "🎵 I'm not in a voice channel."
	case errors.Is(err, player.ErrVoiceConnectFailed):
		return "🎵 Couldn't join your voice channel."
	case errors.Is(err, player.ErrPlaybackStartFailed):
		return "🎵 Playback keeps failing, giving up on the queue."
	default:
		return fmt.Sprintf("🎵 Error: %v", err)
	}
}
