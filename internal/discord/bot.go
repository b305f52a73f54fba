package discord

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/ai"
	"github.com/VanDung-dev/DSB-bot/internal/chat"
	"github.com/VanDung-dev/DSB-bot/internal/command"
	"github.com/VanDung-dev/DSB-bot/internal/command/ask"
	cmdcore "github.com/VanDung-dev/DSB-bot/internal/command/core"
	"github.com/VanDung-dev/DSB-bot/internal/command/image"
	"github.com/VanDung-dev/DSB-bot/internal/command/moderation"
	"github.com/VanDung-dev/DSB-bot/internal/command/music"
	"github.com/VanDung-dev/DSB-bot/internal/command/say"
	"github.com/VanDung-dev/DSB-bot/internal/config"
	"github.com/VanDung-dev/DSB-bot/internal/music/player"
	"github.com/VanDung-dev/DSB-bot/internal/music/resolver"
	"github.com/VanDung-dev/DSB-bot/internal/music/voice"
	"github.com/VanDung-dev/DSB-bot/internal/music/voicegate"
	"github.com/VanDung-dev/DSB-bot/internal/search"
	"github.com/VanDung-dev/DSB-bot/internal/speech"
	"github.com/VanDung-dev/DSB-bot/internal/storage"
)

// Bot wires the Discord gateway to the playback registry, chat relay and
// the rest of the feature components.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage

	registry *player.Registry
	relay    *chat.Relay
	speaker  *speech.Speaker
	images   *search.ImageClient
}

// StartBot runs the bot until ctx is canceled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	provider, err := ai.NewProvider(cfg.AIProvider, cfg.AIModel, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("ai provider: %w", err)
	}

	b := &Bot{
		dg:      dg,
		cfg:     cfg,
		storage: store,
		relay:   chat.NewRelay(provider, cfg.SystemPrompt),
		images:  search.NewImageClient(),
	}

	b.registry = player.NewRegistry(
		voice.NewConnector(dg),
		resolver.New(),
		voicegate.New(),
		b,
		cfg.IdleTimeout,
	)
	b.speaker = speech.NewSpeaker(b.registry, speech.NewClient(), cfg.TTSLang)

	b.registerAllCommands()

	dg.Identify.Intents = discordgo.IntentsAll
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onGuildMemberAdd)
	dg.AddHandler(b.onGuildMemberRemove)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

// registerAllCommands places every slash command in the registry with the
// shared middleware chain.
func (b *Bot) registerAllCommands() {
	cmds := []command.Command{
		&music.MusicCommand{Registry: b.registry, Voice: b},
		&say.SayCommand{Speaker: b.speaker, Voice: b},
		&ask.AskCommand{Relay: b.relay},
		&image.ImageCommand{Client: b.images},
		&moderation.BadwordsCommand{},
		&cmdcore.GreetCommand{},
		&cmdcore.HelpCommand{},
		&cmdcore.PingCommand{},
	}
	for _, c := range cmds {
		command.Register(command.Apply(c,
			command.WithGuildOnly,
			command.WithAdminOnly,
			command.WithCommandLogger,
		))
	}
}

// onReady registers slash definitions for every guild the bot sits in.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	for _, g := range r.Guilds {
		if err := b.registerSlashCommands(g.ID); err != nil {
			log.Println("[ERR] Error registering slash commands for guild", g.ID, ":", err)
		}
	}

	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)
	if err := b.registerSlashCommands(g.Guild.ID); err != nil {
		log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
	}
}

// registerSlashCommands reconciles the guild's slash commands with the
// registry: obsolete ones are deleted, current ones recreated under a rate
// ticker so bulk registration stays inside the API budget.
func (b *Bot) registerSlashCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	var wanted []*discordgo.ApplicationCommand
	names := make(map[string]bool)
	for _, cmd := range command.All() {
		if sp, ok := cmd.(command.SlashProvider); ok {
			if def := sp.SlashDefinition(); def != nil {
				if def.Type == 0 {
					def.Type = discordgo.ChatApplicationCommand
				}
				wanted = append(wanted, def)
				names[def.Name] = true
			}
		}
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	for _, old := range existing {
		if !names[old.Name] {
			log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, old.Name)
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, old.Name, err)
			}
		}
	}

	ticker := time.NewTicker(time.Second / 40)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for _, job := range wanted {
		wg.Add(1)
		go func(def *discordgo.ApplicationCommand) {
			defer wg.Done()
			<-ticker.C
			if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
				log.Printf("[ERR] Can't create command %s: %v", def.Name, err)
			}
		}(job)
	}
	wg.Wait()

	return nil
}

// onInteractionCreate dispatches slash invocations to registered commands.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmdName := i.ApplicationCommandData().Name
	cmd, ok := command.Get(cmdName)
	if !ok {
		log.Printf("[WARN] Unknown command: %s", cmdName)
		return
	}

	ctx := &command.SlashContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Println("[ERR] Error running slash command:", err)
		_ = command.RespondEphemeral(s, i, fmt.Sprintf("Error running command: %v", err))
	}
}

// FindUserVoiceState finds the voice state of a user via gateway state.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*discordgo.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs, nil
		}
	}
	return nil, fmt.Errorf("user not in any voice channel")
}

// NowPlaying posts a playback notice; implements the registry's notifier.
func (b *Bot) NowPlaying(channelID string, t player.Track) {
	_, err := b.dg.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       "▶️ Now Playing",
		Description: fmt.Sprintf("🎶 [%s](%s) `%s`", t.Title, t.PageURL, t.DurationString()),
		Color:       command.EmbedColor,
	})
	if err != nil {
		log.Printf("[ERR] Failed to post now-playing notice: %v", err)
	}
}
