package moderation

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/command"
)

// BadwordsCommand manages the per-guild filtered word list.
type BadwordsCommand struct{}

func (c *BadwordsCommand) Name() string        { return "badwords" }
func (c *BadwordsCommand) Description() string { return "Manage the filtered word list" }
func (c *BadwordsCommand) Group() string       { return "moderation" }
func (c *BadwordsCommand) Category() string    { return "🛡️ Moderation" }
func (c *BadwordsCommand) RequireAdmin() bool  { return true }

func (c *BadwordsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Add a word to the filter",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "word",
						Description: "Word to filter",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Remove a word from the filter",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "word",
						Description: "Word to unfilter",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "Show the filtered words",
			},
		},
	}
}

func (c *BadwordsCommand) Run(ctx *command.SlashContext) error {
	s := ctx.Session
	e := ctx.Event

	if len(e.ApplicationCommandData().Options) == 0 {
		return command.RespondEphemeral(s, e, "Missing subcommand.")
	}
	sub := e.ApplicationCommandData().Options[0]

	var word string
	for _, opt := range sub.Options {
		if opt.Name == "word" {
			word = strings.ToLower(strings.TrimSpace(opt.StringValue()))
		}
	}

	switch sub.Name {
	case "add":
		if word == "" {
			return command.RespondEphemeral(s, e, "🛡️ Give me a word to add.")
		}
		if err := ctx.Storage.AddBadWord(e.GuildID, word); err != nil {
			return command.RespondEphemeral(s, e, fmt.Sprintf("🛡️ %v", err))
		}
		return command.RespondEphemeral(s, e, fmt.Sprintf("🛡️ Added `%s` to the filter.", word))

	case "remove":
		if word == "" {
			return command.RespondEphemeral(s, e, "🛡️ Give me a word to remove.")
		}
		if err := ctx.Storage.RemoveBadWord(e.GuildID, word); err != nil {
			return command.RespondEphemeral(s, e, fmt.Sprintf("🛡️ %v", err))
		}
		return command.RespondEphemeral(s, e, fmt.Sprintf("🛡️ Removed `%s` from the filter.", word))

	case "list":
		words, err := ctx.Storage.GetBadWords(e.GuildID)
		if err != nil {
			return command.RespondEphemeral(s, e, fmt.Sprintf("🛡️ %v", err))
		}
		if len(words) == 0 {
			return command.RespondEphemeral(s, e, "🛡️ The filter list is empty.")
		}
		return command.RespondEphemeral(s, e, fmt.Sprintf("🛡️ Filtered words: `%s`", strings.Join(words, "`, `")))

	default:
		return command.RespondEphemeral(s, e, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}
}
