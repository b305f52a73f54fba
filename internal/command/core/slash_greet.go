package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/command"
)

// GreetCommand pins member greetings to a specific channel instead of the
// name-based channel guess.
type GreetCommand struct{}

func (c *GreetCommand) Name() string        { return "greet-channel" }
func (c *GreetCommand) Description() string { return "Set the channel used for member greetings" }
func (c *GreetCommand) Group() string       { return "core" }
func (c *GreetCommand) Category() string    { return "⚙️ Core" }
func (c *GreetCommand) RequireAdmin() bool  { return true }

func (c *GreetCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Where to post greetings",
				Required:    true,
				ChannelTypes: []discordgo.ChannelType{
					discordgo.ChannelTypeGuildText,
				},
			},
		},
	}
}

func (c *GreetCommand) Run(ctx *command.SlashContext) error {
	s := ctx.Session
	e := ctx.Event

	var channelID string
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Name == "channel" {
			channelID = opt.ChannelValue(s).ID
		}
	}
	if channelID == "" {
		return command.RespondEphemeral(s, e, "⚙️ Pick a channel.")
	}

	if err := ctx.Storage.SetGreetChannel(e.GuildID, channelID); err != nil {
		return command.RespondEphemeral(s, e, fmt.Sprintf("⚙️ %v", err))
	}
	return command.RespondEphemeral(s, e, fmt.Sprintf("⚙️ Greetings will be posted in <#%s>.", channelID))
}
