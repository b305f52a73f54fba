package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/storage"
)

// Command is one slash command. Stateful commands carry their dependencies
// as struct fields and are registered by the bot at startup.
type Command interface {
	Name() string
	Description() string
	Group() string
	Category() string
	RequireAdmin() bool
	Run(ctx *SlashContext) error
}

// SlashProvider is implemented by commands that register a slash definition
// with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashContext is what the runtime passes when executing a command.
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

// Options returns the interaction options keyed by name.
func (c *SlashContext) Options() map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := c.Event.ApplicationCommandData().Options
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

// StringOption returns a string option value, or "" when absent.
func (c *SlashContext) StringOption(name string) string {
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// IntOption returns an integer option value, or 0 when absent.
func (c *SlashContext) IntOption(name string) int64 {
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}
