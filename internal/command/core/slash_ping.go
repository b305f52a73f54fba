package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/command"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check if the bot is alive" }
func (c *PingCommand) Group() string       { return "core" }
func (c *PingCommand) Category() string    { return "⚙️ Core" }
func (c *PingCommand) RequireAdmin() bool  { return false }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PingCommand) Run(ctx *command.SlashContext) error {
	latency := ctx.Session.HeartbeatLatency().Milliseconds()
	return command.Respond(ctx.Session, ctx.Event, fmt.Sprintf("🏓 Pong! %dms", latency))
}
