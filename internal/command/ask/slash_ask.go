package ask

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/chat"
	"github.com/VanDung-dev/DSB-bot/internal/command"
)

// AskCommand sends a one-off question to the AI backend.
type AskCommand struct {
	Relay *chat.Relay
}

func (c *AskCommand) Name() string        { return "ask" }
func (c *AskCommand) Description() string { return "Ask the bot a question" }
func (c *AskCommand) Group() string       { return "chat" }
func (c *AskCommand) Category() string    { return "💬 Chat" }
func (c *AskCommand) RequireAdmin() bool  { return false }

func (c *AskCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "question",
				Description: "What do you want to know?",
				Required:    true,
			},
		},
	}
}

func (c *AskCommand) Run(ctx *command.SlashContext) error {
	s := ctx.Session
	e := ctx.Event

	question := strings.TrimSpace(ctx.StringOption("question"))
	if question == "" {
		return command.RespondEphemeral(s, e, "💬 Ask something first.")
	}

	// Generation regularly exceeds the interaction deadline.
	if err := command.Defer(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	genCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	reply, err := c.Relay.Reply(genCtx, e.ChannelID, e.Member.User.Username, question)
	if err != nil {
		return command.Followup(s, e, "💬 Sorry, I couldn't come up with an answer. Try again later.")
	}

	return command.Followup(s, e, reply)
}
