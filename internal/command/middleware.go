package command

import (
	"log"
	"time"

	"github.com/VanDung-dev/DSB-bot/internal/storage"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx *SlashContext) error
}

func (w *wrappedCommand) Run(ctx *SlashContext) error {
	return w.wrap(ctx)
}

// Apply wraps cmd in mws, outermost first.
func Apply(cmd Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		cmd = mws[i](cmd)
	}
	return cmd
}

// WithGuildOnly rejects invocations outside a guild.
func WithGuildOnly(cmd Command) Command {
	return &wrappedCommand{
		Command: cmd,
		wrap: func(ctx *SlashContext) error {
			if ctx.Event.GuildID == "" {
				return RespondEphemeral(ctx.Session, ctx.Event, "You must be in a guild to use this command.")
			}
			return cmd.Run(ctx)
		},
	}
}

// WithAdminOnly rejects non-administrators when the command requires admin.
func WithAdminOnly(cmd Command) Command {
	return &wrappedCommand{
		Command: cmd,
		wrap: func(ctx *SlashContext) error {
			if !cmd.RequireAdmin() {
				return cmd.Run(ctx)
			}
			member := ctx.Event.Member
			if member == nil || !IsAdministrator(ctx.Session, ctx.Event.GuildID, member) {
				return RespondEphemeral(ctx.Session, ctx.Event, "You need administrator permissions for this command.")
			}
			return cmd.Run(ctx)
		},
	}
}

// WithCommandLogger records the invocation in the guild's command history.
func WithCommandLogger(cmd Command) Command {
	return &wrappedCommand{
		Command: cmd,
		wrap: func(ctx *SlashContext) error {
			if ctx.Storage != nil && ctx.Event.Member != nil {
				rec := storage.CommandHistoryRecord{
					ChannelID: ctx.Event.ChannelID,
					UserID:    ctx.Event.Member.User.ID,
					Username:  ctx.Event.Member.User.Username,
					Command:   cmd.Name(),
					Datetime:  time.Now(),
				}
				if ch, err := ctx.Session.State.Channel(ctx.Event.ChannelID); err == nil {
					rec.ChannelName = ch.Name
				}
				if g, err := ctx.Session.State.Guild(ctx.Event.GuildID); err == nil {
					rec.GuildName = g.Name
				}
				if err := ctx.Storage.AppendCommandToHistory(ctx.Event.GuildID, rec); err != nil {
					log.Printf("[Command] failed to log %s: %v", cmd.Name(), err)
				}
			}
			return cmd.Run(ctx)
		},
	}
}
