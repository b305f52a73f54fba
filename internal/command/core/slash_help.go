package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/command"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List available commands" }
func (c *HelpCommand) Group() string       { return "core" }
func (c *HelpCommand) Category() string    { return "⚙️ Core" }
func (c *HelpCommand) RequireAdmin() bool  { return false }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *HelpCommand) Run(ctx *command.SlashContext) error {
	byCategory := map[string][]command.Command{}
	for _, cmd := range command.All() {
		byCategory[cmd.Category()] = append(byCategory[cmd.Category()], cmd)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var fields []*discordgo.MessageEmbedField
	for _, cat := range categories {
		var sb strings.Builder
		for _, cmd := range byCategory[cat] {
			fmt.Fprintf(&sb, "`/%s` — %s\n", cmd.Name(), cmd.Description())
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  cat,
			Value: sb.String(),
		})
	}

	return command.RespondEmbed(ctx.Session, ctx.Event, &discordgo.MessageEmbed{
		Title:  "Commands",
		Fields: fields,
		Color:  command.EmbedColor,
	})
}
