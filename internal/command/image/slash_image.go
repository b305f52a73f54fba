package image

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/command"
	"github.com/VanDung-dev/DSB-bot/internal/search"
)

// ImageCommand posts the top image search hit for a query.
type ImageCommand struct {
	Client *search.ImageClient
}

func (c *ImageCommand) Name() string        { return "image" }
func (c *ImageCommand) Description() string { return "Search for an image" }
func (c *ImageCommand) Group() string       { return "search" }
func (c *ImageCommand) Category() string    { return "🔍 Search" }
func (c *ImageCommand) RequireAdmin() bool  { return false }

func (c *ImageCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "What to search for",
				Required:    true,
			},
		},
	}
}

func (c *ImageCommand) Run(ctx *command.SlashContext) error {
	s := ctx.Session
	e := ctx.Event

	query := strings.TrimSpace(ctx.StringOption("query"))
	if query == "" {
		return command.RespondEphemeral(s, e, "🔍 Give me something to search for.")
	}

	if err := command.Defer(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	images, err := c.Client.SearchImages(searchCtx, query, 1)
	if err != nil {
		if errors.Is(err, search.ErrNoImages) {
			return command.Followup(s, e, fmt.Sprintf("🔍 No images found for **%s**.", query))
		}
		return command.Followup(s, e, "🔍 Image search failed, try again later.")
	}

	img := images[0]
	return command.FollowupEmbed(s, e, &discordgo.MessageEmbed{
		Title: img.Title,
		URL:   img.PageURL,
		Image: &discordgo.MessageEmbedImage{URL: img.URL},
		Color: command.EmbedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Results for: %s", query),
		},
	})
}
