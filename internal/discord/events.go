package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/command"
)

// Channels scanned for a greeting destination when none is configured.
var greetChannelNames = []string{"general", "welcome", "lobby"}

// onMessageCreate filters messages against the guild's bad-word list first;
// a clean message that mentions the bot goes to the chat relay.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	if b.moderateMessage(s, m) {
		return
	}

	if !mentionsUser(m.Mentions, s.State.User.ID) {
		return
	}

	content := stripMention(m.Content, s.State.User.ID)
	if content == "" {
		return
	}

	s.ChannelTyping(m.ChannelID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		reply, err := b.relay.Reply(ctx, m.ChannelID, m.Author.Username, content)
		if err != nil {
			log.Printf("[ERR] Chat reply failed: %v", err)
			return
		}

		if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
			log.Printf("[ERR] Failed to send chat reply: %v", err)
		}
	}()
}

// moderateMessage deletes a message containing a filtered word and warns the
// author. Returns true when the message was removed.
func (b *Bot) moderateMessage(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	words, err := b.storage.GetBadWords(m.GuildID)
	if err != nil {
		log.Printf("[ERR] Failed to load bad words for %s: %v", m.GuildID, err)
		return false
	}

	content := strings.ToLower(m.Content)
	for _, w := range words {
		if w == "" || !strings.Contains(content, w) {
			continue
		}

		if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
			log.Printf("[ERR] Failed to delete filtered message: %v", err)
			return false
		}
		if _, err := s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("🛡️ <@%s>, watch your language.", m.Author.ID)); err != nil {
			log.Printf("[ERR] Failed to send moderation warning: %v", err)
		}
		if dm, err := s.UserChannelCreate(m.Author.ID); err == nil {
			_, _ = s.ChannelMessageSend(dm.ID,
				"🛡️ Your message was removed because it contained a filtered word.")
		}
		log.Printf("[INFO] Removed message from %s in %s (matched %q)", m.Author.Username, m.GuildID, w)
		return true
	}

	return false
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	channelID := b.greetChannel(s, m.GuildID)
	if channelID == "" {
		return
	}

	desc := fmt.Sprintf("👋 Welcome <@%s>! Glad to have you here.\nSay hi, or mention me if you have a question.", m.User.ID)
	if guild, err := s.State.Guild(m.GuildID); err == nil && guild.MemberCount > 0 {
		desc += fmt.Sprintf("\nYou are member #%d.", guild.MemberCount)
	}

	_, err := s.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       "New member",
		Description: desc,
		Color:       command.EmbedColor,
	})
	if err != nil {
		log.Printf("[ERR] Failed to greet %s: %v", m.User.Username, err)
	}
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	channelID := b.greetChannel(s, m.GuildID)
	if channelID == "" {
		return
	}

	_, err := s.ChannelMessageSend(channelID,
		fmt.Sprintf("👋 **%s** has left the server.", m.User.Username))
	if err != nil {
		log.Printf("[ERR] Failed to post farewell for %s: %v", m.User.Username, err)
	}
}

// greetChannel picks the configured greeting channel, falling back to the
// first text channel whose name matches a known greeting name.
func (b *Bot) greetChannel(s *discordgo.Session, guildID string) string {
	if id, err := b.storage.GetGreetChannel(guildID); err == nil && id != "" {
		return id
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		return ""
	}

	for _, ch := range guild.Channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		name := strings.ToLower(ch.Name)
		for _, want := range greetChannelNames {
			if strings.Contains(name, want) {
				return ch.ID
			}
		}
	}
	return ""
}

func mentionsUser(mentions []*discordgo.User, userID string) bool {
	for _, u := range mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// stripMention removes the bot's mention tokens from the message text.
func stripMention(content, userID string) string {
	content = strings.ReplaceAll(content, fmt.Sprintf("<@%s>", userID), "")
	content = strings.ReplaceAll(content, fmt.Sprintf("<@!%s>", userID), "")
	return strings.TrimSpace(content)
}
