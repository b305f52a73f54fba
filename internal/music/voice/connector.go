package voice

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/VanDung-dev/DSB-bot/internal/music/player"
)

// Connector joins guild voice channels through a discordgo session.
type Connector struct {
	dg *discordgo.Session
}

func NewConnector(dg *discordgo.Session) *Connector {
	return &Connector{dg: dg}
}

// Connect joins channelID on guildID muted-off and deafened and returns a
// streaming handle for it.
func (c *Connector) Connect(guildID, channelID string) (player.VoiceHandle, error) {
	vc, err := c.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	log.Printf("[Voice] Joined voice channel %s on guild %s", channelID, guildID)
	return NewHandle(vc), nil
}
