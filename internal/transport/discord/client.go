package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Client is the part of *discordgo.Session the bot talks to.
type Client interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

var _ Client = (*discordgo.Session)(nil)

// RoleGranter grants roles in one guild; it implements app.RoleGranter.
type RoleGranter struct {
	client  Client
	guildID string
}

func NewRoleGranter(client Client, guildID string) *RoleGranter {
	return &RoleGranter{client: client, guildID: guildID}
}

func (g *RoleGranter) GrantRole(ctx context.Context, userID, roleID string) error {
	if err := g.client.GuildMemberRoleAdd(g.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add role %s to %s: %w", roleID, userID, err)
	}
	return nil
}
