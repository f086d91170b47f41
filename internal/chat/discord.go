package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
)

// Discord error codes the bot treats as "nothing there"
const (
	ErrCodeUnknownMember  = discordgo.ErrCodeUnknownMember
	ErrCodeUnknownMessage = discordgo.ErrCodeUnknownMessage
	ErrCodeUnknownChannel = discordgo.ErrCodeUnknownChannel
)

// iconSize is the edge length requested for guild icons
const iconSize = "128"

// Discord implements Surface on a discordgo session
type Discord struct {
	session *discordgo.Session
	http    adapter.HTTPClient
}

// NewDiscord wraps session. httpClient downloads guild icons.
func NewDiscord(session *discordgo.Session, httpClient adapter.HTTPClient) *Discord {
	return &Discord{session: session, http: httpClient}
}

// Session exposes the underlying session for gateway level work
func (d *Discord) Session() *discordgo.Session {
	return d.session
}

func (d *Discord) Send(ctx context.Context, channelID string, msg Message) (string, error) {
	sent, err := d.session.ChannelMessageSendComplex(channelID, ToMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return sent.ID, nil
}

func (d *Discord) Edit(ctx context.Context, channelID, messageID string, components []discordgo.MessageComponent) error {
	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to edit message %s: %w", messageID, err)
	}
	return nil
}

func (d *Discord) Delete(ctx context.Context, channelID, messageID string) error {
	if err := d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		if IsRESTCode(err, ErrCodeUnknownMessage) {
			return nil
		}
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return nil
}

func (d *Discord) SendDirect(ctx context.Context, userID string, msg Message) (string, error) {
	dm, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to open dm with %s: %w", userID, err)
	}
	return d.Send(ctx, dm.ID, msg)
}

func (d *Discord) RecentMessages(ctx context.Context, channelID string, limit int) ([]Posted, error) {
	msgs, err := d.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to read messages of %s: %w", channelID, err)
	}
	out := make([]Posted, 0, len(msgs))
	for _, m := range msgs {
		p := Posted{ID: m.ID, ChannelID: m.ChannelID, Content: m.Content}
		if m.Author != nil {
			p.AuthorID = m.Author.ID
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *Discord) HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	member, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if IsRESTCode(err, ErrCodeUnknownMember) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get member %s: %w", userID, err)
	}
	return slices.Contains(member.Roles, roleID), nil
}

func (d *Discord) GuildIcon(ctx context.Context, guildID string) ([]byte, error) {
	var guild *discordgo.Guild
	if d.session.State != nil {
		guild, _ = d.session.State.Guild(guildID)
	}
	if guild == nil {
		var err error
		guild, err = d.session.Guild(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to get guild %s: %w", guildID, err)
		}
	}
	iconURL := guild.IconURL(iconSize)
	if iconURL == "" {
		return nil, nil
	}
	return d.http.GetBytes(ctx, iconURL)
}

func (d *Discord) BotUserID() string {
	if d.session.State == nil || d.session.State.User == nil {
		return ""
	}
	return d.session.State.User.ID
}

// ToMessageSend converts msg to the discordgo payload
func ToMessageSend(msg Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: msg.Components,
	}
	for _, a := range msg.Attachments {
		send.Files = append(send.Files, &discordgo.File{
			Name:        a.Name,
			ContentType: a.ContentType,
			Reader:      bytes.NewReader(a.Data),
		})
	}
	return send
}

// IsRESTCode reports whether err is a Discord API error with the given code
func IsRESTCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	return restErr.Message != nil && restErr.Message.Code == code
}
