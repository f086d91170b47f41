package chat

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Attachment is a file carried by a message
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is everything the bot posts: text, embeds, components and files
type Message struct {
	Content     string
	Embeds      []*discordgo.MessageEmbed
	Components  []discordgo.MessageComponent
	Attachments []Attachment
}

// Posted is a message already in a channel
type Posted struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
}

// Surface is the slice of the chat platform the investment flows need
//
//go:generate mockgen -source=chat.go -destination=../mocks/chat.go -package=mocks -mock_names=Surface=MockSurface
type Surface interface {
	// Send posts msg to channelID and returns the new message id
	Send(ctx context.Context, channelID string, msg Message) (string, error)
	// Edit replaces the components of a posted message
	Edit(ctx context.Context, channelID, messageID string, components []discordgo.MessageComponent) error
	Delete(ctx context.Context, channelID, messageID string) error
	// SendDirect opens a DM with userID and posts msg there
	SendDirect(ctx context.Context, userID string, msg Message) (string, error)
	// RecentMessages returns up to limit of the newest messages, newest first
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Posted, error)
	HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
	// GuildIcon returns the guild icon image, or nil when the guild has none
	GuildIcon(ctx context.Context, guildID string) ([]byte, error)
	BotUserID() string
}
