package repo

import (
	"context"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
)

// ChannelRepo sends messages to channels through the platform API and
// looks up channel metadata.
type ChannelRepo interface {
	// SendMessage posts content and embeds to a channel, returning the
	// created message id.
	SendMessage(ctx context.Context, channelID int64, content string, embeds []domain.Embed) (string, error)

	// SendText posts a plain text message (used for broadcast pings).
	SendText(ctx context.Context, channelID int64, content string) error

	// ChannelName resolves a channel's display name from the platform.
	ChannelName(ctx context.Context, channelID int64) (string, error)

	// CurrentUserID returns the id of the authenticated user.
	CurrentUserID(ctx context.Context) (string, error)
}
