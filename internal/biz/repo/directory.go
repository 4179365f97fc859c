package repo

import "context"

// DirectoryRepo is the locally persisted channel directory used as the
// first stop when resolving destination channel names.
type DirectoryRepo interface {
	// Name returns the cached display name for a channel, or ok=false
	// when the channel is unknown.
	Name(ctx context.Context, channelID int64) (name string, ok bool, err error)

	// Record stores or refreshes a channel's display name.
	Record(ctx context.Context, channelID int64, name, guildID string) error

	Close() error
}
