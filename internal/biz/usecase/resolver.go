package usecase

import (
	"context"
	"fmt"

	"github.com/rsdeals/discord-bridge/internal/biz/repo"
)

// NameResolver resolves a human-readable channel name. Resolvers are
// tried in order; the first success wins.
type NameResolver interface {
	Resolve(ctx context.Context, channelID int64) (string, bool)
}

// ResolverChain tries each resolver in sequence. The chain built by
// NewNameResolvers ends with a placeholder resolver, so Resolve always
// yields a usable name and never an error.
type ResolverChain struct {
	resolvers []NameResolver
}

// NewNameResolvers builds the standard chain: persisted directory
// cache, then the platform API (recording hits back into the
// directory), then a synthesized placeholder.
func NewNameResolvers(directory repo.DirectoryRepo, channels repo.ChannelRepo) *ResolverChain {
	chain := &ResolverChain{}
	if directory != nil {
		chain.resolvers = append(chain.resolvers, &directoryResolver{directory: directory})
	}
	if channels != nil {
		chain.resolvers = append(chain.resolvers, &apiResolver{channels: channels, directory: directory})
	}
	chain.resolvers = append(chain.resolvers, placeholderResolver{})
	return chain
}

// Resolve returns the first name a resolver produces.
func (c *ResolverChain) Resolve(ctx context.Context, channelID int64) string {
	for _, r := range c.resolvers {
		if name, ok := r.Resolve(ctx, channelID); ok {
			return name
		}
	}
	return fmt.Sprintf("Channel %d", channelID)
}

type directoryResolver struct {
	directory repo.DirectoryRepo
}

func (r *directoryResolver) Resolve(ctx context.Context, channelID int64) (string, bool) {
	name, ok, err := r.directory.Name(ctx, channelID)
	if err != nil || !ok || name == "" {
		return "", false
	}
	return name, true
}

type apiResolver struct {
	channels  repo.ChannelRepo
	directory repo.DirectoryRepo
}

func (r *apiResolver) Resolve(ctx context.Context, channelID int64) (string, bool) {
	name, err := r.channels.ChannelName(ctx, channelID)
	if err != nil || name == "" {
		return "", false
	}
	if r.directory != nil {
		_ = r.directory.Record(ctx, channelID, name, "")
	}
	return name, true
}

type placeholderResolver struct{}

func (placeholderResolver) Resolve(_ context.Context, channelID int64) (string, bool) {
	return fmt.Sprintf("Channel %d", channelID), true
}
