package service

import (
	"context"
	"fmt"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/usecase"
)

// MentionService watches destination-guild channels and fires a
// delayed @everyone broadcast when new content lands in one of them.
// The broadcast runs on its own goroutine so the visible delay never
// blocks message handling.
type MentionService struct {
	broadcast *usecase.BroadcastUsecase
	names     *usecase.ResolverChain

	destGuildID  string
	pingChannels map[int64]bool

	// The ping bot's own user id, resolved once at startup. Its own
	// @everyone lands back in the monitored channel as a bot message
	// and must never trigger another broadcast.
	selfID string

	// When set, only webhook-authored messages trigger a ping. Regular
	// user chatter in a ping channel is then ignored.
	webhookOnly bool
}

// NewMentionService creates a mention service.
func NewMentionService(
	broadcast *usecase.BroadcastUsecase,
	names *usecase.ResolverChain,
	destGuildID string,
	pingChannels []int64,
	selfID string,
	webhookOnly bool,
) *MentionService {
	channels := make(map[int64]bool, len(pingChannels))
	for _, id := range pingChannels {
		channels[id] = true
	}
	return &MentionService{
		broadcast:    broadcast,
		names:        names,
		destGuildID:  destGuildID,
		pingChannels: channels,
		selfID:       selfID,
		webhookOnly:  webhookOnly,
	}
}

// HandleMessage checks whether the message should trigger a ping.
func (s *MentionService) HandleMessage(ctx context.Context, m *domain.Message) {
	if m == nil || len(s.pingChannels) == 0 {
		return
	}
	if s.selfID != "" && m.Author.ID == s.selfID {
		return
	}
	if s.destGuildID != "" && m.GuildID != s.destGuildID {
		return
	}
	if !s.pingChannels[m.ChannelID] {
		return
	}
	if s.webhookOnly && !m.IsWebhook() {
		return
	}

	name := s.names.Resolve(ctx, m.ChannelID)
	if s.broadcast == nil {
		fmt.Printf("[Mention] No broadcast configured, ignoring trigger in #%s\n", name)
		return
	}
	go s.broadcast.Trigger(context.Background(), m.ChannelID, name)
}
