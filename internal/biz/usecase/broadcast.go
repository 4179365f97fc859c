package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/repo"
)

// BroadcastUsecase sends a delayed @everyone ping to a channel, gated
// by the per-channel cooldown so racing triggers produce exactly one
// broadcast. Callers run Trigger on its own goroutine: the visible
// delay must not block the gateway read loop.
type BroadcastUsecase struct {
	gate     *domain.CooldownGate
	channels repo.ChannelRepo
	audit    repo.AuditRepo

	delay    time.Duration
	cooldown time.Duration
}

// NewBroadcastUsecase creates a broadcast usecase.
func NewBroadcastUsecase(gate *domain.CooldownGate, channels repo.ChannelRepo, audit repo.AuditRepo, delay, cooldown time.Duration) *BroadcastUsecase {
	return &BroadcastUsecase{
		gate:     gate,
		channels: channels,
		audit:    audit,
		delay:    delay,
		cooldown: cooldown,
	}
}

// Trigger attempts a broadcast for the channel. Returns whether the
// ping was actually sent; a trigger dropped by the cooldown is silent.
func (uc *BroadcastUsecase) Trigger(ctx context.Context, channelID int64, channelName string) bool {
	return uc.gate.TryBroadcast(channelID, uc.delay, uc.cooldown, func() {
		if err := uc.channels.SendText(ctx, channelID, "@everyone"); err != nil {
			fmt.Printf("[Broadcast] Failed to ping #%s: %v\n", channelName, err)
			_ = uc.audit.Append(domain.LogBot, domain.Entry{
				"event":             "error",
				"error_type":        "mention_ping",
				"dest_channel_id":   channelID,
				"dest_channel_name": channelName,
				"error_message":     err.Error(),
			})
			return
		}
		fmt.Printf("[Broadcast] Sent @everyone in #%s\n", channelName)
		_ = uc.audit.Append(domain.LogBot, domain.Entry{
			"event":             "mention_ping",
			"dest_channel_id":   channelID,
			"dest_channel_name": channelName,
		})
	})
}
