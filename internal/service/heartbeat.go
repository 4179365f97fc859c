package service

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/repo"
)

// Heartbeat appends a periodic liveness entry to the bot log so the
// audit trail shows the bridge was up even through quiet stretches.
type Heartbeat struct {
	cron   *cron.Cron
	audit  repo.AuditRepo
	bridge *BridgeService
}

// NewHeartbeat creates a heartbeat runner.
func NewHeartbeat(audit repo.AuditRepo, bridge *BridgeService) *Heartbeat {
	return &Heartbeat{
		cron:   cron.New(),
		audit:  audit,
		bridge: bridge,
	}
}

// Start schedules the heartbeat every minute.
func (h *Heartbeat) Start() error {
	if _, err := h.cron.AddFunc("@every 1m", h.beat); err != nil {
		return fmt.Errorf("failed to schedule heartbeat: %w", err)
	}
	h.cron.Start()
	fmt.Println("[Heartbeat] Started, interval 1m")
	return nil
}

// Stop stops the scheduler. Running jobs finish.
func (h *Heartbeat) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
	fmt.Println("[Heartbeat] Stopped")
}

func (h *Heartbeat) beat() {
	_ = h.audit.Append(domain.LogBot, domain.Entry{
		"event":              "heartbeat",
		"bot_name":           h.bridge.BotName(),
		"status":             "listening",
		"channels_monitored": h.bridge.ChannelsMonitored(),
	})
}
