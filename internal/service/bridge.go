package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/repo"
	"github.com/rsdeals/discord-bridge/internal/biz/usecase"
)

// BridgeService orchestrates the relay path for every gateway message:
// mirror mapped channels through their webhooks, then run the
// filter-and-classify pipeline and route whatever survives.
type BridgeService struct {
	pipeline *usecase.PipelineUsecase
	forward  *usecase.ForwardUsecase
	audit    repo.AuditRepo
	names    *usecase.ResolverChain

	// source channel id -> destination webhook URL
	channelMap map[int64]string

	verbose bool

	mu      sync.Mutex
	botName string
}

// NewBridgeService creates a bridge service.
func NewBridgeService(
	pipeline *usecase.PipelineUsecase,
	forward *usecase.ForwardUsecase,
	audit repo.AuditRepo,
	names *usecase.ResolverChain,
	channelMap map[int64]string,
	verbose bool,
) *BridgeService {
	return &BridgeService{
		pipeline:   pipeline,
		forward:    forward,
		audit:      audit,
		names:      names,
		channelMap: channelMap,
		verbose:    verbose,
	}
}

// BotName returns the username reported by the last READY event.
func (s *BridgeService) BotName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.botName
}

// ChannelsMonitored returns the number of mapped source channels.
func (s *BridgeService) ChannelsMonitored() int {
	return len(s.channelMap)
}

// HandleReady records the connected identity and logs that the bridge
// is listening.
func (s *BridgeService) HandleReady(username string) {
	s.mu.Lock()
	s.botName = username
	s.mu.Unlock()

	fmt.Printf("[Bridge] Logged in as %s, monitoring %d channels\n", username, len(s.channelMap))

	_ = s.audit.Append(domain.LogBot, domain.Entry{
		"event":    "bot_ready",
		"bot_name": username,
	})
	_ = s.audit.Append(domain.LogBot, domain.Entry{
		"event":             "bridge_listening",
		"bot_name":          username,
		"channel_map_count": len(s.channelMap),
	})
}

// HandleMessage processes a single incoming message. Safe to call from
// the gateway read loop; webhook and API posts use short timeouts so
// one slow destination cannot wedge the relay for long.
func (s *BridgeService) HandleMessage(ctx context.Context, m *domain.Message) {
	if m == nil {
		return
	}

	sourceName := s.names.Resolve(ctx, m.ChannelID)

	if webhookURL, ok := s.channelMap[m.ChannelID]; ok {
		_ = s.audit.Append(domain.LogBot, domain.Entry{
			"event":               "message_detected",
			"message_id":          m.ID,
			"source_channel_id":   m.ChannelID,
			"source_channel_name": sourceName,
			"content":             domain.TruncateContent(domain.ContentOrPlaceholder(m.Content), 200),
		})
		res := s.forward.ForwardWebhook(ctx, m, webhookURL, sourceName)
		if s.verbose && res.Skipped {
			fmt.Printf("[Bridge] Skipped mirror of msg %s\n", m.ID)
		}
	}

	result := s.pipeline.Process(m)
	if result.Filtered {
		if s.verbose {
			fmt.Printf("[Bridge] Dropped msg %s (%s)\n", m.ID, result.Reason)
		}
		return
	}
	if result.Classification == nil {
		return
	}

	s.forward.ForwardClassified(ctx, m, result.Classification, sourceName)
}
