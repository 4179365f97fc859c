package usecase

import (
	"context"
	"fmt"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/repo"
)

// ForwardResult reports the outcome of one forward attempt.
type ForwardResult struct {
	Success         bool
	Skipped         bool // duplicate or self-loop, not a failure
	RemoteMessageID string
	DestChannelID   int64
	DestChannelName string
	Err             string
}

// ForwardUsecase delivers messages to their destinations and records
// every attempt in the audit trail. Failures are captured in the log
// entry, never propagated as pipeline errors; there is no automatic
// retry, that belongs to a surrounding supervisor if anywhere.
type ForwardUsecase struct {
	webhooks repo.WebhookRepo
	channels repo.ChannelRepo
	audit    repo.AuditRepo
	names    *ResolverChain

	// Guards against duplicate posts caused by reconnect or replay at
	// the transport layer. Keyed by raw message id, independent of the
	// classification-layer content window.
	recentIDs *domain.Window

	verbose bool
}

// NewForwardUsecase creates a forwarder.
func NewForwardUsecase(
	webhooks repo.WebhookRepo,
	channels repo.ChannelRepo,
	audit repo.AuditRepo,
	names *ResolverChain,
	forwardWindow *domain.Window,
	verbose bool,
) *ForwardUsecase {
	return &ForwardUsecase{
		webhooks:  webhooks,
		channels:  channels,
		audit:     audit,
		names:     names,
		recentIDs: forwardWindow,
		verbose:   verbose,
	}
}

// ForwardWebhook mirrors a message from a mapped source channel to its
// destination webhook. Attachments are re-posted one by one as
// URL-only follow-ups; the platform auto-previews link bodies, which
// avoids re-uploading binary content.
func (uc *ForwardUsecase) ForwardWebhook(ctx context.Context, m *domain.Message, webhookURL, sourceName string) ForwardResult {
	if m.ID != "" && uc.recentIDs.Seen(m.ID) {
		if uc.verbose {
			fmt.Printf("[Forward] Duplicate message id %s within replay window, skipped\n", m.ID)
		}
		return ForwardResult{Skipped: true}
	}

	payload := repo.WebhookPayload{
		Username:  m.Author.Username,
		AvatarURL: m.Author.AvatarURL(),
		Content:   m.Content,
		Embeds:    repo.ToWebhookEmbeds(domain.FormatEmbeds(m.Embeds)),
	}

	result := ForwardResult{}
	whResult, err := uc.webhooks.Post(ctx, webhookURL, payload)
	if err != nil {
		result.Err = err.Error()
	} else {
		result.Success = true
		result.RemoteMessageID = whResult.MessageID
		result.DestChannelID = whResult.ChannelID
	}

	// A 204 leaves the destination unknown; fall back to the webhook's
	// own metadata endpoint.
	if result.DestChannelID == 0 {
		if cid, err := uc.webhooks.ChannelID(ctx, webhookURL); err == nil {
			result.DestChannelID = cid
		}
	}

	result.DestChannelName = "Unknown"
	if result.DestChannelID != 0 {
		result.DestChannelName = uc.names.Resolve(ctx, result.DestChannelID)
	}

	_ = uc.audit.Append(domain.LogBot, domain.Entry{
		"event":       "webhook_forward",
		"channel_id":  m.ChannelID,
		"webhook_url": domain.TruncateContent(webhookURL, 50),
		"success":     result.Success,
		"error":       nilIfEmpty(result.Err),
	})

	statusText := "successfully posted"
	if !result.Success {
		statusText = result.Err
		if statusText == "" {
			statusText = "failed"
		}
	}
	logMsgID := result.RemoteMessageID
	if logMsgID == "" {
		logMsgID = m.ID
	}
	summary := fmt.Sprintf("D2D - #%s (msg %s) detected - %s - webhook -> #%s",
		sourceName, logMsgID, statusText, result.DestChannelName)
	if uc.verbose {
		fmt.Println(summary)
	}

	linkType := "D2D"
	event := "webhook_forward"
	if !result.Success {
		linkType = "ERROR"
		event = "error"
	}
	_ = uc.audit.Append(domain.LogD2D, domain.Entry{
		"message_id":          logMsgID,
		"source_channel_id":   m.ChannelID,
		"source_channel_name": sourceName,
		"dest_channel_id":     result.DestChannelID,
		"dest_channel_name":   result.DestChannelName,
		"user":                m.Author.Username,
		"guild_id":            m.GuildID,
		"content":             domain.ContentOrPlaceholder(m.Content),
		"link_type":           linkType,
		"webhook_url":         webhookURL,
		"event":               event,
		"success":             result.Success,
		"summary":             summary,
		"error":               nilIfEmpty(result.Err),
	})

	for _, att := range m.Attachments {
		if att.URL == "" {
			continue
		}
		followUp := repo.WebhookPayload{
			Username:  m.Author.Username,
			AvatarURL: m.Author.AvatarURL(),
			Content:   att.URL,
		}
		if _, err := uc.webhooks.Post(ctx, webhookURL, followUp); err != nil {
			fmt.Printf("[Forward] Attachment failed: %v\n", err)
		} else if uc.verbose {
			fmt.Printf("[Forward] Attachment %s\n", att.URL)
		}
	}

	return result
}

// ForwardClassified delivers a classified message to its resolved
// destination channel through the bot API (not a webhook).
func (uc *ForwardUsecase) ForwardClassified(ctx context.Context, m *domain.Message, cls *domain.Classification, sourceName string) ForwardResult {
	// Self-loop guard: re-posting into the channel a message came from
	// would bounce forever. Skipping one is not a failure and needs no
	// audit entry.
	if cls.ChannelID == m.ChannelID {
		return ForwardResult{Skipped: true}
	}

	result := ForwardResult{
		DestChannelID:   cls.ChannelID,
		DestChannelName: uc.names.Resolve(ctx, cls.ChannelID),
	}

	msgID, err := uc.channels.SendMessage(ctx, cls.ChannelID, cls.Content, cls.Embeds)
	if err != nil {
		result.Err = err.Error()
	} else {
		result.Success = true
		result.RemoteMessageID = msgID
	}

	entry := domain.Entry{
		"message_id":          m.ID,
		"source_channel_id":   m.ChannelID,
		"source_channel_name": sourceName,
		"dest_channel_id":     cls.ChannelID,
		"dest_channel_name":   result.DestChannelName,
		"user":                m.Author.Username,
		"guild_id":            m.GuildID,
		"content":             domain.TruncateContent(domain.ContentOrPlaceholder(cls.Content), 200),
		"embeds":              cls.Embeds,
		"success":             result.Success,
	}
	if result.Success {
		entry["event"] = "filter_classify"
		entry["link_type"] = string(cls.Tag)
		entry["summary"] = fmt.Sprintf("FilteredLink-%s-#%d-successfully forwarded -> #%s",
			cls.Tag, m.ChannelID, result.DestChannelName)
	} else {
		entry["event"] = "error"
		entry["link_type"] = "ERROR"
		entry["tag"] = string(cls.Tag)
		entry["error"] = result.Err
		entry["summary"] = fmt.Sprintf("FilteredLink-%s-#%d-failed -> #%s",
			cls.Tag, m.ChannelID, result.DestChannelName)
	}
	if uc.verbose {
		fmt.Println(entry["summary"])
	}
	_ = uc.audit.Append(domain.LogFiltered, entry)

	return result
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
