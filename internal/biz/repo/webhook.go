package repo

import (
	"context"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
)

// WebhookPayload is the JSON body posted to a destination webhook.
type WebhookPayload struct {
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Content   string         `json:"content"`
	Embeds    []WebhookEmbed `json:"embeds,omitempty"`
}

// WebhookEmbed is the wire form of an embed.
type WebhookEmbed struct {
	Title       string        `json:"title,omitempty"`
	URL         string        `json:"url,omitempty"`
	Description string        `json:"description,omitempty"`
	Image       *WebhookImage `json:"image,omitempty"`
}

// WebhookImage wraps an embed image URL.
type WebhookImage struct {
	URL string `json:"url"`
}

// WebhookResult reports the outcome of a webhook post. Status 204
// carries neither a message id nor a channel id.
type WebhookResult struct {
	Status    int
	MessageID string
	ChannelID int64
}

// WebhookRepo posts payloads to destination webhooks.
type WebhookRepo interface {
	// Post sends the payload. A non-2xx status is returned as an error.
	Post(ctx context.Context, webhookURL string, payload WebhookPayload) (*WebhookResult, error)

	// ChannelID resolves the webhook's destination channel from its
	// own metadata endpoint. Used when a 204 response left it unknown.
	ChannelID(ctx context.Context, webhookURL string) (int64, error)
}

// ToWebhookEmbeds converts normalized domain embeds to wire form.
func ToWebhookEmbeds(embeds []domain.Embed) []WebhookEmbed {
	out := make([]WebhookEmbed, 0, len(embeds))
	for _, e := range embeds {
		we := WebhookEmbed{
			Title:       e.Title,
			URL:         e.URL,
			Description: e.Description,
		}
		if e.ImageURL != "" {
			we.Image = &WebhookImage{URL: e.ImageURL}
		}
		out = append(out, we)
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}
