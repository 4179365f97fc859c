package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/rsdeals/discord-bridge/internal/biz/repo"
)

var webhookURLPattern = regexp.MustCompile(`/webhooks/(\d+)/([\w-]+)`)

// webhookRepo posts payloads to Discord webhooks over plain HTTP.
type webhookRepo struct {
	client     *http.Client
	infoClient *http.Client
	apiBase    string // overridden in tests
}

// NewWebhookRepo creates the webhook repository. Posts carry a 10s
// timeout; metadata lookups a 5s timeout.
func NewWebhookRepo() repo.WebhookRepo {
	return &webhookRepo{
		client:     &http.Client{Timeout: 10 * time.Second},
		infoClient: &http.Client{Timeout: 5 * time.Second},
		apiBase:    "https://discord.com/api/v9",
	}
}

// Post sends the payload. Discord returns 200 with the created message
// for ?wait-style hooks and 204 with no body otherwise; both are
// success. Any other status becomes an error carrying the code.
func (r *webhookRepo) Post(ctx context.Context, webhookURL string, payload repo.WebhookPayload) (*repo.WebhookResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return &repo.WebhookResult{Status: resp.StatusCode}, nil
	case http.StatusOK:
		result := &repo.WebhookResult{Status: resp.StatusCode}
		var created struct {
			ID        string `json:"id"`
			ChannelID string `json:"channel_id"`
		}
		if data, err := io.ReadAll(resp.Body); err == nil {
			if err := json.Unmarshal(data, &created); err == nil {
				result.MessageID = created.ID
				if cid, err := strconv.ParseInt(created.ChannelID, 10, 64); err == nil {
					result.ChannelID = cid
				}
			}
		}
		return result, nil
	default:
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
}

// ChannelID resolves the webhook's destination channel via its own
// metadata endpoint.
func (r *webhookRepo) ChannelID(ctx context.Context, webhookURL string) (int64, error) {
	match := webhookURLPattern.FindStringSubmatch(webhookURL)
	if match == nil {
		return 0, fmt.Errorf("not a webhook URL")
	}
	infoURL := fmt.Sprintf("%s/webhooks/%s/%s", r.apiBase, match[1], match[2])

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.infoClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var info struct {
		ChannelID string `json:"channel_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return 0, fmt.Errorf("failed to decode webhook info: %w", err)
	}
	cid, err := strconv.ParseInt(info.ChannelID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid channel id %q", info.ChannelID)
	}
	return cid, nil
}
