package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/repo"
)

// channelRepo talks to the Discord REST API for channel sends and
// channel metadata lookups.
type channelRepo struct {
	token   string
	client  *http.Client
	apiBase string // overridden in tests
}

// NewChannelRepo creates the channel repository. The token is sent as
// the Authorization header verbatim, so callers choose the bot prefix.
func NewChannelRepo(token string) repo.ChannelRepo {
	return &channelRepo{
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiBase: "https://discord.com/api/v9",
	}
}

type restEmbed struct {
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url,omitempty"`
	Description string     `json:"description,omitempty"`
	Image       *restImage `json:"image,omitempty"`
}

type restImage struct {
	URL string `json:"url"`
}

// SendMessage posts content and embeds to a channel.
func (r *channelRepo) SendMessage(ctx context.Context, channelID int64, content string, embeds []domain.Embed) (string, error) {
	wireEmbeds := make([]restEmbed, 0, len(embeds))
	for _, e := range embeds {
		we := restEmbed{Title: e.Title, URL: e.URL, Description: e.Description}
		if e.ImageURL != "" {
			we.Image = &restImage{URL: e.ImageURL}
		}
		wireEmbeds = append(wireEmbeds, we)
	}
	if len(wireEmbeds) > 10 {
		wireEmbeds = wireEmbeds[:10]
	}

	payload := struct {
		Content string      `json:"content"`
		Embeds  []restEmbed `json:"embeds,omitempty"`
	}{Content: content, Embeds: wireEmbeds}

	var created struct {
		ID string `json:"id"`
	}
	if err := r.post(ctx, fmt.Sprintf("%s/channels/%d/messages", r.apiBase, channelID), payload, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// SendText posts a plain text message to a channel.
func (r *channelRepo) SendText(ctx context.Context, channelID int64, content string) error {
	payload := struct {
		Content string `json:"content"`
	}{Content: content}
	return r.post(ctx, fmt.Sprintf("%s/channels/%d/messages", r.apiBase, channelID), payload, nil)
}

// ChannelName looks up a channel's display name.
func (r *channelRepo) ChannelName(ctx context.Context, channelID int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/channels/%d", r.apiBase, channelID), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var channel struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&channel); err != nil {
		return "", fmt.Errorf("failed to decode channel: %w", err)
	}
	return channel.Name, nil
}

// CurrentUserID looks up the authenticated user's id.
func (r *channelRepo) CurrentUserID(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiBase+"/users/@me", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("failed to decode user: %w", err)
	}
	return user.ID, nil
}

func (r *channelRepo) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
