package domain

import "strings"

// Author identifies the sender of a message.
type Author struct {
	ID       string
	Username string
	Avatar   string // avatar hash, empty when the sender has none
	Bot      bool
}

// AvatarURL returns the CDN avatar URL, or empty when no avatar is set.
func (a Author) AvatarURL() string {
	if a.Avatar == "" {
		return ""
	}
	return "https://cdn.discordapp.com/avatars/" + a.ID + "/" + a.Avatar + ".png"
}

// Embed represents an embed attached to a message. The JSON tags are
// the audit-log field names; the gateway and webhook wire forms have
// their own types.
type Embed struct {
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Provider    string `json:"-"` // embed provider name, used only for filtering
}

// Attachment represents a file attached to a message.
type Attachment struct {
	URL string
}

// Message represents an inbound gateway message. It is immutable once
// received and lives only for the duration of one pipeline pass.
type Message struct {
	ID          string
	GuildID     string
	ChannelID   int64
	Author      Author
	WebhookID   string
	Content     string
	Embeds      []Embed
	Attachments []Attachment
	IsReply     bool
}

// IsWebhook reports whether the message originated from a webhook or bot.
func (m *Message) IsWebhook() bool {
	return m.WebhookID != "" || m.Author.Bot
}

// IsEmpty reports whether the message carries no text, embeds or attachments.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == "" && len(m.Embeds) == 0 && len(m.Attachments) == 0
}

// CombinedText returns the message content joined with all embed titles,
// descriptions and URLs, in embed order. Classification rules match
// against this combined text.
func (m *Message) CombinedText() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(m.Content))
	for _, e := range m.Embeds {
		b.WriteString(" ")
		b.WriteString(e.Title)
		b.WriteString(e.Description)
		b.WriteString(e.URL)
	}
	return b.String()
}

// EmbedText returns the concatenated embed text used for duplicate hashing.
func (m *Message) EmbedText() string {
	var b strings.Builder
	for _, e := range m.Embeds {
		b.WriteString(e.Title)
		b.WriteString(e.Description)
		b.WriteString(e.URL)
	}
	return b.String()
}
