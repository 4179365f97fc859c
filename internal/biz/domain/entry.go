package domain

import (
	"fmt"
	"strings"
)

// Logical audit log names. Each is an independent append-only stream.
const (
	LogFiltered = "filtered" // classification-routed messages
	LogD2D      = "d2d"      // direct webhook forwards
	LogBot      = "bot"      // bot lifecycle and status events
)

// Entry is one audit log record: a flat field-value mapping written
// once and never mutated after being flushed.
type Entry map[string]any

// entry fields that identify a human and must not be persisted
var scrubbedFields = []string{"user"}

// Clone returns a shallow copy so the store can decorate an entry
// without mutating the caller's map.
func (e Entry) Clone() Entry {
	out := make(Entry, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Scrub removes human-identifying fields before persistence.
func (e Entry) Scrub() {
	for _, f := range scrubbedFields {
		delete(e, f)
	}
}

// Signature derives the stable string used to detect near-duplicate
// entries emitted by two collaborators logging the same logical event.
func (e Entry) Signature() string {
	summary := e.field("summary")
	if summary == "" {
		summary = e.field("content")
	}
	if runes := []rune(summary); len(runes) > 80 {
		summary = string(runes[:80])
	}
	return strings.Join([]string{
		e.field("message_id"),
		e.field("event"),
		e.field("link_type"),
		e.field("source_channel_id"),
		e.field("dest_channel_id"),
		summary,
	}, "|")
}

// SetPermalink derives the message permalink when both a message id and
// a destination channel id are present. The destination guild is
// preferred over the source guild.
func (e Entry) SetPermalink(sourceGuildID, destGuildID string) {
	msgID := e.field("message_id")
	destID := e.field("dest_channel_id")
	if msgID == "" || destID == "" || destID == "0" {
		return
	}
	guildID := destGuildID
	if guildID == "" {
		guildID = sourceGuildID
	}
	e["discord_link"] = fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, destID, msgID)
}

func (e Entry) field(key string) string {
	v, ok := e[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	// JSON round-trips turn numbers into float64; render them without
	// an exponent so signatures stay stable across reloads.
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}

// TruncateContent caps audit content at n runes, marking the cut.
// Cutting on a rune boundary keeps multi-byte text valid UTF-8.
func TruncateContent(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}

// ContentOrPlaceholder substitutes a marker for messages that carry
// only embeds or attachments.
func ContentOrPlaceholder(content string) string {
	if strings.TrimSpace(content) == "" {
		return "[embed/attachment]"
	}
	return content
}
