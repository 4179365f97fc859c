package domain

import (
	"regexp"
	"strings"
)

// Tag is the destination category assigned by the classifier.
type Tag string

const (
	TagUpcoming Tag = "UPCOMING"
	TagAmazon   Tag = "AMAZON"
	TagMavely   Tag = "MAVELY"
	TagDefault  Tag = "DEFAULT"
)

// Targets holds the configured destination channel for each tag.
// A zero value means the destination is not configured and the
// corresponding rule falls through to the next one.
type Targets struct {
	Upcoming int64
	Amazon   int64
	Mavely   int64
	Default  int64
}

// ForTag returns the destination channel for a tag, 0 when unconfigured.
func (t Targets) ForTag(tag Tag) int64 {
	switch tag {
	case TagUpcoming:
		return t.Upcoming
	case TagAmazon:
		return t.Amazon
	case TagMavely:
		return t.Mavely
	case TagDefault:
		return t.Default
	}
	return 0
}

// Classification is the routing decision for a message that matched a rule.
type Classification struct {
	Tag         Tag
	ChannelID   int64
	Username    string
	AvatarURL   string
	Content     string
	Embeds      []Embed
	Attachments []Attachment
}

var (
	amazonPattern = regexp.MustCompile(`(?i)(https?://(?:www\.)?(amazon\.com|amzn\.to)/[^\s]+|\bB0[A-Z0-9]{8}\b)`)

	// Indicators of time-sensitive posts: Discord time tags, relative time
	// phrases, clock times, dates, month names, drop/release wording.
	timestampPattern = regexp.MustCompile(`(?i)(` +
		`<t:\d+:[a-zA-Z]>` +
		`|\bup\s*next\b` +
		`|\b(in|within)\s+\d+\s*(minutes?|mins?|hours?|hrs?|days?)\b` +
		`|\btoday\b` +
		`|\b\d{1,2}:\d{2}\s*(am|pm)\b` +
		`|drop(?:ping)?` +
		`|release` +
		`|tomorrow` +
		`|\b\d{1,2}/\d{1,2}\b` +
		`|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b` +
		`)`)
)

// Classifier assigns destination tags to messages. Rule order encodes
// business priority: time-sensitive posts must never be miscategorized
// as generic storefront links, so the first matching rule wins.
type Classifier struct {
	targets      Targets
	storePattern *regexp.Regexp
}

// NewClassifier creates a classifier routing to the given targets.
// storeDomains is a list of regex fragments for known storefront domains.
func NewClassifier(targets Targets, storeDomains []string) *Classifier {
	var storePattern *regexp.Regexp
	if len(storeDomains) > 0 {
		storePattern = regexp.MustCompile(`(?i)https?://[^\s]*(` + strings.Join(storeDomains, "|") + `)[^\s]*`)
	}
	return &Classifier{targets: targets, storePattern: storePattern}
}

// Classify determines which channel a message should be routed to.
// Returns false when no rule with a configured destination matched;
// that is a no-op routing outcome, not an error.
func (c *Classifier) Classify(m *Message) (*Classification, bool) {
	text := m.CombinedText()

	tag, channelID := c.selectTarget(text, m.Attachments)
	if channelID == 0 {
		return nil, false
	}

	return &Classification{
		Tag:         tag,
		ChannelID:   channelID,
		Username:    m.Author.Username,
		AvatarURL:   m.Author.AvatarURL(),
		Content:     strings.TrimSpace(m.Content),
		Embeds:      FormatEmbeds(m.Embeds),
		Attachments: m.Attachments,
	}, true
}

func (c *Classifier) selectTarget(text string, attachments []Attachment) (Tag, int64) {
	if timestampPattern.MatchString(text) && c.targets.Upcoming != 0 {
		return TagUpcoming, c.targets.Upcoming
	}
	if amazonPattern.MatchString(text) && c.targets.Amazon != 0 {
		return TagAmazon, c.targets.Amazon
	}

	attText := make([]string, 0, len(attachments))
	for _, a := range attachments {
		if a.URL != "" {
			attText = append(attText, a.URL)
		}
	}
	if c.storePattern != nil && c.targets.Mavely != 0 {
		if c.storePattern.MatchString(text + " " + strings.Join(attText, " ")) {
			return TagMavely, c.targets.Mavely
		}
	}

	// Deliberately permissive fallback: anything that carries a link at
	// all is still a MAVELY candidate.
	if c.targets.Mavely != 0 {
		if strings.Contains(text, "http") || len(attText) > 0 {
			return TagMavely, c.targets.Mavely
		}
	}

	if c.targets.Default != 0 {
		return TagDefault, c.targets.Default
	}
	return "", 0
}

// FormatEmbeds normalizes embeds for forwarding: only title, url,
// description and image survive, and at most ten embeds are kept.
func FormatEmbeds(embeds []Embed) []Embed {
	result := make([]Embed, 0, len(embeds))
	for _, e := range embeds {
		result = append(result, Embed{
			Title:       e.Title,
			URL:         e.URL,
			Description: e.Description,
			ImageURL:    e.ImageURL,
		})
	}
	if len(result) > 10 {
		result = result[:10]
	}
	return result
}
