package domain

import (
	"regexp"
	"strings"
	"time"
)

// FilterReason says why a message was dropped before classification.
// Distinguishing the reason keeps "dropped for X" separate from
// "crashed" in both code and the audit log.
type FilterReason string

const (
	FilterDeniedAuthor   FilterReason = "denied_author"
	FilterEmpty          FilterReason = "empty"
	FilterMentionOnly    FilterReason = "mention_only"
	FilterReply          FilterReason = "reply"
	FilterDeniedProvider FilterReason = "denied_provider"
	FilterDuplicate      FilterReason = "duplicate"
)

var mentionOnlyPattern = regexp.MustCompile(`^(<@[!&]?\d+>|@everyone|@here)+$`)

// Filter rejects messages that must never be re-routed: known vendor
// bots, empty posts, mention-only pings, replies, denied embed
// providers, and duplicates within the classification window.
type Filter struct {
	deniedAuthors   []string
	deniedProviders []string
	recent          *Window
}

// NewFilter creates a filter. Prefix lists are matched case-insensitively
// against the author display name and embed provider names.
func NewFilter(deniedAuthors, deniedProviders []string, window time.Duration) *Filter {
	lower := func(in []string) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = strings.ToLower(s)
		}
		return out
	}
	return &Filter{
		deniedAuthors:   lower(deniedAuthors),
		deniedProviders: lower(deniedProviders),
		recent:          NewWindow(window),
	}
}

// Check reports whether the message should be filtered out, and why.
func (f *Filter) Check(m *Message) (FilterReason, bool) {
	name := strings.ToLower(m.Author.Username)
	for _, prefix := range f.deniedAuthors {
		if strings.HasPrefix(name, prefix) {
			return FilterDeniedAuthor, true
		}
	}

	if m.IsEmpty() {
		return FilterEmpty, true
	}

	content := strings.TrimSpace(m.Content)
	if content != "" && mentionOnlyPattern.MatchString(content) {
		return FilterMentionOnly, true
	}

	if m.IsReply {
		return FilterReply, true
	}

	for _, e := range m.Embeds {
		provider := strings.ToLower(e.Provider)
		if provider == "" {
			continue
		}
		for _, prefix := range f.deniedProviders {
			if strings.HasPrefix(provider, prefix) {
				return FilterDeniedProvider, true
			}
		}
	}

	key := DedupeKey(m.Author.ID, content, m.EmbedText())
	if f.recent.Seen(key) {
		return FilterDuplicate, true
	}

	return "", false
}
