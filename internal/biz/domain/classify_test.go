package domain

import (
	"strings"
	"testing"
)

func testTargets() Targets {
	return Targets{Upcoming: 1, Amazon: 2, Mavely: 3, Default: 4}
}

func testStoreDomains() []string {
	return []string{`walmart\.com`, `target\.com`, `bestbuy\.com`}
}

func TestClassifier_AmazonLink(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	cls, ok := c.Classify(&Message{Content: "deal here https://www.amazon.com/dp/B09XYZ1234"})
	if !ok {
		t.Fatal("Expected a classification")
	}
	if cls.Tag != TagAmazon || cls.ChannelID != 2 {
		t.Errorf("Expected AMAZON -> 2, got %s -> %d", cls.Tag, cls.ChannelID)
	}
}

func TestClassifier_BareASIN(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	cls, ok := c.Classify(&Message{Content: "restock B0ABCD1234 soon?"})
	if !ok || cls.Tag != TagAmazon {
		t.Errorf("Expected AMAZON for bare ASIN, got ok=%v tag=%v", ok, cls)
	}
}

func TestClassifier_UpcomingBeatsAmazon(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	// Carries both a time indicator and an Amazon link; the
	// time-sensitive rule has priority.
	cls, ok := c.Classify(&Message{Content: "dropping in 10 minutes https://amzn.to/abc"})
	if !ok {
		t.Fatal("Expected a classification")
	}
	if cls.Tag != TagUpcoming || cls.ChannelID != 1 {
		t.Errorf("Expected UPCOMING -> 1, got %s -> %d", cls.Tag, cls.ChannelID)
	}
}

func TestClassifier_TimestampTag(t *testing.T) {
	c := NewClassifier(testTargets(), nil)

	cls, ok := c.Classify(&Message{Content: "live <t:1700000000:R>"})
	if !ok || cls.Tag != TagUpcoming {
		t.Errorf("Expected UPCOMING for timestamp tag, got ok=%v", ok)
	}
}

func TestClassifier_StoreDomainToMavely(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	cls, ok := c.Classify(&Message{Content: "price error https://www.walmart.com/ip/12345"})
	if !ok {
		t.Fatal("Expected a classification")
	}
	if cls.Tag != TagMavely || cls.ChannelID != 3 {
		t.Errorf("Expected MAVELY -> 3, got %s -> %d", cls.Tag, cls.ChannelID)
	}
}

func TestClassifier_GenericLinkToMavely(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	cls, ok := c.Classify(&Message{Content: "check https://example.com/deal"})
	if !ok || cls.Tag != TagMavely {
		t.Errorf("Expected MAVELY for generic link, got ok=%v", ok)
	}
}

func TestClassifier_PlainTextToDefault(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	cls, ok := c.Classify(&Message{Content: "anyone seen restocks lately"})
	if !ok || cls.Tag != TagDefault || cls.ChannelID != 4 {
		t.Errorf("Expected DEFAULT -> 4, got ok=%v cls=%v", ok, cls)
	}
}

func TestClassifier_UnconfiguredTargetFallsThrough(t *testing.T) {
	// No UPCOMING channel configured: a time-sensitive Amazon post
	// falls through to the AMAZON rule instead of vanishing.
	c := NewClassifier(Targets{Amazon: 2, Mavely: 3, Default: 4}, nil)

	cls, ok := c.Classify(&Message{Content: "drops today https://amazon.com/dp/B0AAAA0000"})
	if !ok || cls.Tag != TagAmazon {
		t.Errorf("Expected fall-through to AMAZON, got ok=%v", ok)
	}
}

func TestClassifier_NothingConfigured(t *testing.T) {
	c := NewClassifier(Targets{}, nil)

	if _, ok := c.Classify(&Message{Content: "hello"}); ok {
		t.Error("Expected no classification with no targets configured")
	}
}

func TestClassifier_EmbedTextParticipates(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	m := &Message{
		Content: "look at this",
		Embeds:  []Embed{{Title: "Deal", URL: "https://www.target.com/p/999"}},
	}
	cls, ok := c.Classify(m)
	if !ok || cls.Tag != TagMavely {
		t.Errorf("Expected MAVELY via embed URL, got ok=%v", ok)
	}
}

func TestClassifier_AttachmentOnlyToMavely(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	m := &Message{Attachments: []Attachment{{URL: "https://cdn.example.com/a.png"}}}
	cls, ok := c.Classify(m)
	if !ok || cls.Tag != TagMavely {
		t.Errorf("Expected MAVELY for attachment-only message, got ok=%v", ok)
	}
}

func TestClassifier_EmptyAttachmentURLNotALink(t *testing.T) {
	c := NewClassifier(testTargets(), testStoreDomains())

	m := &Message{
		Content:     "anyone around",
		Attachments: []Attachment{{URL: ""}},
	}
	cls, ok := c.Classify(m)
	if !ok || cls.Tag != TagDefault {
		t.Errorf("Expected DEFAULT for text with a blank attachment URL, got ok=%v cls=%v", ok, cls)
	}
}

func TestFormatEmbeds_CapsAtTen(t *testing.T) {
	embeds := make([]Embed, 12)
	for i := range embeds {
		embeds[i] = Embed{Title: "t", Provider: "should be dropped"}
	}

	out := FormatEmbeds(embeds)
	if len(out) != 10 {
		t.Errorf("Expected 10 embeds, got %d", len(out))
	}
	for _, e := range out {
		if e.Provider != "" {
			t.Error("Expected provider to be stripped")
		}
	}
}

func TestMessage_CombinedText(t *testing.T) {
	m := &Message{
		Content: "  body  ",
		Embeds: []Embed{
			{Title: "T1", Description: "D1", URL: "U1"},
			{Title: "T2"},
		},
	}

	got := m.CombinedText()
	if !strings.HasPrefix(got, "body") {
		t.Errorf("Expected trimmed content prefix, got %q", got)
	}
	for _, want := range []string{"T1", "D1", "U1", "T2"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected combined text to contain %q", want)
		}
	}
}
