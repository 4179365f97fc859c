package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/repo"
)

// Mock implementations

type mockWebhookRepo struct {
	posts     []repo.WebhookPayload
	postURLs  []string
	result    *repo.WebhookResult
	postErr   error
	channelID int64
	chanErr   error
}

func (m *mockWebhookRepo) Post(ctx context.Context, url string, payload repo.WebhookPayload) (*repo.WebhookResult, error) {
	m.posts = append(m.posts, payload)
	m.postURLs = append(m.postURLs, url)
	if m.postErr != nil {
		return nil, m.postErr
	}
	if m.result != nil {
		return m.result, nil
	}
	return &repo.WebhookResult{Status: 204}, nil
}

func (m *mockWebhookRepo) ChannelID(ctx context.Context, url string) (int64, error) {
	if m.chanErr != nil {
		return 0, m.chanErr
	}
	return m.channelID, nil
}

type mockChannelRepo struct {
	sent      []string
	sentTo    []int64
	messageID string
	sendErr   error
	names     map[int64]string
}

func (m *mockChannelRepo) SendMessage(ctx context.Context, channelID int64, content string, embeds []domain.Embed) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, content)
	m.sentTo = append(m.sentTo, channelID)
	return m.messageID, nil
}

func (m *mockChannelRepo) SendText(ctx context.Context, channelID int64, content string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, content)
	m.sentTo = append(m.sentTo, channelID)
	return nil
}

func (m *mockChannelRepo) ChannelName(ctx context.Context, channelID int64) (string, error) {
	if name, ok := m.names[channelID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown channel %d", channelID)
}

func (m *mockChannelRepo) CurrentUserID(ctx context.Context) (string, error) {
	return "self-user", nil
}

type mockAuditRepo struct {
	entries map[string][]domain.Entry
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{entries: make(map[string][]domain.Entry)}
}

func (m *mockAuditRepo) Append(logName string, entry domain.Entry) error {
	m.entries[logName] = append(m.entries[logName], entry)
	return nil
}

type mockDirectoryRepo struct {
	names    map[int64]string
	recorded map[int64]string
}

func newMockDirectoryRepo() *mockDirectoryRepo {
	return &mockDirectoryRepo{names: make(map[int64]string), recorded: make(map[int64]string)}
}

func (m *mockDirectoryRepo) Name(ctx context.Context, channelID int64) (string, bool, error) {
	name, ok := m.names[channelID]
	return name, ok, nil
}

func (m *mockDirectoryRepo) Record(ctx context.Context, channelID int64, name, guildID string) error {
	m.recorded[channelID] = name
	return nil
}

func (m *mockDirectoryRepo) Close() error { return nil }

func testMessage() *domain.Message {
	return &domain.Message{
		ID:        "msg-1",
		GuildID:   "guild-src",
		ChannelID: 100,
		Author:    domain.Author{ID: "u1", Username: "alice", Avatar: "abc"},
		Content:   "https://example.com/deal",
	}
}

func newTestForwarder(webhooks *mockWebhookRepo, channels *mockChannelRepo, audit *mockAuditRepo) *ForwardUsecase {
	names := NewNameResolvers(nil, channels)
	return NewForwardUsecase(webhooks, channels, audit, names, domain.NewWindow(30*time.Second), false)
}

func TestForwardWebhook_Success(t *testing.T) {
	webhooks := &mockWebhookRepo{result: &repo.WebhookResult{Status: 200, MessageID: "remote-1", ChannelID: 200}}
	channels := &mockChannelRepo{names: map[int64]string{200: "deals"}}
	audit := newMockAuditRepo()
	uc := newTestForwarder(webhooks, channels, audit)

	res := uc.ForwardWebhook(context.Background(), testMessage(), "https://example.com/webhooks/1/t", "source")
	if !res.Success {
		t.Fatalf("Expected success, got %+v", res)
	}
	if res.RemoteMessageID != "remote-1" || res.DestChannelID != 200 {
		t.Errorf("Unexpected result %+v", res)
	}
	if res.DestChannelName != "deals" {
		t.Errorf("Expected resolved name, got %q", res.DestChannelName)
	}
	if len(audit.entries[domain.LogD2D]) != 1 {
		t.Fatalf("Expected one d2d entry, got %d", len(audit.entries[domain.LogD2D]))
	}
	entry := audit.entries[domain.LogD2D][0]
	if entry["link_type"] != "D2D" || entry["event"] != "webhook_forward" {
		t.Errorf("Unexpected d2d entry %v", entry)
	}
}

func TestForwardWebhook_NoContentFallsBackToWebhookInfo(t *testing.T) {
	// A 204 response carries no channel id; the webhook's own metadata
	// endpoint supplies it.
	webhooks := &mockWebhookRepo{result: &repo.WebhookResult{Status: 204}, channelID: 300}
	channels := &mockChannelRepo{names: map[int64]string{300: "fallback"}}
	audit := newMockAuditRepo()
	uc := newTestForwarder(webhooks, channels, audit)

	res := uc.ForwardWebhook(context.Background(), testMessage(), "https://example.com/webhooks/1/t", "source")
	if !res.Success || res.DestChannelID != 300 || res.DestChannelName != "fallback" {
		t.Errorf("Expected metadata fallback, got %+v", res)
	}

	entry := audit.entries[domain.LogD2D][0]
	if entry["success"] != true || entry["error"] != nil {
		t.Errorf("Expected success=true error=nil, got %v", entry)
	}
	if entry["dest_channel_name"] != "fallback" {
		t.Errorf("Expected resolved destination name in entry, got %v", entry["dest_channel_name"])
	}
}

func TestForwardWebhook_DuplicateIDSkipped(t *testing.T) {
	webhooks := &mockWebhookRepo{result: &repo.WebhookResult{Status: 200, MessageID: "r", ChannelID: 200}}
	channels := &mockChannelRepo{names: map[int64]string{200: "deals"}}
	audit := newMockAuditRepo()
	uc := newTestForwarder(webhooks, channels, audit)

	m := testMessage()
	uc.ForwardWebhook(context.Background(), m, "url", "source")
	res := uc.ForwardWebhook(context.Background(), m, "url", "source")
	if !res.Skipped {
		t.Error("Expected replayed message id to be skipped")
	}
	if len(webhooks.posts) != 1 {
		t.Errorf("Expected a single post, got %d", len(webhooks.posts))
	}
}

func TestForwardWebhook_FailureLogged(t *testing.T) {
	webhooks := &mockWebhookRepo{postErr: fmt.Errorf("HTTP 404"), chanErr: fmt.Errorf("HTTP 404")}
	channels := &mockChannelRepo{}
	audit := newMockAuditRepo()
	uc := newTestForwarder(webhooks, channels, audit)

	res := uc.ForwardWebhook(context.Background(), testMessage(), "url", "source")
	if res.Success {
		t.Fatal("Expected failure")
	}
	if res.DestChannelName != "Unknown" {
		t.Errorf("Expected Unknown destination, got %q", res.DestChannelName)
	}
	entry := audit.entries[domain.LogD2D][0]
	if entry["link_type"] != "ERROR" || entry["event"] != "error" {
		t.Errorf("Expected error entry, got %v", entry)
	}
}

func TestForwardWebhook_AttachmentsFollowUp(t *testing.T) {
	webhooks := &mockWebhookRepo{result: &repo.WebhookResult{Status: 200, MessageID: "r", ChannelID: 200}}
	channels := &mockChannelRepo{names: map[int64]string{200: "deals"}}
	audit := newMockAuditRepo()
	uc := newTestForwarder(webhooks, channels, audit)

	m := testMessage()
	m.Attachments = []domain.Attachment{{URL: "https://cdn.example.com/a.png"}, {URL: ""}}
	uc.ForwardWebhook(context.Background(), m, "url", "source")

	if len(webhooks.posts) != 2 {
		t.Fatalf("Expected main post plus one follow-up, got %d", len(webhooks.posts))
	}
	if webhooks.posts[1].Content != "https://cdn.example.com/a.png" {
		t.Errorf("Expected URL-only follow-up, got %q", webhooks.posts[1].Content)
	}
}

func TestForwardClassified_Success(t *testing.T) {
	channels := &mockChannelRepo{messageID: "created-1", names: map[int64]string{500: "amazon-deals"}}
	audit := newMockAuditRepo()
	uc := newTestForwarder(&mockWebhookRepo{}, channels, audit)

	m := testMessage()
	cls := &domain.Classification{Tag: domain.TagAmazon, ChannelID: 500, Content: m.Content}
	res := uc.ForwardClassified(context.Background(), m, cls, "source")
	if !res.Success || res.RemoteMessageID != "created-1" {
		t.Fatalf("Expected success, got %+v", res)
	}

	entries := audit.entries[domain.LogFiltered]
	if len(entries) != 1 {
		t.Fatalf("Expected one filtered entry, got %d", len(entries))
	}
	if entries[0]["link_type"] != "AMAZON" || entries[0]["event"] != "filter_classify" {
		t.Errorf("Unexpected entry %v", entries[0])
	}
}

func TestForwardClassified_SelfLoopSkipped(t *testing.T) {
	channels := &mockChannelRepo{}
	audit := newMockAuditRepo()
	uc := newTestForwarder(&mockWebhookRepo{}, channels, audit)

	m := testMessage()
	cls := &domain.Classification{Tag: domain.TagMavely, ChannelID: m.ChannelID}
	res := uc.ForwardClassified(context.Background(), m, cls, "source")
	if !res.Skipped {
		t.Error("Expected self-loop to be skipped")
	}
	if len(channels.sent) != 0 {
		t.Error("Expected nothing sent")
	}
	if len(audit.entries[domain.LogFiltered]) != 0 {
		t.Error("Expected no audit entry for a skipped self-loop")
	}
}

func TestForwardClassified_FailureLogged(t *testing.T) {
	channels := &mockChannelRepo{sendErr: fmt.Errorf("HTTP 403")}
	audit := newMockAuditRepo()
	uc := newTestForwarder(&mockWebhookRepo{}, channels, audit)

	m := testMessage()
	cls := &domain.Classification{Tag: domain.TagDefault, ChannelID: 600, Content: "x"}
	res := uc.ForwardClassified(context.Background(), m, cls, "source")
	if res.Success {
		t.Fatal("Expected failure")
	}
	entry := audit.entries[domain.LogFiltered][0]
	if entry["link_type"] != "ERROR" || entry["tag"] != "DEFAULT" {
		t.Errorf("Expected error entry carrying tag, got %v", entry)
	}
}
