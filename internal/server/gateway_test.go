package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

func TestParseMessage(t *testing.T) {
	data := json.RawMessage(`{
		"id": "111",
		"channel_id": "222",
		"guild_id": "333",
		"content": "hello",
		"webhook_id": "444",
		"author": {"id": "555", "username": "alice", "avatar": "abc", "bot": true},
		"embeds": [{"title": "T", "url": "U", "description": "D",
			"image": {"url": "I"}, "provider": {"name": "P"}}],
		"attachments": [{"url": "A"}],
		"message_reference": {"message_id": "666"}
	}`)

	m, err := parseMessage(data)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if m.ID != "111" || m.ChannelID != 222 || m.GuildID != "333" {
		t.Errorf("Unexpected ids %+v", m)
	}
	if m.Author.Username != "alice" || !m.Author.Bot || m.Author.Avatar != "abc" {
		t.Errorf("Unexpected author %+v", m.Author)
	}
	if !m.IsWebhook() {
		t.Error("Expected webhook message")
	}
	if !m.IsReply {
		t.Error("Expected reply flag from message_reference")
	}
	if len(m.Embeds) != 1 || m.Embeds[0].Provider != "P" || m.Embeds[0].ImageURL != "I" {
		t.Errorf("Unexpected embeds %+v", m.Embeds)
	}
	if len(m.Attachments) != 1 || m.Attachments[0].URL != "A" {
		t.Errorf("Unexpected attachments %+v", m.Attachments)
	}
}

func TestParseMessage_PlainUserMessage(t *testing.T) {
	data := json.RawMessage(`{
		"id": "1", "channel_id": "2", "content": "hi",
		"author": {"id": "3", "username": "bob"}
	}`)

	m, err := parseMessage(data)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if m.IsReply || m.IsWebhook() {
		t.Errorf("Expected plain user message, got %+v", m)
	}
}

func TestParseMessage_BadChannelID(t *testing.T) {
	data := json.RawMessage(`{"id": "1", "channel_id": "nope", "author": {"id": "3"}}`)
	if _, err := parseMessage(data); err == nil {
		t.Error("Expected error for non-numeric channel id")
	}
}

func TestSendHeartbeat_ConcurrentWritesSerialized(t *testing.T) {
	// Heartbeats are sent from the ticker goroutine and, on an op 1
	// request, from the read loop at the same time. Unserialized
	// writes panic inside the websocket library and kill the process.
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	g := NewGateway("tok")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.sendHeartbeat(conn)
			}
		}()
	}
	wg.Wait()
}
