package server

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
)

const defaultGatewayURL = "wss://gateway.discord.gg/?v=9&encoding=json"

// GUILDS | GUILD_MESSAGES | MESSAGE_CONTENT
const gatewayIntents = 1<<0 | 1<<9 | 1<<15

// gateway opcodes
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// MessageHandler receives every MESSAGE_CREATE event.
type MessageHandler func(*domain.Message)

// Gateway maintains the websocket connection to the chat platform and
// dispatches message events to a handler. Connection details stay
// inside this package; the rest of the bridge only sees
// domain.Message values, one at a time, in arrival order.
type Gateway struct {
	token     string
	url       string
	onMessage MessageHandler
	onReady   func(username string)

	mu     sync.Mutex
	conn   *websocket.Conn
	seq    int64
	stopCh chan struct{}

	// The websocket allows one writer at a time, and heartbeats are
	// sent both from the ticker goroutine and from the read loop when
	// the server requests one. All frame writes go through this lock.
	writeMu sync.Mutex
}

// NewGateway creates a gateway client.
func NewGateway(token string) *Gateway {
	return &Gateway{
		token:  token,
		url:    defaultGatewayURL,
		stopCh: make(chan struct{}),
	}
}

// OnMessage sets the message handler.
func (g *Gateway) OnMessage(handler MessageHandler) {
	g.onMessage = handler
}

// OnReady sets the ready handler, called once per (re)connection.
func (g *Gateway) OnReady(handler func(username string)) {
	g.onReady = handler
}

// Start runs the gateway connection, blocking until Stop. Socket
// errors reconnect after a short pause rather than surfacing: a relay
// that dies on every hiccup forwards nothing.
func (g *Gateway) Start() error {
	for {
		select {
		case <-g.stopCh:
			return nil
		default:
		}

		if err := g.run(); err != nil {
			select {
			case <-g.stopCh:
				return nil
			default:
			}
			fmt.Printf("[Gateway] Connection lost, retrying in 5s: %v\n", err)
			time.Sleep(5 * time.Second)
		}
	}
}

// Stop closes the connection and ends Start.
func (g *Gateway) Stop() {
	close(g.stopCh)
	g.mu.Lock()
	if g.conn != nil {
		g.conn.Close()
	}
	g.mu.Unlock()
}

type gatewayPayload struct {
	Op   int             `json:"op"`
	Type string          `json:"t,omitempty"`
	Seq  *int64          `json:"s,omitempty"`
	Data json.RawMessage `json:"d,omitempty"`
}

func (g *Gateway) run() error {
	conn, _, err := websocket.DefaultDialer.Dial(g.url, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	g.mu.Lock()
	g.conn = conn
	g.mu.Unlock()
	defer conn.Close()

	// First frame must be HELLO with the heartbeat interval.
	var hello gatewayPayload
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("failed to read hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected hello, got op %d", hello.Op)
	}
	var helloData struct {
		HeartbeatInterval int `json:"heartbeat_interval"`
	}
	if err := json.Unmarshal(hello.Data, &helloData); err != nil {
		return fmt.Errorf("failed to parse hello: %w", err)
	}

	if err := g.identify(conn); err != nil {
		return err
	}

	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)
	go g.heartbeatLoop(conn, time.Duration(helloData.HeartbeatInterval)*time.Millisecond, heartbeatDone)

	for {
		var payload gatewayPayload
		if err := conn.ReadJSON(&payload); err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		if payload.Seq != nil {
			g.mu.Lock()
			g.seq = *payload.Seq
			g.mu.Unlock()
		}

		switch payload.Op {
		case opDispatch:
			g.handleDispatch(payload.Type, payload.Data)
		case opHeartbeat:
			g.sendHeartbeat(conn)
		case opReconnect:
			return fmt.Errorf("server requested reconnect")
		case opInvalidSession:
			return fmt.Errorf("invalid session")
		case opHeartbeatACK:
			// nothing to do
		}
	}
}

func (g *Gateway) identify(conn *websocket.Conn) error {
	identify := gatewayPayload{Op: opIdentify}
	data, _ := json.Marshal(map[string]any{
		"token":   g.token,
		"intents": gatewayIntents,
		"properties": map[string]string{
			"os":      "linux",
			"browser": "discord-bridge",
			"device":  "discord-bridge",
		},
	})
	identify.Data = data
	if err := g.writeJSON(conn, identify); err != nil {
		return fmt.Errorf("identify failed: %w", err)
	}
	return nil
}

func (g *Gateway) writeJSON(conn *websocket.Conn, payload gatewayPayload) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	return conn.WriteJSON(payload)
}

func (g *Gateway) heartbeatLoop(conn *websocket.Conn, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.sendHeartbeat(conn)
		case <-done:
			return
		case <-g.stopCh:
			return
		}
	}
}

func (g *Gateway) sendHeartbeat(conn *websocket.Conn) {
	g.mu.Lock()
	seq := g.seq
	g.mu.Unlock()
	data, _ := json.Marshal(seq)
	_ = g.writeJSON(conn, gatewayPayload{Op: opHeartbeat, Data: data})
}

func (g *Gateway) handleDispatch(eventType string, data json.RawMessage) {
	switch eventType {
	case "READY":
		var ready struct {
			User struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		if err := json.Unmarshal(data, &ready); err == nil && g.onReady != nil {
			g.onReady(ready.User.Username)
		}
	case "MESSAGE_CREATE":
		msg, err := parseMessage(data)
		if err != nil {
			fmt.Printf("[Gateway] Failed to parse message: %v\n", err)
			return
		}
		if g.onMessage != nil {
			g.onMessage(msg)
		}
	}
}

// gatewayMessage mirrors the platform's MESSAGE_CREATE event shape.
type gatewayMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Content   string `json:"content"`
	WebhookID string `json:"webhook_id"`
	Author    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
		Bot      bool   `json:"bot"`
	} `json:"author"`
	Embeds []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Image       struct {
			URL string `json:"url"`
		} `json:"image"`
		Provider struct {
			Name string `json:"name"`
		} `json:"provider"`
	} `json:"embeds"`
	Attachments []struct {
		URL string `json:"url"`
	} `json:"attachments"`
	MessageReference *struct {
		MessageID string `json:"message_id"`
	} `json:"message_reference"`
}

func parseMessage(data json.RawMessage) (*domain.Message, error) {
	var raw gatewayMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	channelID, err := strconv.ParseInt(raw.ChannelID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid channel id %q", raw.ChannelID)
	}

	msg := &domain.Message{
		ID:        raw.ID,
		GuildID:   raw.GuildID,
		ChannelID: channelID,
		Author: domain.Author{
			ID:       raw.Author.ID,
			Username: raw.Author.Username,
			Avatar:   raw.Author.Avatar,
			Bot:      raw.Author.Bot,
		},
		WebhookID: raw.WebhookID,
		Content:   raw.Content,
		IsReply:   raw.MessageReference != nil,
	}
	for _, e := range raw.Embeds {
		msg.Embeds = append(msg.Embeds, domain.Embed{
			Title:       e.Title,
			URL:         e.URL,
			Description: e.Description,
			ImageURL:    e.Image.URL,
			Provider:    e.Provider.Name,
		})
	}
	for _, a := range raw.Attachments {
		msg.Attachments = append(msg.Attachments, domain.Attachment{URL: a.URL})
	}
	return msg, nil
}
