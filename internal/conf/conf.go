package conf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
)

// Config represents application configuration.
type Config struct {
	// Gateway token for the relay listener
	Token string

	// Bot token for the mention/broadcast bot (sent with "Bot " prefix)
	MentionToken string

	// Guild ids: where messages originate and where they land
	SourceGuildID string
	DestGuildID   string

	// Source channel -> destination webhook mapping
	ChannelMapPath string
	ChannelMap     map[int64]string

	// Classifier destination channels; zero means unconfigured
	Targets domain.Targets

	// Mention bot settings
	VisibleDelaySeconds int
	CooldownSeconds     int
	PingChannels        []int64
	PingWebhookOnly     bool

	// Paths
	LogDir          string
	DirectoryDBPath string
	RulesPath       string
	LockFilePath    string

	Verbose bool

	// Routing rules (loaded from YAML)
	Rules *RulesConfig
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	channelMapPath := os.Getenv("CHANNEL_MAP_PATH")
	if channelMapPath == "" {
		channelMapPath = "config/channel_map.json"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	directoryDBPath := os.Getenv("DIRECTORY_DB_PATH")
	if directoryDBPath == "" {
		directoryDBPath = "data/directory.db"
	}

	lockFilePath := os.Getenv("LOCK_FILE_PATH")
	if lockFilePath == "" {
		lockFilePath = ".bridge.lock"
	}

	rules, err := LoadRulesConfig(os.Getenv("RULES_CONFIG_PATH"))
	if err != nil {
		fmt.Printf("[Config] Invalid rules config, using defaults: %v\n", err)
		rules = DefaultRulesConfig()
	}

	return &Config{
		Token:         strings.TrimSpace(os.Getenv("DISCORD_TOKEN")),
		MentionToken:  strings.TrimSpace(os.Getenv("MENTION_BOT_TOKEN")),
		SourceGuildID: strings.TrimSpace(os.Getenv("SOURCE_GUILD_ID")),
		DestGuildID:   strings.TrimSpace(os.Getenv("DESTINATION_GUILD_ID")),

		ChannelMapPath: channelMapPath,
		ChannelMap:     LoadChannelMap(channelMapPath),

		Targets: domain.Targets{
			Upcoming: envChannelID("SMART_UPCOMING_CHANNEL_ID"),
			Amazon:   envChannelID("SMART_AMAZON_CHANNEL_ID"),
			Mavely:   envChannelID("SMART_MAVELY_CHANNEL_ID"),
			Default:  envChannelID("SMART_DEFAULT_CHANNEL_ID"),
		},

		VisibleDelaySeconds: envInt("VISIBLE_DELAY", 5),
		CooldownSeconds:     envInt("COOLDOWN_SECONDS", 10),
		PingChannels:        envChannelList("PING_CHANNELS"),
		PingWebhookOnly:     envBool("PING_WEBHOOK_ONLY", false),

		LogDir:          logDir,
		DirectoryDBPath: directoryDBPath,
		RulesPath:       os.Getenv("RULES_CONFIG_PATH"),
		LockFilePath:    lockFilePath,

		Verbose: envBool("VERBOSE", true),
		Rules:   rules,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Token == "" {
		return &ConfigError{Field: "DISCORD_TOKEN", Message: "required"}
	}
	return nil
}

// MessageWindow returns the classification-layer dedupe window.
func (c *Config) MessageWindow() time.Duration {
	return time.Duration(c.Rules.Dedupe.MessageWindowSeconds) * time.Second
}

// ForwardWindow returns the transport-replay dedupe window.
func (c *Config) ForwardWindow() time.Duration {
	return time.Duration(c.Rules.Dedupe.ForwardWindowSeconds) * time.Second
}

// VisibleDelay returns the pause between a trigger and its broadcast.
func (c *Config) VisibleDelay() time.Duration {
	return time.Duration(c.VisibleDelaySeconds) * time.Second
}

// Cooldown returns the minimum spacing between broadcasts per channel.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// LoadChannelMap reads the source-channel to webhook mapping. Keys are
// normalized to integers; non-numeric keys are skipped and a missing
// or malformed file degrades to an empty map rather than aborting.
func LoadChannelMap(path string) map[int64]string {
	result := make(map[int64]string)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}
	// Tolerate a byte-order mark from Windows editors.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		fmt.Printf("[Config] Malformed channel map %s, using empty map: %v\n", path, err)
		return result
	}

	for key, value := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			continue
		}
		result[id] = value
	}
	return result
}

func envChannelID(name string) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(name)), 10, 64)
	if err != nil || value <= 0 {
		return 0
	}
	return value
}

func envInt(name string, fallback int) int {
	if val := os.Getenv(name); val != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if val == "" {
		return fallback
	}
	switch val {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// envChannelList parses a comma- or newline-separated channel id list;
// malformed entries are ignored.
func envChannelList(name string) []int64 {
	raw := strings.ReplaceAll(os.Getenv(name), "\n", ",")
	var out []int64
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if id, err := strconv.ParseInt(piece, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
