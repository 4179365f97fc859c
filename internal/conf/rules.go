package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RulesConfig contains the routing rule lists loaded from YAML.
// Every field has a compiled-in default so the bridge runs without a
// rules file at all.
type RulesConfig struct {
	DeniedAuthorPrefixes   []string     `yaml:"denied_author_prefixes"`
	DeniedProviderPrefixes []string     `yaml:"denied_provider_prefixes"`
	StoreDomains           []string     `yaml:"store_domains"`
	Dedupe                 DedupeConfig `yaml:"dedupe"`
}

// DedupeConfig contains the duplicate-suppression windows.
type DedupeConfig struct {
	MessageWindowSeconds int `yaml:"message_window_seconds"` // classification layer
	ForwardWindowSeconds int `yaml:"forward_window_seconds"` // transport replay layer
}

// LoadRulesConfig loads the rules from a YAML file. With an empty path
// a handful of conventional locations are tried; when none exists the
// defaults are returned.
func LoadRulesConfig(configPath string) (*RulesConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/rules.yaml",
			"./configs/rules.yaml",
			"/etc/discord-bridge/rules.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "rules.yaml"))
		}
	}

	var data []byte
	var loadedPath string

	for _, p := range paths {
		if p == "" {
			continue
		}
		if d, err := os.ReadFile(p); err == nil {
			data = d
			loadedPath = p
			break
		}
	}

	if data == nil {
		fmt.Println("[Config] No rules.yaml found, using defaults")
		return DefaultRulesConfig(), nil
	}

	fmt.Printf("[Config] Loading rules from: %s\n", loadedPath)

	var config RulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse rules.yaml: %w", err)
	}

	config.fillDefaults()
	return &config, nil
}

// DefaultRulesConfig returns the compiled-in rules.
func DefaultRulesConfig() *RulesConfig {
	config := &RulesConfig{}
	config.fillDefaults()
	return config
}

func (c *RulesConfig) fillDefaults() {
	if len(c.DeniedAuthorPrefixes) == 0 {
		c.DeniedAuthorPrefixes = []string{
			"rs pinger",
			"flipflip",
			"flipfluence",
			"divine",
			"smart forwarder",
		}
	}
	if len(c.DeniedProviderPrefixes) == 0 {
		c.DeniedProviderPrefixes = []string{
			"discord",
			"paypal",
			"flipflip",
			"flipfluence",
			"divine",
			"twitter",
			"instagram",
		}
	}
	if len(c.StoreDomains) == 0 {
		c.StoreDomains = defaultStoreDomains()
	}
	if c.Dedupe.MessageWindowSeconds <= 0 {
		c.Dedupe.MessageWindowSeconds = 10
	}
	if c.Dedupe.ForwardWindowSeconds <= 0 {
		c.Dedupe.ForwardWindowSeconds = 30
	}
}

// defaultStoreDomains lists regex fragments for storefront domains
// explicitly routed to MAVELY. Amazon is handled separately by the
// classifier's own pattern.
func defaultStoreDomains() []string {
	return []string{
		// General retailers
		`walmart\.com`, `target\.com`, `bestbuy\.com`,
		`lowes\.com`, `homedepot\.com`, `costco\.com`, `samsclub\.com`, `wayfair\.com`,
		// Footwear and apparel
		`nike\.com`, `adidas\.com`, `footlocker\.com`, `finishline\.com`, `jdports?\.com`,
		`snkrs?\.com`, `stockx\.com`, `goat\.com`, `hibbett\.com`, `eastbay\.com`,
		`newbalance\.com`, `reebok\.com`, `puma\.com`,
		// Fashion and beauty
		`macy[s]?\.com`, `nordstrom\.com`, `sephora\.com`, `ulta\.com`,
		// Deal shorteners often used by stores
		`bit\.ly`, `linktr\.ee`, `l\.instagram\.com`, `shop-links?\.co`,
	}
}
