package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/heyvox/vox/internal/appdirs"
	"github.com/heyvox/vox/internal/nlp"
	"github.com/pelletier/go-toml/v2"
)

// IntentDefinition is the on-disk shape of one intent. Field names match
// the loadable pack format so the same record round-trips through TOML,
// JSON, and YAML.
type IntentDefinition struct {
	Name       string   `toml:"intent_name" json:"intent_name" yaml:"intent_name"`
	Pattern    string   `toml:"regex_pattern" json:"regex_pattern" yaml:"regex_pattern"`
	EntityKeys []string `toml:"entity_keys,omitempty" json:"entity_keys,omitempty" yaml:"entity_keys,omitempty"`
	Keywords   []string `toml:"keywords,omitempty" json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

type UIConfig struct {
	Backend string `toml:"backend" json:"backend"`
}

type HistoryConfig struct {
	Enabled    *bool `toml:"enabled,omitempty" json:"enabled,omitempty"`
	MaxEntries int   `toml:"max_entries,omitempty" json:"max_entries,omitempty"`
}

type Config struct {
	Version          int                `toml:"version" json:"version"`
	WakeWord         string             `toml:"wake_word" json:"wake_word"`
	KeywordThreshold int                `toml:"keyword_threshold" json:"keyword_threshold"`
	UI               UIConfig           `toml:"ui" json:"ui"`
	History          HistoryConfig      `toml:"history" json:"history"`
	Intents          []IntentDefinition `toml:"intents" json:"intents"`
}

const (
	defaultWakeWord   = "vox"
	defaultMaxEntries = 500
)

func Default() Config {
	return Config{
		Version:          1,
		WakeWord:         defaultWakeWord,
		KeywordThreshold: nlp.DefaultKeywordThreshold,
		UI:               UIConfig{Backend: "auto"},
		History:          HistoryConfig{Enabled: boolPtr(true), MaxEntries: defaultMaxEntries},
		Intents:          defaultIntentTable(defaultWakeWord),
	}
}

// defaultIntentTable renders the builtin intents with an optional leading
// wake word. Custom intent packs manage their own wake-word prefix.
func defaultIntentTable(wakeWord string) []IntentDefinition {
	prefix := ""
	if strings.TrimSpace(wakeWord) != "" {
		prefix = `(?:` + regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(wakeWord))) + `,?\s+)?`
	}
	return []IntentDefinition{
		{
			Name:       "openApp",
			Pattern:    `^` + prefix + `(?:please\s)?(?:open|launch|start)\s+([\w\s.-]+)`,
			EntityKeys: []string{"appName"},
			Keywords:   []string{"open app", "launch application", "start this app", "open"},
		},
		{
			Name:     "getTime",
			Pattern:  `^` + prefix + `(?:.*\b(?:time|what time|current time)\b.*)`,
			Keywords: []string{"what time is it", "what is the current time", "tell me the time"},
		},
		{
			Name:       "searchWeb",
			Pattern:    `^` + prefix + `(?:search for|search|find|look up)\s+(.+)`,
			EntityKeys: []string{"query"},
			Keywords:   []string{"search the web for", "find on internet", "look up online", "search", "find"},
		},
		{
			Name:     "checkWeather",
			Pattern:  `^` + prefix + `(?:.*\b(?:weather|forecast)\b.*)`,
			Keywords: []string{"how is the weather", "weather forecast today", "is it raining outside", "weather conditions"},
		},
		{
			Name:       "playMedia",
			Pattern:    `^` + prefix + `play\s+(.+?)(?:\s+on\s+(youtube|spotify))?$`,
			EntityKeys: []string{"mediaTitle", "mediaService"},
			Keywords:   []string{"play song", "play video", "play music", "play"},
		},
	}
}

func LoadOrCreate() (Config, string, error) {
	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return Config{}, "", err
	}

	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, err := appdirs.EnsureConfigDir(); err != nil {
			return Config{}, "", err
		}
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	} else if err != nil {
		return Config{}, "", fmt.Errorf("could not stat config path: %w", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, "", fmt.Errorf("could not read config file: %w", err)
	}
	if err := toml.Unmarshal(payload, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("could not parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, path, nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}
	if _, err := appdirs.EnsureConfigDir(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".vox-config-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() { _ = os.Remove(tempPath) }

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp config file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp config file permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace config file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure config file permissions: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if strings.TrimSpace(c.WakeWord) == "" {
		c.WakeWord = defaults.WakeWord
	}
	if c.KeywordThreshold <= 0 || c.KeywordThreshold > 100 {
		c.KeywordThreshold = defaults.KeywordThreshold
	}
	if strings.TrimSpace(c.UI.Backend) == "" {
		c.UI.Backend = defaults.UI.Backend
	}
	if c.History.Enabled == nil {
		c.History.Enabled = boolPtr(true)
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = defaults.History.MaxEntries
	}
	if len(c.Intents) == 0 {
		c.Intents = defaultIntentTable(c.WakeWord)
	}
}

// HistoryEnabled reports whether resolved utterances should be logged.
func (c Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// Definitions converts the configured intent records into resolver
// definitions, preserving order.
func (c Config) Definitions() []nlp.Definition {
	defs := make([]nlp.Definition, 0, len(c.Intents))
	for _, intent := range c.Intents {
		defs = append(defs, nlp.Definition{
			Name:       intent.Name,
			Pattern:    intent.Pattern,
			EntityKeys: intent.EntityKeys,
			Keywords:   intent.Keywords,
		})
	}
	return defs
}

// ResolverConfig bundles the configured definitions and threshold.
func (c Config) ResolverConfig() nlp.Config {
	return nlp.Config{Definitions: c.Definitions(), KeywordThreshold: c.KeywordThreshold}
}

// Set applies a dotted-key override. Changing the wake word regenerates
// the builtin intent table when the current table is still the default
// rendering for the old wake word.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "wake_word":
		if value == "" {
			return fmt.Errorf("wake_word cannot be empty")
		}
		wasDefaultTable := reflect.DeepEqual(c.Intents, defaultIntentTable(c.WakeWord))
		c.WakeWord = strings.ToLower(value)
		if wasDefaultTable {
			c.Intents = defaultIntentTable(c.WakeWord)
		}
		return nil
	case "keyword_threshold":
		threshold, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("keyword_threshold must be an integer: %w", err)
		}
		if threshold < 0 || threshold > 100 {
			return fmt.Errorf("keyword_threshold must be between 0 and 100, got %d", threshold)
		}
		c.KeywordThreshold = threshold
		return nil
	case "ui.backend":
		c.UI.Backend = strings.ToLower(value)
		return nil
	case "history.enabled":
		enabled, err := parseBool(value)
		if err != nil {
			return err
		}
		c.History.Enabled = boolPtr(enabled)
		return nil
	case "history.max_entries":
		max, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("history.max_entries must be an integer: %w", err)
		}
		if max <= 0 {
			return fmt.Errorf("history.max_entries must be positive, got %d", max)
		}
		c.History.MaxEntries = max
		return nil
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
}

func (c Config) Get(key string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "wake_word":
		return c.WakeWord, nil
	case "keyword_threshold":
		return strconv.Itoa(c.KeywordThreshold), nil
	case "ui.backend":
		return c.UI.Backend, nil
	case "history.enabled":
		return strconv.FormatBool(c.HistoryEnabled()), nil
	case "history.max_entries":
		return strconv.Itoa(c.History.MaxEntries), nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
}

func boolPtr(v bool) *bool { return &v }
