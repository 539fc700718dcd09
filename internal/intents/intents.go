// Package intents loads intent definition packs from disk. Packs are
// JSON or YAML lists of the same records the config file carries, so a
// pack authored for the reference assistant format drops in unchanged.
package intents

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heyvox/vox/internal/config"
	"github.com/heyvox/vox/internal/nlp"
	"gopkg.in/yaml.v3"
)

// Load reads a pack file and returns resolver definitions in file order.
// The format is picked by extension: .json, .yaml, or .yml.
func Load(path string) ([]nlp.Definition, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read intent pack: %w", err)
	}

	var records []config.IntentDefinition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(payload, &records); err != nil {
			return nil, fmt.Errorf("could not parse JSON intent pack %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(payload, &records); err != nil {
			return nil, fmt.Errorf("could not parse YAML intent pack %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported intent pack format %q (want .json, .yaml, or .yml)", filepath.Ext(path))
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("intent pack %s contains no definitions", path)
	}

	defs := make([]nlp.Definition, 0, len(records))
	for i, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			return nil, fmt.Errorf("intent pack %s: definition %d is missing intent_name", path, i)
		}
		if strings.TrimSpace(record.Pattern) == "" {
			return nil, fmt.Errorf("intent pack %s: intent %q is missing regex_pattern", path, record.Name)
		}
		defs = append(defs, nlp.Definition{
			Name:       record.Name,
			Pattern:    record.Pattern,
			EntityKeys: record.EntityKeys,
			Keywords:   record.Keywords,
		})
	}
	return defs, nil
}
