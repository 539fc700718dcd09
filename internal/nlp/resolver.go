// Package nlp turns a single line of free-form text into a structured
// command: an intent name plus named parameters, or no match at all.
//
// Resolution is priority ordered and first-match-wins. Each definition is
// checked structurally (anchored regex) and, when it carries keywords,
// confirmed by token-set similarity between the whole utterance and its
// exemplar phrases. A failed confirmation moves on to the next definition
// rather than aborting, so a later, more specific intent still gets a
// chance.
package nlp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/heyvox/vox/internal/fuzzy"
)

// IntentUnknown is the reserved name callers may use to report that no
// definition matched. The resolver itself signals this with ok == false
// and never assigns the name to a definition.
const IntentUnknown = "unknown"

// Command is the structured result of a successful resolution.
type Command struct {
	Intent string            `json:"intent"`
	Params map[string]string `json:"params"`
}

// Suggestion pairs an intent with its closest exemplar phrase, used to
// hint at near misses when resolution fails.
type Suggestion struct {
	Intent string `json:"intent"`
	Phrase string `json:"phrase"`
	Score  int    `json:"score"`
}

// Resolver holds compiled intent definitions. It is immutable after New
// and safe for concurrent use; swapping definitions means building a new
// Resolver, never editing a live one.
type Resolver struct {
	defs      []compiledDefinition
	threshold int
}

// New validates and compiles cfg. Every pattern must compile and the
// threshold must be in [0,100]; a violation makes construction fail and
// no resolver is returned.
func New(cfg Config) (*Resolver, error) {
	if len(cfg.Definitions) == 0 {
		return nil, fmt.Errorf("intent definitions cannot be empty")
	}
	if cfg.KeywordThreshold < 0 || cfg.KeywordThreshold > 100 {
		return nil, fmt.Errorf("keyword threshold must be between 0 and 100, got %d", cfg.KeywordThreshold)
	}

	defs := make([]compiledDefinition, 0, len(cfg.Definitions))
	for _, def := range cfg.Definitions {
		compiled, err := compileDefinition(def)
		if err != nil {
			return nil, err
		}
		defs = append(defs, compiled)
	}
	return &Resolver{defs: defs, threshold: cfg.KeywordThreshold}, nil
}

// Threshold reports the configured keyword confirmation threshold.
func (r *Resolver) Threshold() int { return r.threshold }

// Resolve classifies one utterance. ok is false when the normalized text
// is empty or no definition passes both the structural and the keyword
// gate; that is a routine outcome, not an error.
func (r *Resolver) Resolve(text string) (Command, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return Command{}, false
	}

	for _, def := range r.defs {
		idx := def.re.FindStringSubmatchIndex(normalized)
		if idx == nil {
			continue
		}
		if len(def.keywords) > 0 && fuzzy.BestScore(normalized, def.keywords) < r.threshold {
			// Low keyword confidence discards this structural match only;
			// lower-priority definitions still get a chance.
			continue
		}
		return Command{
			Intent: def.Name,
			Params: extractParams(normalized, idx, def.EntityKeys),
		}, true
	}
	return Command{}, false
}

// Suggest ranks definitions by their best keyword similarity against the
// utterance, best first. Definitions without keywords are skipped since
// they have no exemplar phrase to offer.
func (r *Resolver) Suggest(text string, limit int) []Suggestion {
	normalized := Normalize(text)
	if normalized == "" || limit <= 0 {
		return nil
	}

	out := make([]Suggestion, 0, len(r.defs))
	for _, def := range r.defs {
		best := 0
		phrase := ""
		for _, keyword := range def.keywords {
			if score := fuzzy.TokenSetRatio(normalized, keyword); score > best || phrase == "" {
				best = score
				phrase = keyword
			}
		}
		if phrase == "" {
			continue
		}
		out = append(out, Suggestion{Intent: def.Name, Phrase: phrase, Score: best})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Intent < out[j].Intent
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// extractParams pairs participating capture groups positionally with
// entity keys, trimming each value. Groups that did not participate are
// dropped before pairing, so a pattern with optional groups can shift
// later values onto earlier keys; that quirk is part of the contract.
func extractParams(text string, idx []int, keys []string) map[string]string {
	params := map[string]string{}
	if len(keys) == 0 {
		return params
	}
	next := 0
	for group := 1; group*2+1 < len(idx) && next < len(keys); group++ {
		start, end := idx[group*2], idx[group*2+1]
		if start < 0 {
			continue
		}
		params[keys[next]] = strings.TrimSpace(text[start:end])
		next++
	}
	return params
}
