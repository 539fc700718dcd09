package nlp

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultKeywordThreshold is the minimum keyword similarity score used
// when a config does not set one.
const DefaultKeywordThreshold = 75

// Definition describes one recognizable intent. All fields are fixed at
// construction; a Resolver never mutates them.
type Definition struct {
	// Name uniquely identifies the intent in resolver output.
	Name string

	// Pattern is a regular expression over normalized text. It is compiled
	// case-insensitively and anchored at the start of the input; a match
	// does not have to consume the whole utterance.
	Pattern string

	// EntityKeys names the parameters captured by the pattern's groups,
	// paired positionally. Surplus groups are discarded; surplus keys
	// receive no value.
	EntityKeys []string

	// Keywords are exemplar phrases for similarity confirmation. When
	// empty, a structural match alone wins.
	Keywords []string
}

// Config is the full resolver configuration. Definition order is match
// priority: the first definition that passes both gates wins.
type Config struct {
	Definitions      []Definition
	KeywordThreshold int
}

type compiledDefinition struct {
	Definition
	re       *regexp.Regexp
	keywords []string
}

func compileDefinition(def Definition) (compiledDefinition, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return compiledDefinition{}, fmt.Errorf("intent definition is missing a name")
	}
	if strings.TrimSpace(def.Pattern) == "" {
		return compiledDefinition{}, fmt.Errorf("intent %q is missing a pattern", name)
	}

	// \A pins the match to the start of the utterance; the non-capturing
	// wrapper keeps group numbering identical to the authored pattern.
	re, err := regexp.Compile(`(?i)\A(?:` + def.Pattern + `)`)
	if err != nil {
		return compiledDefinition{}, fmt.Errorf("intent %q has an invalid pattern: %w", name, err)
	}

	keywords := make([]string, 0, len(def.Keywords))
	for _, keyword := range def.Keywords {
		normalized := Normalize(keyword)
		if normalized == "" {
			continue
		}
		keywords = append(keywords, normalized)
	}

	compiled := compiledDefinition{Definition: def, re: re, keywords: keywords}
	compiled.Name = name
	return compiled, nil
}
