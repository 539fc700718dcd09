package intents

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heyvox/vox/internal/nlp"
)

func writePack(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write pack file: %v", err)
	}
	return path
}

func TestLoadJSONPack(t *testing.T) {
	path := writePack(t, "intents.json", `[
		{
			"intent_name": "openApp",
			"regex_pattern": "^(?:jarvis\\s)?(?:open|launch)\\s+(.+)",
			"entity_keys": ["appName"],
			"keywords": ["open app", "launch application"]
		},
		{
			"intent_name": "getTime",
			"regex_pattern": "^.*\\btime\\b.*",
			"keywords": ["what time is it"]
		}
	]`)

	defs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "openApp" || defs[1].Name != "getTime" {
		t.Fatalf("file order not preserved: %q, %q", defs[0].Name, defs[1].Name)
	}
	if len(defs[0].EntityKeys) != 1 || defs[0].EntityKeys[0] != "appName" {
		t.Fatalf("entity keys not loaded: %v", defs[0].EntityKeys)
	}

	resolver, err := nlp.New(nlp.Config{Definitions: defs, KeywordThreshold: 75})
	if err != nil {
		t.Fatalf("loaded pack did not compile: %v", err)
	}
	got, ok := resolver.Resolve("jarvis open chrome")
	if !ok || got.Intent != "openApp" {
		t.Fatalf("expected openApp match, got %+v ok=%v", got, ok)
	}
}

func TestLoadYAMLPack(t *testing.T) {
	path := writePack(t, "intents.yaml", `
- intent_name: playMedia
  regex_pattern: '^play\s+(.+?)(?:\s+on\s+(youtube|spotify))?$'
  entity_keys: [mediaTitle, mediaService]
  keywords: [play song, play music]
- intent_name: checkWeather
  regex_pattern: '^.*\b(?:weather|forecast)\b.*'
  keywords: [weather forecast today]
`)

	defs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "playMedia" {
		t.Fatalf("expected playMedia first, got %q", defs[0].Name)
	}
	if len(defs[0].EntityKeys) != 2 {
		t.Fatalf("expected 2 entity keys, got %v", defs[0].EntityKeys)
	}
}

func TestLoadRejectsBadPacks(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{name: "empty list", file: "empty.json", content: `[]`, wantErr: "no definitions"},
		{name: "missing name", file: "noname.json", content: `[{"regex_pattern": "^x"}]`, wantErr: "missing intent_name"},
		{name: "missing pattern", file: "nopattern.json", content: `[{"intent_name": "x"}]`, wantErr: "missing regex_pattern"},
		{name: "bad json", file: "broken.json", content: `{not json`, wantErr: "could not parse"},
		{name: "bad yaml", file: "broken.yaml", content: "foo: [unclosed", wantErr: "could not parse"},
		{name: "unknown extension", file: "pack.toml", content: ``, wantErr: "unsupported intent pack format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writePack(t, tc.file, tc.content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected Load to fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatalf("expected missing file to fail")
	}
}
