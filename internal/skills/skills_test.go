package skills

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/heyvox/vox/internal/nlp"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC)
}

func TestGetTimeFormatsClock(t *testing.T) {
	registry := NewRegistry(WithClock(fixedClock))

	message, handled, err := registry.Dispatch(nlp.Command{Intent: "getTime", Params: map[string]string{}})
	if err != nil {
		t.Fatalf("getTime failed: %v", err)
	}
	if !handled {
		t.Fatalf("expected getTime to be handled")
	}
	if message != "The current time is 3:04 PM." {
		t.Fatalf("unexpected time message: %q", message)
	}
}

func TestOpenAppKnownServicesLaunchBrowser(t *testing.T) {
	var opened []string
	registry := NewRegistry(WithOpener(func(target string) error {
		opened = append(opened, target)
		return nil
	}))

	message, handled, err := registry.Dispatch(nlp.Command{Intent: "openApp", Params: map[string]string{"appName": "YouTube"}})
	if err != nil || !handled {
		t.Fatalf("openApp failed: handled=%v err=%v", handled, err)
	}
	if len(opened) != 1 || opened[0] != "https://www.youtube.com" {
		t.Fatalf("unexpected opened targets: %v", opened)
	}
	if !strings.Contains(message, "Opening YouTube") {
		t.Fatalf("unexpected message: %q", message)
	}
}

func TestOpenAppUnknownAppDoesNotLaunch(t *testing.T) {
	var opened []string
	registry := NewRegistry(WithOpener(func(target string) error {
		opened = append(opened, target)
		return nil
	}))

	message, handled, err := registry.Dispatch(nlp.Command{Intent: "openApp", Params: map[string]string{"appName": "notepad"}})
	if err != nil || !handled {
		t.Fatalf("openApp failed: handled=%v err=%v", handled, err)
	}
	if len(opened) != 0 {
		t.Fatalf("expected no launch for unknown app, got %v", opened)
	}
	if !strings.Contains(message, "notepad") {
		t.Fatalf("expected message to name the app, got %q", message)
	}
}

func TestOpenAppMissingParam(t *testing.T) {
	registry := NewRegistry(WithOpener(func(string) error { return nil }))

	message, handled, err := registry.Dispatch(nlp.Command{Intent: "openApp", Params: map[string]string{}})
	if err != nil || !handled {
		t.Fatalf("openApp failed: handled=%v err=%v", handled, err)
	}
	if !strings.Contains(message, "No application name") {
		t.Fatalf("unexpected message: %q", message)
	}
}

func TestSearchWebEscapesQuery(t *testing.T) {
	var opened []string
	registry := NewRegistry(WithOpener(func(target string) error {
		opened = append(opened, target)
		return nil
	}))

	_, _, err := registry.Dispatch(nlp.Command{Intent: "searchWeb", Params: map[string]string{"query": "go & rust tutorials"}})
	if err != nil {
		t.Fatalf("searchWeb failed: %v", err)
	}
	if len(opened) != 1 {
		t.Fatalf("expected one launch, got %d", len(opened))
	}
	if !strings.Contains(opened[0], "go+%26+rust+tutorials") {
		t.Fatalf("query not escaped: %q", opened[0])
	}
}

func TestPlayMediaPicksService(t *testing.T) {
	cases := []struct {
		name       string
		params     map[string]string
		wantTarget string
		wantText   string
	}{
		{
			name:       "default youtube",
			params:     map[string]string{"mediaTitle": "despacito"},
			wantTarget: "youtube.com/results",
			wantText:   "YouTube",
		},
		{
			name:       "spotify requested",
			params:     map[string]string{"mediaTitle": "despacito", "mediaService": "spotify"},
			wantTarget: "open.spotify.com/search",
			wantText:   "Spotify",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var opened []string
			registry := NewRegistry(WithOpener(func(target string) error {
				opened = append(opened, target)
				return nil
			}))

			message, _, err := registry.Dispatch(nlp.Command{Intent: "playMedia", Params: tc.params})
			if err != nil {
				t.Fatalf("playMedia failed: %v", err)
			}
			if len(opened) != 1 || !strings.Contains(opened[0], tc.wantTarget) {
				t.Fatalf("unexpected target: %v", opened)
			}
			if !strings.Contains(message, tc.wantText) {
				t.Fatalf("expected message to mention %s, got %q", tc.wantText, message)
			}
		})
	}
}

func TestDispatchUnknownIntent(t *testing.T) {
	registry := NewRegistry()

	_, handled, err := registry.Dispatch(nlp.Command{Intent: "teleport", Params: map[string]string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handled {
		t.Fatalf("expected unknown intent to be unhandled")
	}
}

func TestDispatchSurfacesOpenerErrors(t *testing.T) {
	registry := NewRegistry(WithOpener(func(string) error {
		return fmt.Errorf("no display")
	}))

	_, handled, err := registry.Dispatch(nlp.Command{Intent: "searchWeb", Params: map[string]string{"query": "cats"}})
	if !handled {
		t.Fatalf("expected searchWeb to be handled")
	}
	if err == nil || !strings.Contains(err.Error(), "no display") {
		t.Fatalf("expected opener error to propagate, got %v", err)
	}
}

func TestLauncherClassification(t *testing.T) {
	registry := NewRegistry()

	for _, launcher := range []string{"openApp", "searchWeb", "playMedia"} {
		if !registry.IsLauncher(launcher) {
			t.Fatalf("expected %s to be a launcher", launcher)
		}
	}
	for _, quiet := range []string{"getTime", "checkWeather", "unknownIntent"} {
		if registry.IsLauncher(quiet) {
			t.Fatalf("expected %s not to be a launcher", quiet)
		}
	}
}

func TestNamesSorted(t *testing.T) {
	names := NewRegistry().Names()
	if len(names) != 5 {
		t.Fatalf("expected 5 builtin skills, got %d: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
