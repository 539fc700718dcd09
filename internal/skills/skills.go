// Package skills maps resolved intents to the actions they perform. A
// skill receives the extracted parameters and returns a spoken-style
// response; side effects such as opening a browser stay behind the
// registry's opener so callers and tests can intercept them.
package skills

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/heyvox/vox/internal/nlp"
)

// Skill handles one intent. The params map comes straight from the
// resolver; missing keys mean the pattern did not capture them.
type Skill func(params map[string]string) (string, error)

// Registry routes structured commands to skills by intent name.
type Registry struct {
	skills    map[string]Skill
	launchers map[string]bool
	openURL   func(target string) error
	now       func() time.Time
}

// Option customizes a Registry, mainly for tests.
type Option func(*Registry)

// WithOpener replaces the platform browser opener.
func WithOpener(open func(target string) error) Option {
	return func(r *Registry) { r.openURL = open }
}

// WithClock replaces the time source used by getTime.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry builds a registry with the builtin skills registered.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		skills:    map[string]Skill{},
		launchers: map[string]bool{},
		openURL:   openInBrowser,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Register("getTime", r.getTime)
	r.Register("checkWeather", r.checkWeather)
	r.RegisterLauncher("openApp", r.openApp)
	r.RegisterLauncher("searchWeb", r.searchWeb)
	r.RegisterLauncher("playMedia", r.playMedia)
	return r
}

// Register adds or replaces the skill for an intent.
func (r *Registry) Register(intent string, skill Skill) {
	r.skills[intent] = skill
}

// RegisterLauncher registers a skill that opens something on the user's
// machine and should be gated behind confirmation.
func (r *Registry) RegisterLauncher(intent string, skill Skill) {
	r.skills[intent] = skill
	r.launchers[intent] = true
}

// IsLauncher reports whether the intent's skill launches an external
// application or browser tab.
func (r *Registry) IsLauncher(intent string) bool {
	return r.launchers[intent]
}

// Names lists registered intents, sorted for stable display.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the skill for cmd. ok is false when no skill is
// registered for the intent; err reports a skill that ran and failed.
func (r *Registry) Dispatch(cmd nlp.Command) (string, bool, error) {
	skill, ok := r.skills[cmd.Intent]
	if !ok {
		return "", false, nil
	}
	message, err := skill(cmd.Params)
	return message, true, err
}

func (r *Registry) getTime(map[string]string) (string, error) {
	return fmt.Sprintf("The current time is %s.", r.now().Format("3:04 PM")), nil
}

func (r *Registry) checkWeather(map[string]string) (string, error) {
	return "Fetching the latest weather forecast for you.", nil
}

// wellKnownApps maps spoken app names to the web services the reference
// assistant knew how to open.
var wellKnownApps = map[string]string{
	"youtube": "https://www.youtube.com",
	"spotify": "https://open.spotify.com",
}

func (r *Registry) openApp(params map[string]string) (string, error) {
	appName := strings.TrimSpace(params["appName"])
	if appName == "" {
		return "No application name specified for opening.", nil
	}
	target, known := wellKnownApps[strings.ToLower(appName)]
	if !known {
		return fmt.Sprintf("I don't know how to open %s yet.", appName), nil
	}
	if err := r.openURL(target); err != nil {
		return "", fmt.Errorf("could not open %s: %w", appName, err)
	}
	return fmt.Sprintf("Opening %s...", appName), nil
}

func (r *Registry) searchWeb(params map[string]string) (string, error) {
	query := strings.TrimSpace(params["query"])
	if query == "" {
		return "You didn't specify what to search for.", nil
	}
	target := "https://www.google.com/search?q=" + url.QueryEscape(query)
	if err := r.openURL(target); err != nil {
		return "", fmt.Errorf("could not open search for %q: %w", query, err)
	}
	return fmt.Sprintf("Searching the web for %q...", query), nil
}

func (r *Registry) playMedia(params map[string]string) (string, error) {
	title := strings.TrimSpace(params["mediaTitle"])
	if title == "" {
		return "You need to specify what song or video you want to play.", nil
	}

	service := "YouTube"
	target := "https://www.youtube.com/results?search_query=" + url.QueryEscape(title)
	if strings.Contains(strings.ToLower(params["mediaService"]), "spotify") {
		service = "Spotify"
		target = "https://open.spotify.com/search/" + url.PathEscape(title)
	}

	if err := r.openURL(target); err != nil {
		return "", fmt.Errorf("could not play %q on %s: %w", title, service, err)
	}
	return fmt.Sprintf("Searching for %q on %s...", title, service), nil
}

func openInBrowser(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}
