package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/heyvox/vox/internal/config"
	"github.com/heyvox/vox/internal/history"
	"github.com/heyvox/vox/internal/intents"
	"github.com/heyvox/vox/internal/nlp"
	"github.com/heyvox/vox/internal/skills"
	"github.com/heyvox/vox/internal/ui"
)

var version = "dev"

const suggestionLimit = 3

type options struct {
	UI          string
	Intents     string
	Set         string
	Recall      string
	Threshold   int
	History     int
	JSON        bool
	ResolveOnly bool
	Yes         bool
	ShowConfig  bool
	Version     bool
}

type response struct {
	Intent      string            `json:"intent"`
	Params      map[string]string `json:"params,omitempty"`
	Message     string            `json:"message,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
	Results     interface{}       `json:"results,omitempty"`
	ConfigPath  string            `json:"config_path,omitempty"`
}

func main() {
	opts, utterance, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.Version {
		fmt.Println(version)
		return
	}

	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vox: could not load config: %v\n", err)
		os.Exit(1)
	}

	if strings.TrimSpace(opts.Set) != "" {
		if err := handleConfigSet(&cfg, cfgPath, opts); err != nil {
			fmt.Fprintf(os.Stderr, "vox: %v\n", err)
			os.Exit(1)
		}
		if utterance == "" {
			return
		}
	}

	if opts.ShowConfig {
		printResponse(response{
			Intent:     "showConfig",
			Message:    "effective settings",
			Results:    cfg,
			ConfigPath: cfgPath,
		}, opts.JSON)
		return
	}

	if opts.History > 0 {
		handleHistoryRecent(cfg, opts)
		return
	}
	if strings.TrimSpace(opts.Recall) != "" {
		handleHistoryRecall(cfg, opts)
		return
	}

	resolver, err := buildResolver(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vox: %v\n", err)
		os.Exit(1)
	}
	registry := skills.NewRegistry()

	var transcript *history.Log
	if cfg.HistoryEnabled() {
		transcript, err = history.Open(cfg.History.MaxEntries)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vox: history disabled: %v\n", err)
			transcript = nil
		}
	}

	if utterance != "" {
		runOnce(utterance, resolver, registry, transcript, cfg, opts)
		return
	}
	runREPL(resolver, registry, transcript, cfg, opts)
}

func parseArgs(args []string) (options, string, error) {
	fs := flag.NewFlagSet("vox", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts options
	fs.StringVar(&opts.UI, "ui", "", "override ui backend: "+strings.Join(ui.KnownBackends(), "|"))
	fs.StringVar(&opts.Intents, "intents", "", "load an extra intent pack (json or yaml)")
	fs.StringVar(&opts.Set, "set", "", "persist a config change, e.g. -set wake_word=jarvis")
	fs.StringVar(&opts.Recall, "recall", "", "search past utterances and exit")
	fs.IntVar(&opts.Threshold, "threshold", -1, "override keyword confirmation threshold (0-100)")
	fs.IntVar(&opts.History, "history", 0, "print the n most recent utterances and exit")
	fs.BoolVar(&opts.JSON, "json", false, "output JSON")
	fs.BoolVar(&opts.ResolveOnly, "resolve-only", false, "print the resolved command without running a skill")
	fs.BoolVar(&opts.Yes, "yes", false, "auto-confirm launch prompts")
	fs.BoolVar(&opts.ShowConfig, "show-config", false, "show effective settings and exit")
	fs.BoolVar(&opts.Version, "version", false, "print version")

	if err := fs.Parse(args); err != nil {
		return options{}, "", err
	}
	if opts.Threshold != -1 && (opts.Threshold < 0 || opts.Threshold > 100) {
		return options{}, "", fmt.Errorf("-threshold must be between 0 and 100")
	}
	if strings.TrimSpace(opts.Set) != "" && !strings.Contains(opts.Set, "=") {
		return options{}, "", fmt.Errorf("-set expects key=value")
	}
	utterance := strings.TrimSpace(strings.Join(fs.Args(), " "))
	return opts, utterance, nil
}

func buildResolver(cfg config.Config, opts options) (*nlp.Resolver, error) {
	defs := cfg.Definitions()
	if path := strings.TrimSpace(opts.Intents); path != "" {
		extra, err := intents.Load(path)
		if err != nil {
			return nil, fmt.Errorf("could not load intent pack: %w", err)
		}
		// Pack intents outrank the configured table so a pack can
		// shadow a builtin pattern.
		defs = append(extra, defs...)
	}

	threshold := cfg.KeywordThreshold
	if opts.Threshold != -1 {
		threshold = opts.Threshold
	}
	resolver, err := nlp.New(nlp.Config{Definitions: defs, KeywordThreshold: threshold})
	if err != nil {
		return nil, fmt.Errorf("invalid intent table: %w", err)
	}
	return resolver, nil
}

func runOnce(utterance string, resolver *nlp.Resolver, registry *skills.Registry, transcript *history.Log, cfg config.Config, opts options) {
	command, ok := resolver.Resolve(utterance)
	if !ok {
		printNoMatch(utterance, resolver, opts)
		return
	}

	if transcript != nil {
		if err := transcript.Append(history.Entry{
			Utterance: utterance,
			Intent:    command.Intent,
			Params:    command.Params,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "vox: could not record utterance: %v\n", err)
		}
	}

	if opts.ResolveOnly {
		printResponse(response{
			Intent:  command.Intent,
			Params:  command.Params,
			Message: fmt.Sprintf("resolved %q", utterance),
		}, opts.JSON)
		return
	}

	if registry.IsLauncher(command.Intent) && !opts.Yes {
		approved := confirmLaunch(describeAction(command), cfg, opts)
		if !approved {
			printResponse(response{
				Intent:  command.Intent,
				Params:  command.Params,
				Message: "cancelled",
			}, opts.JSON)
			return
		}
	}

	message, handled, err := registry.Dispatch(command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vox: %v\n", err)
		os.Exit(1)
	}
	if !handled {
		message = fmt.Sprintf("no skill handles %q yet", command.Intent)
	}
	printResponse(response{
		Intent:  command.Intent,
		Params:  command.Params,
		Message: message,
	}, opts.JSON)
}

func runREPL(resolver *nlp.Resolver, registry *skills.Registry, transcript *history.Log, cfg config.Config, opts options) {
	backend := effectiveUIBackend(cfg, opts)
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		backend = ui.BackendPlain
	}
	prompt := ui.NewPrompt(backend, cfg.WakeWord)

	if !opts.JSON {
		fmt.Printf("vox: say %q followed by a command, or quit to leave.\n", cfg.WakeWord)
	}
	for {
		utterance, alive, err := prompt.Read()
		if err != nil {
			fmt.Fprintf(os.Stderr, "vox: %v\n", err)
			return
		}
		if !alive {
			return
		}
		switch strings.ToLower(strings.TrimSpace(utterance)) {
		case "":
			continue
		case "quit", "exit", "goodbye":
			if !opts.JSON {
				fmt.Println("vox: goodbye.")
			}
			return
		}
		runOnce(utterance, resolver, registry, transcript, cfg, opts)
	}
}

func printNoMatch(utterance string, resolver *nlp.Resolver, opts options) {
	suggestions := make([]string, 0, suggestionLimit)
	for _, s := range resolver.Suggest(utterance, suggestionLimit) {
		suggestions = append(suggestions, s.Phrase)
	}
	if opts.JSON {
		printResponse(response{
			Intent:      nlp.IntentUnknown,
			Suggestions: suggestions,
		}, true)
		return
	}
	fmt.Println("vox: sorry, I didn't understand that.")
	if len(suggestions) > 0 {
		fmt.Println("did you mean:")
		for _, phrase := range suggestions {
			fmt.Printf("- %s\n", phrase)
		}
	}
}

func confirmLaunch(action string, cfg config.Config, opts options) bool {
	backend := effectiveUIBackend(cfg, opts)
	if ui.IsInteractiveBackend(backend) && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		approved, used, err := ui.ConfirmLaunch(backend, action)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vox: confirmation ui failed (%v); falling back to plain prompt\n", err)
		}
		if used {
			return approved
		}
	}
	return confirmLaunchPlain(action)
}

func confirmLaunchPlain(action string) bool {
	fmt.Printf("vox wants to %s. Go ahead? [y/N]: ", action)
	reader := bufio.NewReader(os.Stdin)
	choice, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func describeAction(command nlp.Command) string {
	switch command.Intent {
	case "openApp":
		if app := command.Params["appName"]; app != "" {
			return fmt.Sprintf("open %s", app)
		}
		return "open an application"
	case "searchWeb":
		if query := command.Params["query"]; query != "" {
			return fmt.Sprintf("search the web for %q", query)
		}
		return "search the web"
	case "playMedia":
		title := command.Params["mediaTitle"]
		service := command.Params["mediaService"]
		if title != "" && service != "" {
			return fmt.Sprintf("play %q on %s", title, service)
		}
		if title != "" {
			return fmt.Sprintf("play %q", title)
		}
		return "play media"
	default:
		return fmt.Sprintf("run %s", command.Intent)
	}
}

func handleConfigSet(cfg *config.Config, cfgPath string, opts options) error {
	key, value, _ := strings.Cut(opts.Set, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("invalid config change %s=%s: %w", key, value, err)
	}
	if err := config.Save(cfgPath, *cfg); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}
	printResponse(response{
		Intent:      "configSet",
		Message:     "saved settings",
		ConfigPath:  cfgPath,
		Suggestions: []string{fmt.Sprintf("%s=%s", key, value)},
	}, opts.JSON)
	return nil
}

func handleHistoryRecent(cfg config.Config, opts options) {
	transcript, err := history.Open(cfg.History.MaxEntries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vox: %v\n", err)
		os.Exit(1)
	}
	entries, err := transcript.Recent(opts.History)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vox: %v\n", err)
		os.Exit(1)
	}
	if opts.JSON {
		printResponse(response{Intent: "history", Results: entries}, true)
		return
	}
	if len(entries) == 0 {
		fmt.Println("vox: no utterances recorded yet.")
		return
	}
	for _, entry := range entries {
		fmt.Printf("%s  %-12s  %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04"), entry.Intent, entry.Utterance)
	}
}

func handleHistoryRecall(cfg config.Config, opts options) {
	transcript, err := history.Open(cfg.History.MaxEntries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vox: %v\n", err)
		os.Exit(1)
	}
	matches, err := transcript.Search(opts.Recall, suggestionLimit*2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vox: %v\n", err)
		os.Exit(1)
	}
	if opts.JSON {
		printResponse(response{Intent: "recall", Results: matches}, true)
		return
	}
	if len(matches) == 0 {
		fmt.Printf("vox: nothing matching %q in the transcript.\n", opts.Recall)
		return
	}
	for _, match := range matches {
		fmt.Printf("%-12s  %s\n", match.Intent, match.Utterance)
	}
}

func printResponse(payload response, asJSON bool) {
	if asJSON {
		encoded, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Println(string(encoded))
		return
	}
	if payload.Message != "" {
		fmt.Printf("vox: %s\n", payload.Message)
	}
	if payload.Intent != "" && payload.Intent != nlp.IntentUnknown {
		fmt.Printf("intent: %s\n", payload.Intent)
	}
	keys := make([]string, 0, len(payload.Params))
	for key := range payload.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("  %s: %s\n", key, payload.Params[key])
	}
	if len(payload.Suggestions) > 0 {
		for _, suggestion := range payload.Suggestions {
			fmt.Printf("- %s\n", suggestion)
		}
	}
	if payload.Results != nil {
		encoded, _ := json.MarshalIndent(payload.Results, "", "  ")
		fmt.Println(string(encoded))
	}
	if payload.ConfigPath != "" {
		fmt.Printf("config: %s\n", payload.ConfigPath)
	}
}

func effectiveUIBackend(cfg config.Config, opts options) string {
	if strings.TrimSpace(opts.UI) != "" {
		return ui.NormalizeBackend(opts.UI)
	}
	return ui.NormalizeBackend(cfg.UI.Backend)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
