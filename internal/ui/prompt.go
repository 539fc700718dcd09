package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Prompt reads utterances for the REPL. Interactive backends render a
// listening prompt; the plain backend falls back to line-buffered stdin.
type Prompt struct {
	backend  string
	wakeWord string
	stdin    *bufio.Reader
}

func NewPrompt(backend string, wakeWord string) *Prompt {
	return &Prompt{
		backend:  NormalizeBackend(backend),
		wakeWord: strings.TrimSpace(wakeWord),
		stdin:    bufio.NewReader(os.Stdin),
	}
}

// Read returns the next utterance. The second return value is false when
// the user ended the session with EOF, escape, or an interrupt.
func (p *Prompt) Read() (string, bool, error) {
	var firstErr error
	for _, candidate := range backendCandidates(p.backend) {
		var (
			utterance string
			alive     bool
			err       error
		)
		switch candidate {
		case BackendBubbleTea:
			utterance, alive, err = p.readWithBubbleTea()
		case BackendHuh:
			utterance, alive, err = p.readWithHuh()
		case BackendPlain:
			return p.readPlain()
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return utterance, alive, nil
	}
	if firstErr != nil {
		// Every interactive backend failed, likely a dumb terminal.
		return p.readPlain()
	}
	return "", false, nil
}

type promptModel struct {
	input     textinput.Model
	wakeWord  string
	utterance string
	quit      bool
}

func newPromptModel(wakeWord string) promptModel {
	input := textinput.New()
	input.Placeholder = fmt.Sprintf("%s, open notepad", wakeWord)
	input.CharLimit = 240
	input.Width = 64
	input.Focus()
	return promptModel{input: input, wakeWord: wakeWord}
}

func (m promptModel) Init() tea.Cmd { return textinput.Blink }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.utterance = strings.TrimSpace(m.input.Value())
			return m, tea.Quit
		case "esc", "ctrl+c", "ctrl+d":
			m.quit = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	lines := []string{
		promptTitleStyle.Render(fmt.Sprintf("%s is listening", m.wakeWord)),
		"",
		m.input.View(),
		"",
		promptHintStyle.Render("[enter] say it  [esc] quit"),
	}
	return promptCardStyle.Render(strings.Join(lines, "\n"))
}

func (p *Prompt) readWithBubbleTea() (string, bool, error) {
	final, err := tea.NewProgram(newPromptModel(p.wakeWord)).Run()
	if err != nil {
		return "", false, err
	}
	out, ok := final.(promptModel)
	if !ok || out.quit {
		return "", false, nil
	}
	return out.utterance, true, nil
}

func (p *Prompt) readWithHuh() (string, bool, error) {
	utterance := ""
	prompt := huh.NewInput().
		Title(fmt.Sprintf("%s is listening", p.wakeWord)).
		Placeholder(fmt.Sprintf("%s, open notepad", p.wakeWord)).
		Value(&utterance).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(utterance), true, nil
}

func (p *Prompt) readPlain() (string, bool, error) {
	fmt.Printf("%s> ", p.wakeWord)
	line, err := p.stdin.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			if line != "" {
				return line, true, nil
			}
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(line), true, nil
}

var (
	promptCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 2)

	promptTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("87"))

	promptHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("109"))
)
