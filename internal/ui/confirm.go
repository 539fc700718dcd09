package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// ConfirmLaunch asks the user before an action with side effects runs,
// such as launching an application or opening a URL. The second return
// value reports whether any backend actually rendered a prompt; when it
// is false the caller decides what a silent environment means.
func ConfirmLaunch(backend string, action string) (bool, bool, error) {
	action = strings.TrimSpace(action)
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			approved bool
			err      error
		)
		switch candidate {
		case BackendBubbleTea:
			approved, err = confirmWithBubbleTea(action)
		case BackendHuh:
			approved, err = confirmWithHuh(action)
		case BackendTView:
			approved, err = confirmWithTView(action)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return approved, true, nil
	}
	if firstErr != nil {
		return false, false, firstErr
	}
	return false, false, nil
}

type confirmModel struct {
	action   string
	approved bool
	done     bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch strings.ToLower(key.String()) {
		case "y":
			m.approved = true
			m.done = true
			return m, tea.Quit
		case "n", "esc", "ctrl+c", "enter":
			m.approved = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	return fmt.Sprintf("Go ahead?\n\n%s\n\n[y] yes  [n] no", m.action)
}

func confirmWithBubbleTea(action string) (bool, error) {
	final, err := tea.NewProgram(confirmModel{action: action}, tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	out, ok := final.(confirmModel)
	if !ok || !out.done {
		return false, nil
	}
	return out.approved, nil
}

func confirmWithHuh(action string) (bool, error) {
	approved := false
	prompt := huh.NewConfirm().
		Title("Go ahead?").
		Description(action).
		Affirmative("Yes").
		Negative("No").
		Value(&approved).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func confirmWithTView(action string) (bool, error) {
	app := tview.NewApplication()
	approved := false
	answered := false

	modal := tview.NewModal().
		SetText(fmt.Sprintf("Go ahead?\n\n%s", action)).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, label string) {
			answered = true
			approved = strings.EqualFold(strings.TrimSpace(label), "yes")
			app.Stop()
		})

	if err := app.SetRoot(modal, true).Run(); err != nil {
		return false, err
	}
	if !answered {
		return false, nil
	}
	return approved, nil
}
