// Package ui renders the interactive surfaces: the launch confirmation
// prompt and the listening prompt used by the REPL. Every surface is
// implemented for more than one terminal backend so a broken backend
// degrades instead of failing the whole command.
package ui

import "strings"

const (
	BackendAuto      = "auto"
	BackendBubbleTea = "bubbletea"
	BackendHuh       = "huh"
	BackendTView     = "tview"
	BackendPlain     = "plain"
)

// interactiveBackends is the auto-mode preference order.
var interactiveBackends = []string{BackendBubbleTea, BackendHuh, BackendTView}

func NormalizeBackend(backend string) string {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		return BackendAuto
	}
	if backend == BackendAuto || backend == BackendPlain {
		return backend
	}
	for _, known := range interactiveBackends {
		if backend == known {
			return backend
		}
	}
	return BackendAuto
}

// KnownBackends returns every accepted -ui value, for flag help.
func KnownBackends() []string {
	out := []string{BackendAuto}
	out = append(out, interactiveBackends...)
	return append(out, BackendPlain)
}

func IsInteractiveBackend(backend string) bool {
	return NormalizeBackend(backend) != BackendPlain
}

// backendCandidates puts the requested backend first and keeps the
// remaining interactive backends as fallbacks.
func backendCandidates(backend string) []string {
	normalized := NormalizeBackend(backend)
	if normalized == BackendPlain {
		return []string{BackendPlain}
	}
	if normalized == BackendAuto {
		return append([]string(nil), interactiveBackends...)
	}
	candidates := []string{normalized}
	for _, known := range interactiveBackends {
		if known != normalized {
			candidates = append(candidates, known)
		}
	}
	return candidates
}
