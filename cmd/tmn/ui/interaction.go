package ui

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	envNoInteraction = "TMN_NO_INTERACTION"
	envCI            = "CI"
	envTerm          = "TERM"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// ErrNoInteraction is returned when a prompt is needed but the terminal is
// not interactive.
type ErrNoInteraction struct {
	Hint string
}

func (e *ErrNoInteraction) Error() string {
	if e.Hint == "" {
		return "terminal is not interactive"
	}
	return "terminal is not interactive, " + e.Hint
}

var interaction struct {
	mu          sync.RWMutex
	initialized bool
	interactive bool
}

// ConfigureInteraction decides once whether prompts, spinners and colour
// are used. noInteraction forces plain output.
func ConfigureInteraction(noInteraction bool) {
	interactive := detectInteractive(noInteraction)

	interaction.mu.Lock()
	interaction.initialized = true
	interaction.interactive = interactive
	interaction.mu.Unlock()

	if interactive {
		lipgloss.SetColorProfile(termenv.ColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

func IsInteractive() bool {
	interaction.mu.RLock()
	initialized, interactive := interaction.initialized, interaction.interactive
	interaction.mu.RUnlock()
	if initialized {
		return interactive
	}
	ConfigureInteraction(false)
	return IsInteractive()
}

func IsNoInteraction() bool {
	return !IsInteractive()
}

// RequireInteraction returns *ErrNoInteraction carrying hint when the
// terminal cannot prompt.
func RequireInteraction(hint string) error {
	if IsInteractive() {
		return nil
	}
	return &ErrNoInteraction{Hint: hint}
}

func detectInteractive(noInteraction bool) bool {
	if noInteraction || envTruthy(envNoInteraction) || envTruthy(envCI) {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envTerm)), "dumb") {
		return false
	}
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func envTruthy(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
