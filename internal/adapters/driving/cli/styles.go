package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme defines the colour palette for command output.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Error:    lipgloss.NewStyle().Foreground(theme.Error),
		Success:  lipgloss.NewStyle().Foreground(theme.Success),
		Warning:  lipgloss.NewStyle().Foreground(theme.Warning),
	}
}

var styles = NewStyles(DefaultTheme())

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
)

// resolveOutput picks the output format. An empty choice means text on a
// terminal and JSON otherwise.
func resolveOutput(choice string, w io.Writer) (string, error) {
	switch choice {
	case outputText, outputJSON:
		return choice, nil
	case "":
		if isTerminal(w) {
			return outputText, nil
		}
		return outputJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (want text or json)", choice)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
