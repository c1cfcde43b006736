package output

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// ColorMode selects when diagnostics are coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func ParseColorMode(value string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (allowed: auto, always, never)", value)
	}
}

// Profile returns the colour profile used for w. Auto mode honours NO_COLOR
// and falls back to plain text when w is not a terminal.
func Profile(mode ColorMode, w io.Writer) termenv.Profile {
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		if p := termenv.NewOutput(w).Profile; p != termenv.Ascii {
			return p
		}
		return termenv.ANSI
	default:
		out := termenv.NewOutput(w)
		if out.EnvNoColor() {
			return termenv.Ascii
		}
		return out.Profile
	}
}

// Styles renders diagnostics and help for one writer.
type Styles struct {
	renderer *lipgloss.Renderer

	Error      lipgloss.Style
	Warning    lipgloss.Style
	Info       lipgloss.Style
	Debug      lipgloss.Style
	Title      lipgloss.Style
	Command    lipgloss.Style
	Flag       lipgloss.Style
	Dim        lipgloss.Style
	Suggestion lipgloss.Style
}

// NewStyles builds styles for w using mode to pick a colour profile.
func NewStyles(w io.Writer, mode ColorMode) *Styles {
	return NewStylesWithProfile(w, Profile(mode, w))
}

func NewStylesWithProfile(w io.Writer, profile termenv.Profile) *Styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return &Styles{
		renderer:   r,
		Error:      r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Warning:    r.NewStyle().Foreground(lipgloss.Color("11")),
		Info:       r.NewStyle().Foreground(lipgloss.Color("4")),
		Debug:      r.NewStyle().Foreground(lipgloss.Color("3")),
		Title:      r.NewStyle().Bold(true),
		Command:    r.NewStyle().Foreground(lipgloss.Color("6")),
		Flag:       r.NewStyle().Foreground(lipgloss.Color("2")),
		Dim:        r.NewStyle().Faint(true),
		Suggestion: r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
	}
}

// Plain returns styles that never emit escape sequences.
func Plain(w io.Writer) *Styles {
	return NewStylesWithProfile(w, termenv.Ascii)
}

// Enabled reports whether the styles emit colour.
func (s *Styles) Enabled() bool {
	return s.renderer.ColorProfile() != termenv.Ascii
}

// Level renders the label for a log level.
func (s *Styles) Level(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return s.Error.Render("ERROR")
	case level >= slog.LevelWarn:
		return s.Warning.Render("WARNING")
	case level >= slog.LevelInfo:
		return s.Info.Render("INFO")
	default:
		return s.Debug.Render("DEBUG")
	}
}

// Strip removes ANSI escape sequences from value.
func Strip(value string) string {
	return ansi.Strip(value)
}

// Width is the printable width of value, ignoring escape sequences.
func Width(value string) int {
	return ansi.StringWidth(value)
}
