package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

var (
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	readyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	metStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	unmetStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// stateIcon returns the marker for a task state.
func stateIcon(state matter.State) string {
	switch state {
	case matter.StateCompleted:
		return "✓"
	case matter.StateReady:
		return "▶"
	default:
		return "·"
	}
}

// stateLabel renders "<icon> <state>", colored when w is a terminal.
func stateLabel(w io.Writer, state matter.State) string {
	label := stateIcon(state) + " " + string(state)
	if !useColor(w) {
		return label
	}
	switch state {
	case matter.StateCompleted:
		return completedStyle.Render(label)
	case matter.StateReady:
		return readyStyle.Render(label)
	default:
		return pendingStyle.Render(label)
	}
}

// metLabel renders a dependency check mark.
func metLabel(w io.Writer, met bool) string {
	mark, style := "✗", unmetStyle
	if met {
		mark, style = "✓", metStyle
	}
	if !useColor(w) {
		return mark
	}
	return style.Render(mark)
}

// useColor reports whether w is a terminal that accepts color.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newTable returns a tabwriter for aligned columns. Colored cells must go in
// the last column since escape codes count toward the width.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatDate formats an optional time, or "-".
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// parseDependencies builds dependencies from --requires targets followed by
// --wait target:weeks pairs.
func parseDependencies(requires, waits []string) ([]matter.Dependency, error) {
	deps := make([]matter.Dependency, 0, len(requires)+len(waits))
	for _, target := range requires {
		target = strings.TrimSpace(target)
		if target == "" {
			return nil, fincherrors.ErrInvalidInput("requires", "target task id is empty")
		}
		deps = append(deps, matter.TaskCompletion(target))
	}
	for _, w := range waits {
		dep, err := parseWait(w)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// parseWait parses "target:weeks" into a time-based dependency.
func parseWait(s string) (matter.Dependency, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return matter.Dependency{}, fincherrors.ErrInvalidInput("wait", fmt.Sprintf("%q is not target:weeks", s))
	}
	weeks, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return matter.Dependency{}, fincherrors.ErrInvalidInput("wait", fmt.Sprintf("%q: weeks must be a number", s))
	}
	return matter.TimeBased(s[:i], weeks), nil
}
