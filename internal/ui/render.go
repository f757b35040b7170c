// Package ui renders pipeline reports and doctor results for the terminal.
// Output is colored through lipgloss when attached to a TTY and falls back
// to plain text when piped.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/kubeuno/kubeuno/internal/provisioning"
	"github.com/kubeuno/kubeuno/internal/util/prerequisites"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	okStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
	skipMark  = "[--]"
)

// Renderer writes styled text to a destination.
type Renderer struct {
	out     io.Writer
	colored bool
}

// NewRenderer creates a renderer for the writer, enabling color only when
// the writer is a terminal.
func NewRenderer(out io.Writer) *Renderer {
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: out, colored: colored}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.colored {
		return text
	}
	return s.Render(text)
}

// Report renders the pipeline report, one line per stage, followed by a
// warning or failure summary.
func (r *Renderer) Report(report *provisioning.Report) {
	fmt.Fprintln(r.out, r.style(titleStyle, "Bootstrap report"))

	for _, result := range report.Results {
		mark, style := outcomeMark(result.Outcome)
		line := fmt.Sprintf("%s %-24s %s", mark, result.Name, result.Outcome)
		if result.ProbeAttempts > 0 {
			line += fmt.Sprintf(" (%d probe evaluations, %s)",
				result.ProbeAttempts, result.Duration.Round(durationPrecision(result.Duration)))
		} else if result.Outcome != provisioning.OutcomeSkipped {
			line += fmt.Sprintf(" (%s)", result.Duration.Round(durationPrecision(result.Duration)))
		}
		if result.Err != nil {
			line += ": " + result.Err.Error()
		}
		fmt.Fprintln(r.out, r.style(style, line))
	}

	if failed := report.Failed(); failed != nil {
		fmt.Fprintln(r.out, r.style(failedStyle,
			fmt.Sprintf("\nBootstrap aborted at stage %s.", failed.Name)))
		return
	}

	if warnings := report.Warnings(); len(warnings) > 0 {
		names := make([]string, len(warnings))
		for i, w := range warnings {
			names[i] = w.Name
		}
		fmt.Fprintln(r.out, r.style(warningStyle,
			fmt.Sprintf("\nCompleted with warnings: %s.", strings.Join(names, ", "))))
		return
	}

	fmt.Fprintln(r.out, r.style(okStyle, "\nBootstrap complete."))
}

// Prerequisites renders a tool check section.
func (r *Renderer) Prerequisites(title string, results *prerequisites.CheckResults) {
	fmt.Fprintln(r.out, r.style(titleStyle, title))

	for _, result := range results.Results {
		switch {
		case result.Found:
			fmt.Fprintln(r.out, r.style(okStyle,
				fmt.Sprintf("%s %-12s %s", checkMark, result.Tool.Name, result.Path)))
		case result.Tool.Required:
			fmt.Fprintln(r.out, r.style(failedStyle,
				fmt.Sprintf("%s %-12s missing (%s)", crossMark, result.Tool.Name, result.Tool.InstallURL)))
		default:
			fmt.Fprintln(r.out, r.style(warningStyle,
				fmt.Sprintf("%s %-12s missing, optional (%s)", warnMark, result.Tool.Name, result.Tool.InstallURL)))
		}
	}
}

// Statusf renders a dim informational line.
func (r *Renderer) Statusf(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.style(dimStyle, fmt.Sprintf(format, args...)))
}

// Successf renders a green line.
func (r *Renderer) Successf(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.style(okStyle, fmt.Sprintf(format, args...)))
}

// Errorf renders a red line.
func (r *Renderer) Errorf(format string, args ...interface{}) {
	fmt.Fprintln(r.out, r.style(failedStyle, fmt.Sprintf(format, args...)))
}

func outcomeMark(outcome provisioning.Outcome) (string, lipgloss.Style) {
	switch outcome {
	case provisioning.OutcomeSucceeded:
		return checkMark, okStyle
	case provisioning.OutcomeSkipped:
		return skipMark, dimStyle
	case provisioning.OutcomeTimedOut, provisioning.OutcomeDegraded:
		return warnMark, warningStyle
	default:
		return crossMark, failedStyle
	}
}

// durationPrecision keeps short durations readable without sub-millisecond
// noise and long ones without fractional seconds.
func durationPrecision(d time.Duration) time.Duration {
	if d >= 10*time.Second {
		return time.Second
	}
	return time.Millisecond
}
