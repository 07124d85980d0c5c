// Package diag provides diagnostics for the middle-end: human-readable
// warnings produced by analysis passes, and hard assertions for
// internal invariant violations.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"sora/internal/source"
)

// Level represents the severity of a diagnostic
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
)

// Diagnostic is a single finding tied to a source position. The
// middle-end does not hold source text, so diagnostics carry no
// excerpt; the driver may re-render them against the file.
type Diagnostic struct {
	Level   Level
	Message string
	Pos     source.Pos
	Notes   []string
}

// Reporter accumulates diagnostics and formats them for a terminal.
type Reporter struct {
	diags []Diagnostic
}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) Report(d Diagnostic) {
	r.diags = append(r.diags, d)
}

func (r *Reporter) Warningf(pos source.Pos, format string, args ...interface{}) {
	r.Report(Diagnostic{Level: Warning, Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (r *Reporter) Errorf(pos source.Pos, format string, args ...interface{}) {
	r.Report(Diagnostic{Level: Error, Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

func (r *Reporter) HasErrors() bool {
	for _, d := range r.diags {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// Format renders a diagnostic with the project's terminal styling.
func Format(d Diagnostic) string {
	var result strings.Builder

	levelColor := getLevelColor(d.Level)
	dim := color.New(color.Faint).SprintFunc()

	result.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(d.Level)), d.Message))
	if d.Pos.IsValid() {
		result.WriteString(fmt.Sprintf("   %s %s\n", dim("-->"), d.Pos))
	}
	for _, note := range d.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("    %s %s\n", noteColor("note:"), note))
	}
	return result.String()
}

// Flush writes all accumulated diagnostics to w and clears the reporter.
func (r *Reporter) Flush(w io.Writer) {
	for _, d := range r.diags {
		fmt.Fprint(w, Format(d))
	}
	r.diags = nil
}

func getLevelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}
