package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"class-remapper/internal/common"
)

// Diagnostics collects the findings of one remap or check run, bucketed by
// severity. Only Errors stop a run; warnings cover recovered problems such
// as an unreadable library jar, and infos record layering decisions such as
// an overridden class rule.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic is one finding.
type Diagnostic struct {
	Severity DiagnosticSeverity
	// Code is a stable snake_case key such as rule_collision or
	// lib_load_failed.
	Code    string
	Message string
	// Subject is the internal class name, member key (owner.name:desc) or
	// container path the finding is about.
	Subject string
	// Location is a mapping position (file:line:col) or a container entry.
	Location string
	// Suggestions are near-miss names from the audited container.
	Suggestions []string
}

type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError records a finding that aborts the run, e.g. two old classes
// targeting one new name.
func (d *Diagnostics) AddError(code, message, subject, location string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Subject: subject, Location: location})
}

// AddWarning records a recovered problem.
func (d *Diagnostics) AddWarning(code, message, subject, location string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Subject: subject, Location: location})
}

// AddInfo records a note.
func (d *Diagnostics) AddInfo(code, message, subject, location string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Subject: subject, Location: location})
}

// Add files diag under its severity. Unknown severities count as infos.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// HasCode reports whether any finding of any severity carries code.
func (d *Diagnostics) HasCode(code string) bool {
	for _, diag := range d.All() {
		if diag.Code == code {
			return true
		}
	}

	return false
}

// Merge appends other's findings, e.g. per-document validation results.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// All returns errors, then warnings, then infos, each in recorded order.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, d.Len())
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// Error joins the error findings with "; ". It returns nil when there are
// none, so callers can wrap it with %w after a failed build.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String renders "location [subject]: [code] message (did you mean a, b?)",
// dropping the parts that are empty.
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.Location != "" {
		b.WriteString(d.Location)
	}

	if d.Subject != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		fmt.Fprintf(&b, "[%s]", d.Subject)
	}

	if b.Len() > 0 {
		b.WriteString(": ")
	}

	if d.Code != "" {
		fmt.Fprintf(&b, "[%s] ", d.Code)
	}

	b.WriteString(d.Message)

	if len(d.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(d.Suggestions, ", "))
	}

	return b.String()
}
