package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"class-remapper/internal/config"
	"class-remapper/internal/diagnostic"
	"class-remapper/internal/remap"
	"class-remapper/internal/table"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	labelColor   = color.New(color.FgCyan)
)

func severityColor(s diagnostic.DiagnosticSeverity) *color.Color {
	switch s {
	case diagnostic.DiagnosticError:
		return color.New(color.FgRed, color.Bold)
	case diagnostic.DiagnosticWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgHiBlack)
	}
}

// printDiagnostics writes one line per diagnostic, most severe first.
func printDiagnostics(w io.Writer, diags *diagnostic.Diagnostics) {
	if diags == nil {
		return
	}

	for _, d := range diags.All() {
		severityColor(d.Severity).Fprintf(w, "%-7s", d.Severity)
		fmt.Fprintf(w, " %s\n", d.String())
	}
}

func printRules(w io.Writer, s table.Stats) {
	labelColor.Fprint(w, "  rules:     ")
	fmt.Fprintf(w, "%d classes, %d fields, %d methods\n", s.Classes, s.Fields, s.Methods)
}

func printRemapSummary(w io.Writer, cfg *config.Config, r *remap.Report) {
	successColor.Fprintf(w, "✓ remapped %s -> %s\n", cfg.Input, cfg.Output)

	labelColor.Fprint(w, "  classes:   ")
	fmt.Fprintf(w, "%d (%d renamed)\n", r.Classes, r.Renamed)
	labelColor.Fprint(w, "  resources: ")
	fmt.Fprintf(w, "%d\n", r.Resources)
	labelColor.Fprint(w, "  libraries: ")
	fmt.Fprintf(w, "%d\n", r.Libraries)
	printRules(w, r.Rules)

	if cfg.Reverse {
		labelColor.Fprint(w, "  direction: ")
		fmt.Fprintln(w, "reverse")
	}
}

func printCheckSummary(w io.Writer, mappings []string, against string, r *remap.CheckReport) {
	successColor.Fprintf(w, "✓ %s\n", strings.Join(mappings, ", "))
	printRules(w, r.Rules)

	if against != "" {
		labelColor.Fprint(w, "  checked:   ")
		fmt.Fprintf(w, "%d classes in %s, %d warnings\n", r.Classes, against, len(r.Diagnostics.Warnings))
	}
}
