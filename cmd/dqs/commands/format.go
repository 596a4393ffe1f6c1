package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/roles"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// Every command renders through these so output stays uniform
// ═══════════════════════════════════════════════════════════

const (
	singleLine = "───────────────────────────────────────────────────────────"
	doubleLine = "═══════════════════════════════════════════════════════════"
)

// PrintHeader prints a boxed title with key/value details
func PrintHeader(w io.Writer, title string, details [][2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	if len(details) > 0 {
		fmt.Fprintln(w, singleLine)
		for _, kv := range details {
			fmt.Fprintf(w, "  %-11s: %s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintln(w, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(w, val)
		}
	}
	fmt.Fprintln(w)
}

// PrintList prints a bulleted list
func PrintList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintReport renders an evaluation for a terminal
func PrintReport(w io.Writer, report *contracts.EvaluationReport, explain bool) {
	meta := report.Metadata
	PrintHeader(w, "Data Quality Score", [][2]string{
		{"Source", report.Source},
		{"Rows", fmt.Sprintf("%d", meta.RowCount)},
		{"Columns", fmt.Sprintf("%d", meta.ColumnCount())},
		{"Audit hash", meta.AuditHash},
		{"Base score", fmt.Sprintf("%.2f (%s)", report.BaseScore, report.Grade)},
	})

	fmt.Fprintln(w, "Dimensions:")
	for _, d := range contracts.Dimensions() {
		PrintKeyValue(w, d.Title(), fmt.Sprintf("%6.2f", report.Dimensions[d]), 12)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Signals:")
	for _, s := range contracts.AllSignals() {
		mark := "no"
		if meta.Signals.Has(s) {
			mark = "yes"
		}
		PrintKeyValue(w, string(s), mark, 16)
	}

	fmt.Fprintln(w)
	widths := []int{24, 10, 8, 6}
	PrintTableHeader(w, []string{"Role", "Risk", "Score", "Alert"}, widths)
	for _, a := range report.Roles {
		score := "n/a"
		if a.Applicable {
			score = fmt.Sprintf("%.2f", a.Score)
		}
		alert := ""
		if a.RiskDetected {
			alert = "⚠️"
		}
		PrintTableRow(w, []string{a.Role, a.RiskLevel, score, alert}, widths)
	}

	if explain {
		for _, a := range report.Roles {
			fmt.Fprintln(w)
			PrintSeparator(w)
			fmt.Fprintln(w, a.Explanation)
		}
	}
	fmt.Fprintln(w)
}

// PrintProfile renders one role profile
func PrintProfile(w io.Writer, p roles.Profile) {
	fmt.Fprintf(w, "📋 %s (%s)\n", p.Name(), p.RiskLevel())
	fmt.Fprintf(w, "   %s\n", p.Description())
	PrintKeyValue(w, "Threshold", fmt.Sprintf("%g", p.RiskThreshold()), 10)

	critical := make([]string, 0, len(p.CriticalDimensions()))
	for _, d := range p.CriticalDimensions() {
		critical = append(critical, d.Title())
	}
	PrintKeyValue(w, "Critical", orNone(strings.Join(critical, ", ")), 10)

	required := make([]string, 0, len(p.RequiredSignals()))
	for _, s := range p.RequiredSignals() {
		required = append(required, string(s))
	}
	PrintKeyValue(w, "Requires", orNone(strings.Join(required, ", ")), 10)

	weights := make([]string, 0, contracts.DimensionCount)
	for _, d := range contracts.Dimensions() {
		weights = append(weights, fmt.Sprintf("%s %.2f", d.Title(), p.Weight(d)))
	}
	PrintKeyValue(w, "Weights", strings.Join(weights, ", "), 10)
	fmt.Fprintln(w)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
