// Package render formats classification results for a terminal.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/somanole/bmicalc/internal/bmi"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Italic(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")).Bold(true)
)

// Result renders a boxed summary tinted with the category color.
func Result(res bmi.Result) string {
	accent := lipgloss.Color(res.Color)
	value := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(res.BMI())
	category := lipgloss.NewStyle().Foreground(accent).Render(res.Category.String())

	var b strings.Builder
	b.WriteString(labelStyle.Render("BMI      "))
	b.WriteString(value)
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Category "))
	b.WriteString(category)
	b.WriteString("\n\n")
	b.WriteString(res.Message())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(res.Interpretation))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(b.String())
}

// Error renders a user-facing failure line.
func Error(msg string) string {
	return errorStyle.Render("Error: ") + msg
}
