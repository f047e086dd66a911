package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/germanamz/piecesllm/pkg/piecesos"
	"github.com/mattn/go-runewidth"
)

var (
	colorAccent  = lipgloss.Color("#0969da")
	colorMuted   = lipgloss.Color("#656d76")
	colorSuccess = lipgloss.Color("#1a7f37")

	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	dimStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
)

// mdRenderer renders markdown to terminal-formatted output.
var mdRenderer *glamour.TermRenderer

func initMarkdownRenderer() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return
	}
	mdRenderer = r
}

// renderMarkdown converts markdown text to terminal-formatted output using
// glamour. Falls back to plain text if the renderer is unavailable.
func renderMarkdown(text string) string {
	if mdRenderer == nil {
		return text
	}
	out, err := mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func promptHeading(i int, prompt string) string {
	return headingStyle.Render(fmt.Sprintf("[%d] %s", i+1, prompt))
}

// formatModels renders the model catalogue as aligned columns: name, where it
// runs, and id. The model matching selected (by name or id) is starred.
func formatModels(models []piecesos.Model, selected string) string {
	if len(models) == 0 {
		return dimStyle.Render("no models reported") + "\n"
	}

	width := 0
	for _, m := range models {
		width = max(width, runewidth.StringWidth(m.Name))
	}

	var b strings.Builder
	for _, m := range models {
		marker := "  "
		name := runewidth.FillRight(m.Name, width)
		if selected != "" && (m.Name == selected || m.ID == selected) {
			marker = "* "
			name = selectedStyle.Render(name)
		}

		where := "local"
		if m.Cloud {
			where = "cloud"
		}

		fmt.Fprintf(&b, "%s%s  %s  %s\n", marker, name, where, dimStyle.Render(m.ID))
	}

	return b.String()
}
