// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// styled reports whether text output should carry terminal styling.
// Only a terminal on the real stdout qualifies; a replaced [Stdout] is
// never styled.
func styled() bool {
	file, ok := Stdout.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Heading renders a section title, bold and colored on a terminal and
// plain otherwise.
func Heading(text string) string {
	if !styled() {
		return text
	}
	return headingStyle.Render(text)
}

// Muted renders secondary text (units, hints), dimmed on a terminal.
func Muted(text string) string {
	if !styled() {
		return text
	}
	return mutedStyle.Render(text)
}
