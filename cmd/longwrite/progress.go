package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	barDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barPending = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	counter    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	wordsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

const barWidth = 24

// printProgress renders one line per completed section.
func printProgress(current, total int, message string, words int) {
	filled := 0
	if total > 0 {
		filled = current * barWidth / total
	}
	bar := barDone.Render(strings.Repeat("█", filled)) + barPending.Render(strings.Repeat("░", barWidth-filled))
	fmt.Printf("%s %s %s %s\n",
		bar,
		counter.Render(fmt.Sprintf("%d/%d", current, total)),
		message,
		wordsStyle.Render(fmt.Sprintf("(%d words total)", words)),
	)
}

func printTitle(s string) {
	fmt.Println(titleStyle.Render(s))
}
