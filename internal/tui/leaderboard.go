package tui

import (
	"fmt"
	"strings"

	"savethebirds/internal/leaderboard"
)

type row struct {
	rank  int
	name  string
	score int
	level int
}

func entriesRows(entries []leaderboard.Entry) []row {
	rows := make([]row, len(entries))
	for i, e := range entries {
		rows[i] = row{rank: i + 1, name: e.Name, score: e.Score, level: e.Level}
	}
	return rows
}

// formatRows renders ranked rows as aligned plain text.
func formatRows(rows []row) string {
	width := 4
	for _, r := range rows {
		if n := len([]rune(r.name)); n > width {
			width = n
		}
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%2d. %-*s %5d  L%d\n", r.rank, width, r.name, r.score, r.level)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Leaderboard renders entries for non-interactive output.
func Leaderboard(entries []leaderboard.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	return formatRows(entriesRows(entries))
}
