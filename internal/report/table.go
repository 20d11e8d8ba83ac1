// Package report renders run summaries as aligned plain-text tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"newsfetcher/pkg/utils"
)

// MaxCellWidth bounds the display width of a single cell.
const MaxCellWidth = 60

var width = newCondition()

func newCondition() *runewidth.Condition {
	cond := runewidth.NewCondition()
	// Cyrillic is ambiguous-width; count it as one column regardless of locale.
	cond.EastAsianWidth = false

	return cond
}

// Table aligns headers and rows into pipe-delimited lines with a dashed
// separator under the header. Columns are padded by display width, so wide
// characters line up. Rows shorter than the header are padded with empty cells.
func Table(headers []string, rows [][]string) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	table := make([][]string, 0, len(rows)+1)
	table = append(table, cleanRow(headers))

	for _, row := range rows {
		table = append(table, cleanRow(row))
	}

	colWidths := make([]int, colCount)

	for _, row := range table {
		for i, cell := range row {
			if w := width.StringWidth(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	// Room for the "---" separator.
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	lines := make([]string, 0, len(table)+1)

	for i, row := range table {
		lines = append(lines, formatRow(row, colWidths, false))

		if i == 0 {
			lines = append(lines, formatRow(nil, colWidths, true))
		}
	}

	return lines
}

// WriteTable writes the table to w, one line per row.
func WriteTable(w io.Writer, headers []string, rows [][]string) error {
	for _, line := range Table(headers, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}

func cleanRow(row []string) []string {
	helper := utils.NewStringHelper()

	cells := make([]string, 0, len(row))
	for _, cell := range row {
		cell = helper.NormalizeWhitespace(strings.ReplaceAll(cell, "|", "/"))
		cells = append(cells, helper.TruncateString(cell, MaxCellWidth))
	}

	return cells
}

func formatRow(row []string, colWidths []int, separator bool) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, w := range colWidths {
		sb.WriteString(" ")

		if separator {
			sb.WriteString(strings.Repeat("-", w))
		} else {
			content := ""
			if j < len(row) {
				content = row[j]
			}

			sb.WriteString(content)

			if padding := w - width.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
