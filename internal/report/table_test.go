package report

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		rows     [][]string
		expected string
	}{
		{
			name:    "Basic table",
			headers: []string{"Operation", "Total"},
			rows:    [][]string{{"check-urls", "12"}},
			expected: `
| Operation  | Total |
| ---------- | ----- |
| check-urls | 12    |
`,
		},
		{
			name:    "Minimum width",
			headers: []string{"A", "B"},
			rows:    [][]string{{"1", "2"}},
			expected: `
| A   | B   |
| --- | --- |
| 1   | 2   |
`,
		},
		{
			name:    "Short rows and cleaned cells",
			headers: []string{"Title", "Date", "Live"},
			rows:    [][]string{{"  Матч   перенесён ", "2023-05-01"}, {"a|b", "2023-05-02", "yes"}},
			expected: `
| Title          | Date       | Live |
| -------------- | ---------- | ---- |
| Матч перенесён | 2023-05-01 |      |
| a/b            | 2023-05-02 | yes  |
`,
		},
		{
			name:    "Mixed CJK and ASCII",
			headers: []string{"Date", "Event"},
			rows:    [][]string{{"2025-01-01", "消防處：增至83死。"}, {"2025-01-02", "Short text"}},
			expected: `
| Date       | Event              |
| ---------- | ------------------ |
| 2025-01-01 | 消防處：增至83死。 |
| 2025-01-02 | Short text         |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(Table(tt.headers, tt.rows), "\n")

			if got != strings.TrimSpace(tt.expected) {
				t.Errorf("Table() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteTable(&buf, []string{"Source"}, [][]string{{"prostoprosport"}}); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}

	want := "| Source         |\n| -------------- |\n| prostoprosport |\n"
	if buf.String() != want {
		t.Errorf("WriteTable() = %q, want %q", buf.String(), want)
	}
}
