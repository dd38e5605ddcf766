package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Alignment controls how a column's content is justified.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Column describes a single table column.
type Column struct {
	Header string
	Align  Alignment
	Color  func(...any) string // optional per-cell color
}

// Table renders aligned text tables.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow appends a row. Missing values render empty; extra values are dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows added.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table to w. Widths count runes, not bytes.
func (t *Table) Render(w io.Writer) error {
	if len(t.columns) == 0 {
		return nil
	}
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = utf8.RuneCountInString(col.Header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	bold := color.New(color.Bold)
	header := make([]string, len(t.columns))
	rule := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = bold.Sprint(pad(col.Header, widths[i], col.Align))
		rule[i] = strings.Repeat("-", widths[i])
	}
	if err := writeLine(w, header); err != nil {
		return err
	}
	if err := writeLine(w, rule); err != nil {
		return err
	}

	for _, row := range t.rows {
		parts := make([]string, len(t.columns))
		for i, col := range t.columns {
			cell := pad(row[i], widths[i], col.Align)
			if col.Color != nil {
				// Color after padding so escape codes do not skew widths.
				cell = strings.Replace(cell, row[i], col.Color(row[i]), 1)
			}
			parts[i] = cell
		}
		if err := writeLine(w, parts); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, width int, align Alignment) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	if align == AlignRight {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

func writeLine(w io.Writer, parts []string) error {
	line := strings.TrimRight(strings.Join(parts, "  "), " ")
	if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}
