package engine

import (
	"errors"
	"fmt"

	"github.com/voyagen/tubestats/internal/models"
)

// ErrUnknownColumn is returned when a projection names a column the table
// does not have.
var ErrUnknownColumn = errors.New("unknown column")

// Projection is a row-ordered view of selected columns.
type Projection struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ProjectColumns selects columns from every row of subset, preserving row
// order. An empty column list projects models.DisplayColumns.
func ProjectColumns(subset *models.ChannelTable, columns []string) (Projection, error) {
	if len(columns) == 0 {
		columns = models.DisplayColumns
	}
	for _, c := range columns {
		if !models.IsColumn(c) {
			return Projection{}, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	cols := append([]string(nil), columns...)

	rows := make([][]any, 0, subset.Len())
	subset.Each(func(_ int, r models.ChannelRecord) {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i], _ = r.Value(c)
		}
		rows = append(rows, row)
	})
	return Projection{Columns: cols, Rows: rows}, nil
}
