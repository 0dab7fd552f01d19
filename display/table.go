package display

import (
	"io"

	"github.com/pterm/pterm"

	"github.com/teranos/filestore/errors"
)

// Table collects rows under a header and renders them with pterm.
type Table struct {
	header []string
	rows   [][]string
}

// NewTable starts a table with the given column names.
func NewTable(columns ...string) *Table {
	return &Table{header: columns}
}

// Row appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) Row(cells ...string) {
	row := make([]string, len(t.header))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows added.
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table to w, or a short notice when there are no rows.
func (t *Table) Render(w io.Writer, empty string) error {
	if len(t.rows) == 0 {
		pterm.Info.WithWriter(w).Println(empty)
		return nil
	}

	data := make(pterm.TableData, 0, len(t.rows)+1)
	data = append(data, t.header)
	data = append(data, t.rows...)

	err := pterm.DefaultTable.
		WithHasHeader().
		WithWriter(w).
		WithData(data).
		Render()
	return errors.Wrap(err, "render table")
}
