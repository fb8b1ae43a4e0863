package crud

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Render prints the current page as an aligned table.
func (e *Engine) Render(w io.Writer) error {
	pv := e.Page()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	labels := make([]string, len(e.tab.Columns))
	for i, c := range e.tab.Columns {
		labels[i] = strings.ToUpper(c.Label)
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))

	if len(pv.Rows) == 0 {
		fmt.Fprintln(tw, "No records found")
	}
	for _, r := range pv.Rows {
		cells := make([]string, len(e.tab.Columns))
		for i, c := range e.tab.Columns {
			cells[i] = strings.ReplaceAll(c.Format(r[c.Key]), "\t", " ")
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if pv.Pages > 1 {
		_, err := fmt.Fprintf(w, "Page %d of %d (%d records)\n", pv.Page+1, pv.Pages, pv.Total)
		return err
	}
	_, err := fmt.Fprintf(w, "%d records\n", pv.Total)
	return err
}
