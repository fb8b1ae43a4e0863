package crud

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hrmspro/hrms/internal/catalog"
)

var ErrNothingToExport = errors.New("no data to export")

// WriteCSV writes the filtered rows with a header of column labels.
func (e *Engine) WriteCSV(w io.Writer) (int, error) {
	rows := e.Filtered()
	if len(rows) == 0 {
		return 0, ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(e.tab.Columns))
	for i, c := range e.tab.Columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return 0, err
	}
	for _, r := range rows {
		line := make([]string, len(e.tab.Columns))
		for i, c := range e.tab.Columns {
			line[i] = catalog.Text(r[c.Key])
		}
		if err := cw.Write(line); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}

// Export writes {resource}_export.csv into dir and returns its path.
func (e *Engine) Export(dir string) (string, error) {
	if len(e.Filtered()) == 0 {
		e.notifier.Warning("No data to export")
		return "", ErrNothingToExport
	}

	path := filepath.Join(dir, e.tab.ExportFilename())
	f, err := os.Create(path)
	if err != nil {
		e.notifier.Error("Export failed: " + err.Error())
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	n, err := e.WriteCSV(f)
	if err != nil {
		e.notifier.Error("Export failed: " + err.Error())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	e.notifier.Info(fmt.Sprintf("Exported %d records", n))
	return path, nil
}
