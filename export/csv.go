package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// writeCSV writes <dir>/<Table>.csv with a header row and a leading row
// index column, the layout downstream consumers of the old exports expect.
func (e *Exporter) writeCSV(ds Dataset) error {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return fmt.Errorf("creating results folder: %w", err)
	}

	path := filepath.Join(e.dir, ds.Table+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, 0, len(ds.Columns)+1)
	header = append(header, "")
	header = append(header, ds.Columns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range ds.Rows {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.Itoa(i))
		for _, value := range row {
			record = append(record, formatValue(value))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

func formatValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
