package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/i474232898/climatenet-analytics/internal/climate"
)

// fileDateLayout names result files DD-MM-YYYY.
const fileDateLayout = "02-01-2006"

// FileWriter writes each day's extremes as a pair of JSON files.
type FileWriter struct {
	dir string
}

// NewFileWriter creates dir if needed.
func NewFileWriter(dir string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FileWriter{dir: dir}, nil
}

// Paths returns the highest/lowest file paths used for date (YYYY-MM-DD).
func (w *FileWriter) Paths(date string) (highest, lowest string, err error) {
	day, err := time.Parse(climate.DateLayout, date)
	if err != nil {
		return "", "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	prefix := day.Format(fileDateLayout)
	return filepath.Join(w.dir, prefix+"_highest.json"), filepath.Join(w.dir, prefix+"_lowest.json"), nil
}

// WriteDay implements climate.DaySink.
func (w *FileWriter) WriteDay(day climate.DayExtremes) error {
	highest, lowest, err := w.Paths(day.Date)
	if err != nil {
		return err
	}
	if err := writeJSON(highest, day.Highest.ByColumn()); err != nil {
		return err
	}
	return writeJSON(lowest, day.Lowest.ByColumn())
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
