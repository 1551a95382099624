package storage

import (
	"encoding/csv"
	"fmt"
	"os"

	"table-scraper/pkg/models"
)

// CSVSink implements engine.Sink by writing the whole batch to one CSV file.
type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

// Save creates or truncates Path and writes the header followed by one row per record.
func (s *CSVSink) Save(batch []models.Record) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.Path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.Header); err != nil {
		return err
	}
	for _, r := range batch {
		if err := w.Write(r.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	return f.Close()
}
