package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Format selects the tabular output format.
type Format string

const (
	FormatTSV Format = "tsv"
	FormatCSV Format = "csv"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTSV, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown report format %q (want tsv or csv)", s)
	}
}

// Write writes each report to dir as <name>.<format> with the field list as
// header, and returns the written paths. Empty reports still produce a file
// with a header row so downstream consumers always find their inputs.
func Write(reports []*Report, format Format, dir string) ([]string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	paths := make([]string, 0, len(reports))
	for _, r := range reports {
		path := filepath.Join(dir, r.Name+"."+string(format))
		if err := writeOne(r, format, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeOne(r *Report, format Format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if format == FormatTSV {
		w.Comma = '\t'
	}

	if err := w.Write(r.Fields); err != nil {
		f.Close()
		return fmt.Errorf("write report header %s: %w", path, err)
	}
	for _, row := range r.Records {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write report row %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush report %s: %w", path, err)
	}
	return f.Close()
}
