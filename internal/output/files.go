package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pankaj-dahiya-devops/awsinv/internal/config"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// File names written by WriteFiles.
const (
	ReportFileName = "aws_resources_report.json"
	CSVFileName    = "ec2_inventory.csv"
	XLSXFileName   = "ec2_inventory.xlsx"
)

// WriteFiles creates dir and writes report in each requested file format.
// The table format is rendered to a terminal, not a file, and is skipped
// here. It returns the paths written, in format order.
func WriteFiles(dir string, report *models.Report, formats []string, pretty bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	var rows []EC2Row
	written := make([]string, 0, len(formats))
	seen := make(map[string]bool, len(formats))

	for _, format := range formats {
		if seen[format] {
			continue
		}
		seen[format] = true

		switch format {
		case config.FormatJSON:
			path := filepath.Join(dir, ReportFileName)
			if err := writeFile(path, func(f *os.File) error { return WriteJSON(f, report, pretty) }); err != nil {
				return written, err
			}
			written = append(written, path)

		case config.FormatCSV:
			if rows == nil {
				rows = EC2Rows(report)
			}
			path := filepath.Join(dir, CSVFileName)
			if err := writeFile(path, func(f *os.File) error { return WriteCSV(f, rows) }); err != nil {
				return written, err
			}
			written = append(written, path)

		case config.FormatXLSX:
			if rows == nil {
				rows = EC2Rows(report)
			}
			path := filepath.Join(dir, XLSXFileName)
			if err := WriteXLSX(path, rows); err != nil {
				return written, err
			}
			written = append(written, path)

		case config.FormatTable:
			// rendered to stdout by the caller

		default:
			return written, fmt.Errorf("unsupported format %q", format)
		}
	}
	return written, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
