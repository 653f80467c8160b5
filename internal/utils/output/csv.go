package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/law-makers/elicense/pkg/models"
)

// SaveRecordsCSV writes the aggregate, header row first, to a CSV file.
// The parent directory is created when missing. An aggregate without rows
// still produces a header-only file.
func SaveRecordsCSV(agg *models.Aggregate, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(agg.Header); err != nil {
		return err
	}
	for _, row := range agg.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
