package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pv-sizing/internal/model"
)

// LoadSeriesCSV reads a time series from a CSV file with a header row.
// column selects the value column by header name (case-insensitive); empty
// selects the last column, which suits both single-column files and
// timestamp,value exports. Lines starting with '#' are skipped.
func LoadSeriesCSV(path, column string, stepHours float64) (model.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.TimeSeries{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return model.TimeSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) < 2 {
		return model.TimeSeries{}, fmt.Errorf("%w: %s has no data rows", model.ErrInvalidInput, path)
	}

	header := records[0]
	col := len(header) - 1
	if column != "" {
		col = -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), column) {
				col = i
				break
			}
		}
		if col < 0 {
			return model.TimeSeries{}, fmt.Errorf("%w: column %q not found in %s", model.ErrInvalidInput, column, path)
		}
	}

	samples := make([]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		if col >= len(rec) {
			return model.TimeSeries{}, fmt.Errorf("%w: %s row %d has %d columns, want > %d", model.ErrInvalidInput, path, i+2, len(rec), col)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
		if err != nil {
			return model.TimeSeries{}, fmt.Errorf("%w: %s row %d: %v", model.ErrInvalidInput, path, i+2, err)
		}
		samples = append(samples, v)
	}

	return model.NewTimeSeries(stepHours, samples)
}
