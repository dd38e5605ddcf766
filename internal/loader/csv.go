// Package loader reads channel statistics tables from CSV sources.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/voyagen/tubestats/internal/models"
)

// ParseCSV reads a CSV table from r. name identifies the source in errors.
// The header is checked once for every required column before any row is
// parsed; columns not in models.RequiredColumns are ignored.
func ParseCSV(r io.Reader, name string) (*models.ChannelTable, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Source: name, Err: ErrEmptySource}
	}
	if err != nil {
		return nil, &LoadError{Source: name, Err: fmt.Errorf("read header: %w", err)}
	}

	index, err := columnIndex(header, name)
	if err != nil {
		return nil, err
	}
	// Field count is fixed by the header; short or long rows are malformed.
	reader.FieldsPerRecord = len(header)

	var records []models.ChannelRecord
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, rowError(name, row, "", perr.Err)
			}
			return nil, &LoadError{Source: name, Row: row, Err: err}
		}
		rec, err := parseRow(fields, index, name, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return models.NewChannelTable(records), nil
}

// LoadFile opens path and parses it as a CSV channel table.
func LoadFile(path string) (*models.ChannelTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer f.Close()
	return ParseCSV(f, path)
}

// columnIndex maps each required column to its position in header, failing
// with the full list of absent columns.
func columnIndex(header []string, name string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	index := make(map[string]int, len(models.RequiredColumns))
	var missing []string
	for _, col := range models.RequiredColumns {
		i, ok := pos[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = i
	}
	if len(missing) > 0 {
		return nil, &LoadError{Source: name, Missing: missing}
	}
	return index, nil
}

func parseRow(fields []string, index map[string]int, name string, row int) (models.ChannelRecord, error) {
	field := func(col string) string {
		return strings.TrimSpace(fields[index[col]])
	}

	rec := models.ChannelRecord{
		ChannelName: field(models.ColumnChannelName),
		Category:    field(models.ColumnCategory),
		Country:     field(models.ColumnCountry),
	}

	ints := []struct {
		col string
		dst *int64
	}{
		{models.ColumnSubscribers, &rec.Subscribers},
		{models.ColumnTotalVideos, &rec.TotalVideos},
		{models.ColumnTotalViews, &rec.TotalViews},
	}
	for _, f := range ints {
		v, err := parseCount(field(f.col))
		if err != nil {
			return rec, rowError(name, row, f.col, err)
		}
		*f.dst = v
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{models.ColumnMonthlyEarnings, &rec.MonthlyEarnings},
		{models.ColumnEngagementRate, &rec.EngagementRate},
	}
	for _, f := range floats {
		v, err := parseNumber(field(f.col))
		if err != nil {
			return rec, rowError(name, row, f.col, err)
		}
		*f.dst = v
	}

	if err := ValidateRecord(rec); err != nil {
		var ferr *FieldError
		if errors.As(err, &ferr) {
			return rec, rowError(name, row, ferr.Column, ferr.Err)
		}
		return rec, rowError(name, row, "", err)
	}
	return rec, nil
}

// parseCount parses a non-negative integer. Integral float forms such as
// "1200.0" are accepted.
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("out of range: %q", s)
	}
	return int64(f), nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return f, nil
}
