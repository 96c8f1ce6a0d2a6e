package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"sqlassist/internal/adapter"
)

// Frame is a CSV file held in memory with typed columns
type Frame struct {
	Columns []adapter.ColumnDef
	Rows    [][]any
}

// ReadCSV reads a header row followed by records.
// Column types are inferred from every non-empty cell; empty cells become NULL.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0 // header sets the count
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			return nil, fmt.Errorf("csv header: column %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("csv header: duplicate column %q", name)
		}
		seen[key] = true
		names[i] = name
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		records = append(records, record)
	}

	frame := &Frame{
		Columns: make([]adapter.ColumnDef, len(names)),
		Rows:    make([][]any, len(records)),
	}
	for i, name := range names {
		frame.Columns[i] = adapter.ColumnDef{Name: name, Type: inferType(records, i)}
	}
	for r, record := range records {
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = convert(cell, frame.Columns[i].Type)
		}
		frame.Rows[r] = row
	}
	return frame, nil
}

func inferType(records [][]string, col int) adapter.ColumnType {
	isInt, isReal, nonEmpty := true, true, false
	for _, record := range records {
		cell := strings.TrimSpace(record[col])
		if cell == "" {
			continue
		}
		nonEmpty = true
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if !isInt {
			f, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				isReal = false
				break
			}
		}
	}
	switch {
	case !nonEmpty:
		return adapter.ColumnText
	case isInt:
		return adapter.ColumnInteger
	case isReal:
		return adapter.ColumnReal
	default:
		return adapter.ColumnText
	}
}

func convert(cell string, t adapter.ColumnType) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	switch t {
	case adapter.ColumnInteger:
		v, _ := strconv.ParseInt(trimmed, 10, 64)
		return v
	case adapter.ColumnReal:
		v, _ := strconv.ParseFloat(trimmed, 64)
		return v
	default:
		return cell
	}
}
