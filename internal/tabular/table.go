// Package tabular reads uploaded light-curve files into named columns and
// identifies which column is the time axis and which is the flux axis.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Parsing limits.
const (
	minColumns = 2
	minRows    = 11 // need more than 10 data rows
)

// delimiters tried in order when sniffing the file format.
var delimiters = []rune{',', '\t', ';', '|', ' '}

// ErrUnparseable is returned when no delimiter yields a usable table.
var ErrUnparseable = errors.New("could not parse file or insufficient data")

// Table is a parsed tabular file: named columns of raw string cells.
// Cells may be empty or non-numeric; numeric access is on demand.
type Table struct {
	Names   []string
	columns [][]string
	index   map[string]int
}

// ReadTable parses raw file content into a Table, sniffing the delimiter.
// Lines starting with '#' are comments; rows with a mismatched field count
// are skipped. A parse is accepted once it yields at least 2 columns and
// more than 10 data rows.
func ReadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	for _, sep := range delimiters {
		t, err := parseWith(string(data), sep)
		if err != nil {
			continue
		}
		if len(t.Names) >= minColumns && t.RowCount() >= minRows {
			return t, nil
		}
	}
	return nil, ErrUnparseable
}

// parseWith parses content using a single delimiter.
func parseWith(content string, sep rune) (*Table, error) {
	var records [][]string

	if sep == ' ' {
		// encoding/csv cannot collapse repeated spaces; split manually.
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			records = append(records, strings.Fields(line))
		}
	} else {
		reader := csv.NewReader(strings.NewReader(content))
		reader.Comma = sep
		reader.Comment = '#'
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
		reader.TrimLeadingSpace = true

		for {
			rec, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				// skip malformed rows, keep going
				continue
			}
			records = append(records, rec)
		}
	}

	if len(records) < 2 {
		return nil, ErrUnparseable
	}

	header := records[0]
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	t := &Table{
		Names:   names,
		columns: make([][]string, len(names)),
		index:   make(map[string]int, len(names)),
	}
	for i, name := range names {
		t.index[name] = i
	}

	for _, rec := range records[1:] {
		if len(rec) != len(names) {
			continue
		}
		for i, cell := range rec {
			t.columns[i] = append(t.columns[i], strings.TrimSpace(cell))
		}
	}
	return t, nil
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0])
}

// Column returns the raw cells of a named column, or nil if absent.
func (t *Table) Column(name string) []string {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.columns[i]
}

// NumericColumn converts a named column to float64, with NaN for cells that
// are empty or non-numeric. Returns nil if the column does not exist.
func (t *Table) NumericColumn(name string) []float64 {
	raw := t.Column(name)
	if raw == nil {
		return nil
	}
	values := make([]float64, len(raw))
	for i, cell := range raw {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			values[i] = math.NaN()
			continue
		}
		values[i] = v
	}
	return values
}

// numericValues returns only the parseable values of a column, in order.
func (t *Table) numericValues(name string) []float64 {
	var values []float64
	for _, v := range t.NumericColumn(name) {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}
