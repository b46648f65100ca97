// Package ingest decodes wide monthly cost tables from spreadsheets and CSV
// files into rows the analytics core can reshape.
package ingest

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/godilite/workforce-analytics/internal/analytics"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts a format name or a file extension, with or without
// the leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "xlsx", "xlsm":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// FormatFromFilename infers the format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	return ParseFormat(filepath.Ext(name))
}

// Table is a decoded wide table: period column names in file order and one
// raw row per employee line.
type Table struct {
	PeriodColumns []string
	Rows          []analytics.RawRow
}

// Read decodes r according to format. sheet only applies to workbooks; an
// empty sheet selects the first one.
func Read(r io.Reader, format Format, sheet string) (*Table, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(r, sheet)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// FromGrid interprets grid[0] as the header. Every column other than the
// identifier columns is a period column; blank header cells are ignored.
// Fully blank lines are skipped.
func FromGrid(grid [][]string) (*Table, error) {
	if len(grid) == 0 {
		return nil, &analytics.ConfigurationError{Reason: "empty table", Required: analytics.RequiredColumns}
	}

	employeeIdx, subgroupIdx := -1, -1
	var periodIdx []int
	var periodColumns []string
	for i, h := range grid[0] {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch name {
		case analytics.ColumnEmployee:
			employeeIdx = i
		case analytics.ColumnSubgroup:
			subgroupIdx = i
		case "":
		default:
			periodIdx = append(periodIdx, i)
			periodColumns = append(periodColumns, name)
		}
	}
	if employeeIdx < 0 || subgroupIdx < 0 {
		return nil, &analytics.ConfigurationError{Reason: "missing required columns", Required: analytics.RequiredColumns}
	}
	if len(periodColumns) == 0 {
		return nil, &analytics.ConfigurationError{Reason: "no period columns detected", Required: analytics.RequiredColumns}
	}

	table := &Table{PeriodColumns: periodColumns}
	for n, line := range grid[1:] {
		if blank(line) {
			continue
		}
		lineNo := n + 2

		row := analytics.RawRow{
			Employee: strings.TrimSpace(cell(line, employeeIdx)),
			Subgroup: strings.TrimSpace(cell(line, subgroupIdx)),
			Costs:    make([]analytics.NullFloat, len(periodIdx)),
		}
		if row.Employee == "" {
			return nil, &analytics.ConfigurationError{
				Reason: fmt.Sprintf("line %d: empty %s", lineNo, analytics.ColumnEmployee),
			}
		}
		for j, idx := range periodIdx {
			cost, err := ParseCost(cell(line, idx))
			if err != nil {
				return nil, &analytics.ConfigurationError{
					Reason: fmt.Sprintf("line %d, column %q: %v", lineNo, periodColumns[j], err),
				}
			}
			row.Costs[j] = cost
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseCost reads a cost cell. Empty cells are undefined. Currency signs and
// space thousand separators are dropped. When both "," and "." appear, the
// last one is the decimal separator. NaN and infinities are rejected.
func ParseCost(s string) (analytics.NullFloat, error) {
	s = strings.NewReplacer("€", "", " ", "", "\u00a0", "", "\u202f", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return analytics.Undefined, nil
	}
	raw := s
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma > dot:
		s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return analytics.Undefined, fmt.Errorf("not a number: %q", raw)
	}
	return analytics.Defined(v), nil
}

func cell(line []string, i int) string {
	if i < len(line) {
		return line[i]
	}
	return ""
}

func blank(line []string) bool {
	for _, c := range line {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
