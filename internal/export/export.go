// Package export flattens a result map into one table row per sample.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"webPageProbeGO/internal/errs"
	"webPageProbeGO/internal/models"
)

// Format selects the table encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Results"

// Header names the exported columns
var Header = []string{
	"URL", "Repetition", "Status", "Load time (ms)", "Size (KB)", "Speed",
	"Images", "Scripts", "CSS", "HTTPS", "Security headers", "SSL grade",
	"Meta description", "H1", "H2", "H3", "Alt text", "ARIA labels",
}

// ParseFormat accepts "csv" or "xlsx", case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", errs.Malformed("unsupported export format %q", s)
	}
}

// ContentType is the MIME type of f
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Write encodes results as a table in format f
func Write(w io.Writer, f Format, results models.ResultMap) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatXLSX:
		return WriteXLSX(w, results)
	default:
		return errs.Malformed("unsupported export format %q", string(f))
	}
}

// Rows returns one row per sample, URLs sorted and samples in stored order
func Rows(results models.ResultMap) [][]string {
	var rows [][]string
	for _, url := range slices.Sorted(maps.Keys(results)) {
		for _, s := range results[url] {
			rows = append(rows, []string{
				url,
				strconv.Itoa(s.Repetition + 1),
				strconv.Itoa(s.StatusCode),
				formatFloat(s.LoadTimeMS),
				formatFloat(s.SizeKB),
				string(s.SpeedRating),
				strconv.Itoa(s.ImageCount),
				strconv.Itoa(s.ScriptCount),
				strconv.Itoa(s.CSSCount),
				yesNo(s.HTTPSEnabled),
				strconv.Itoa(s.SecurityHeaderCount),
				string(s.SSLGrade),
				yesNo(s.MetaDescription != nil && *s.MetaDescription != ""),
				strconv.Itoa(s.H1Count),
				strconv.Itoa(s.H2Count),
				strconv.Itoa(s.H3Count),
				s.AltTextImages,
				strconv.Itoa(s.AriaLabelCount),
			})
		}
	}
	return rows
}

// WriteCSV writes the header and rows as CSV
func WriteCSV(w io.Writer, results models.ResultMap) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(results)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes the header and rows into a single-sheet workbook
func WriteXLSX(w io.Writer, results models.ResultMap) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, row := range Rows(results) {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", n, err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", n, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
