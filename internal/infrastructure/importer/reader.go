// Package importer reads patient and device spreadsheets and maps their
// columns onto domain fields.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// DefaultMaxRows bounds the data rows read from one file
const DefaultMaxRows = 5000

// Sheet is a decoded spreadsheet: one header row plus data rows.
// Lines holds the 1-based file line of each data row.
type Sheet struct {
	Headers []string
	Rows    [][]string
	Lines   []int
}

// Cell returns row[col] or "" when the row is short
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// Line returns the file line of data row i
func (s *Sheet) Line(i int) int {
	if i >= 0 && i < len(s.Lines) {
		return s.Lines[i]
	}
	return i + 2
}

// ReadSpreadsheet decodes an .xlsx or .csv file chosen by extension
func ReadSpreadsheet(r io.Reader, fileName string, maxRows int) (*Sheet, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, maxRows)
	case ".csv", ".txt":
		return ReadCSV(r, maxRows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ReadXLSX reads the first worksheet of a workbook
func ReadXLSX(r io.Reader, maxRows int) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	return buildSheet(rows, nil, maxRows)
}

// ReadCSV reads comma or semicolon separated UTF-8 text. A UTF-8 BOM is
// skipped and the delimiter is taken from the header line.
func ReadCSV(r io.Reader, maxRows int) (*Sheet, error) {
	br := bufio.NewReader(r)
	if bom, _ := br.Peek(3); bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	data, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var rows [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
		if len(rows) > maxRows+1 {
			return nil, ErrTooManyRows
		}
	}
	return buildSheet(rows, lines, maxRows)
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// buildSheet trims cells, drops blank rows and takes the first non-blank
// row as the header. rawLines holds the file line of each raw row; nil means
// row n sits on line n+1.
func buildSheet(raw [][]string, rawLines []int, maxRows int) (*Sheet, error) {
	var rows [][]string
	var lines []int
	for n, r := range raw {
		trimmed := make([]string, len(r))
		blank := true
		for i, c := range r {
			trimmed[i] = strings.TrimSpace(c)
			if trimmed[i] != "" {
				blank = false
			}
		}
		if !blank {
			line := n + 1
			if rawLines != nil {
				line = rawLines[n]
			}
			rows = append(rows, trimmed)
			lines = append(lines, line)
		}
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}
	if len(rows)-1 > maxRows {
		return nil, ErrTooManyRows
	}
	return &Sheet{Headers: rows[0], Rows: rows[1:], Lines: lines[1:]}, nil
}
