package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medrent/backend/internal/domain/bulk"
	"github.com/medrent/backend/internal/domain/shared"
)

// File level failures; row problems go to an ErrorCollection instead
var (
	ErrEmptyFile         = shared.NewDomainError("IMPORT_EMPTY_FILE", "The file is empty")
	ErrInvalidEncoding   = shared.NewDomainError("IMPORT_INVALID_ENCODING", "The file is not valid UTF-8")
	ErrMissingHeader     = shared.NewDomainError("IMPORT_MISSING_HEADER", "The file has no header row")
	ErrUnsupportedFormat = shared.NewDomainError("IMPORT_UNSUPPORTED_FORMAT", "Only .xlsx and .csv files are supported")
	ErrTooManyRows       = shared.NewDomainError("IMPORT_TOO_MANY_ROWS", "The file has too many rows")
	ErrMissingMapping    = shared.NewDomainError("IMPORT_MISSING_MAPPING", "A required field is not mapped to any column")
)

// ErrorCollection accumulates row errors up to a cap; the total keeps counting
type ErrorCollection struct {
	errors    []bulk.RowError
	maxErrors int
	total     int
}

// NewErrorCollection keeps at most maxErrors entries (0 means 100)
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors}
}

// Add records one row error
func (ec *ErrorCollection) Add(row int, column, message string) {
	ec.total++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, bulk.RowError{Row: row, Column: column, Message: message})
	}
}

// Addf records one row error with a formatted message
func (ec *ErrorCollection) Addf(row int, column, format string, args ...any) {
	ec.Add(row, column, fmt.Sprintf(format, args...))
}

// Errors returns the kept errors ordered by row
func (ec *ErrorCollection) Errors() []bulk.RowError {
	out := make([]bulk.RowError, len(ec.errors))
	copy(out, ec.errors)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// TotalCount includes errors dropped past the cap
func (ec *ErrorCollection) TotalCount() int {
	return ec.total
}

// HasErrors reports whether anything was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.total > 0
}

// IsTruncated reports whether errors were dropped
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.total > len(ec.errors)
}

func (ec *ErrorCollection) String() string {
	if ec.total == 0 {
		return "no errors"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s)", ec.total)
	for _, e := range ec.Errors() {
		fmt.Fprintf(&b, "\n  row %d", e.Row)
		if e.Column != "" {
			fmt.Fprintf(&b, " [%s]", e.Column)
		}
		b.WriteString(": " + e.Message)
	}
	if ec.IsTruncated() {
		fmt.Fprintf(&b, "\n  ... %d more", ec.total-len(ec.errors))
	}
	return b.String()
}
