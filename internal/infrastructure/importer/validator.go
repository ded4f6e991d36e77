package importer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// FieldType is the expected type of a cell
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
)

// FieldRule validates one mapped field
type FieldRule struct {
	Field     string
	Type      FieldType
	Required  bool
	MaxLength int
	OneOf     []string // compared after Normalize
}

// Record is one data row keyed by field
type Record struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of field
func (r Record) Get(field string) string {
	return r.Values[field]
}

// Records extracts mapped rows from sheet. When full_name is mapped it
// fills first_name (first word) and last_name (the rest) where those are
// empty.
func Records(sheet *Sheet, columns map[string]int) []Record {
	out := make([]Record, 0, len(sheet.Rows))
	for i := range sheet.Rows {
		values := make(map[string]string, len(columns)+2)
		for field, col := range columns {
			values[field] = sheet.Cell(i, col)
		}
		if full := values[FieldFullName]; full != "" {
			first, last, _ := strings.Cut(strings.Join(strings.Fields(full), " "), " ")
			if values["first_name"] == "" {
				values["first_name"] = first
			}
			if values["last_name"] == "" {
				values["last_name"] = last
			}
		}
		out = append(out, Record{Line: sheet.Line(i), Values: values})
	}
	return out
}

// Validate checks rec against rules, reporting each problem to ec.
// It returns false when any rule failed.
func Validate(rec Record, rules []FieldRule, ec *ErrorCollection) bool {
	ok := true
	for _, rule := range rules {
		v := rec.Get(rule.Field)
		if v == "" {
			if rule.Required {
				ec.Add(rec.Line, rule.Field, rule.Field+" is required")
				ok = false
			}
			continue
		}
		if rule.MaxLength > 0 && len([]rune(v)) > rule.MaxLength {
			ec.Addf(rec.Line, rule.Field, "%s must be at most %d characters", rule.Field, rule.MaxLength)
			ok = false
			continue
		}
		if err := checkType(v, rule.Type); err != nil {
			ec.Addf(rec.Line, rule.Field, "%s: %v", rule.Field, err)
			ok = false
			continue
		}
		if len(rule.OneOf) > 0 && !oneOf(v, rule.OneOf) {
			ec.Addf(rec.Line, rule.Field, "%s must be one of %s", rule.Field, strings.Join(rule.OneOf, ", "))
			ok = false
		}
	}
	return ok
}

func checkType(v string, t FieldType) error {
	var err error
	switch t {
	case TypeInt:
		_, err = strconv.Atoi(v)
		if err != nil {
			err = errors.New("not a whole number")
		}
	case TypeDecimal:
		_, err = ParseDecimal(v)
	case TypeDate:
		_, err = ParseDate(v)
	}
	return err
}

func oneOf(v string, allowed []string) bool {
	n := Normalize(v)
	for _, a := range allowed {
		if Normalize(a) == n {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"01-02-06",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate accepts ISO and day-first dates, plus Excel serial day numbers
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 && serial < 2958466 {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, errors.New("not a recognised date")
}

// ParseDecimal accepts "1234.5", "1 234,50" and "1234,5 DT"
func ParseDecimal(v string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',':
			return '.'
		}
		return -1
	}, v)
	if cleaned == "" {
		return decimal.Zero, errors.New("not a number")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}
	return d, nil
}
