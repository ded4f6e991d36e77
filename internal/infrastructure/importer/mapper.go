package importer

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Confidence levels of the header heuristics
const (
	ConfidenceExact    = 1.0
	ConfidenceContains = 0.8
	confidenceOverlap  = 0.5
)

// TargetField is a domain field a column can be mapped to
type TargetField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Aliases  []string `json:"aliases,omitempty"`
}

// ColumnMapping assigns a column to a field
type ColumnMapping struct {
	Column     string  `json:"column"`
	Index      int     `json:"index"`
	Field      string  `json:"field"`
	Confidence float64 `json:"confidence"`
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a header for comparison: lower case, accents removed,
// punctuation turned into single spaces.
func Normalize(s string) string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	var b strings.Builder
	space := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Score rates how well header names field, 0 meaning no match
func Score(header string, field TargetField) float64 {
	h := Normalize(header)
	if h == "" {
		return 0
	}
	best := 0.0
	for _, alias := range candidates(field) {
		a := Normalize(alias)
		if a == "" {
			continue
		}
		var s float64
		switch {
		case h == a:
			s = ConfidenceExact
		case containsWords(h, a):
			s = ConfidenceContains
		default:
			s = confidenceOverlap * tokenOverlap(h, a)
		}
		if s > best {
			best = s
		}
	}
	return best
}

func candidates(f TargetField) []string {
	out := make([]string, 0, len(f.Aliases)+2)
	out = append(out, f.Key, f.Label)
	return append(out, f.Aliases...)
}

// containsWords reports whether alias appears in header on word boundaries,
// so "nom" matches "nom patient" but not "prenom".
func containsWords(header, alias string) bool {
	return strings.Contains(" "+header+" ", " "+alias+" ")
}

// tokenOverlap is the share of alias tokens present in the header
func tokenOverlap(header, alias string) float64 {
	aliasTokens := strings.Fields(alias)
	if len(aliasTokens) == 0 {
		return 0
	}
	present := make(map[string]bool)
	for _, t := range strings.Fields(header) {
		present[t] = true
	}
	hits := 0
	for _, t := range aliasTokens {
		if present[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(aliasTokens))
}

// ProposeMapping matches headers to fields. Candidate pairs are taken
// highest confidence first; each column and each field is used at most
// once. Ties go to the leftmost column, then to the field listed first.
func ProposeMapping(headers []string, fields []TargetField) []ColumnMapping {
	type candidate struct {
		col, field int
		score float64
	}
	var cands []candidate
	for ci, h := range headers {
		for fi, f := range fields {
			if s := Score(h, f); s > 0 {
				cands = append(cands, candidate{ci, fi, s})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if cands[i].col != cands[j].col {
			return cands[i].col < cands[j].col
		}
		return cands[i].field < cands[j].field
	})

	usedCol := make(map[int]bool)
	usedField := make(map[int]bool)
	var out []ColumnMapping
	for _, c := range cands {
		if usedCol[c.col] || usedField[c.field] {
			continue
		}
		usedCol[c.col] = true
		usedField[c.field] = true
		out = append(out, ColumnMapping{
			Column:     headers[c.col],
			Index:      c.col,
			Field:      fields[c.field].Key,
			Confidence: c.score,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ResolveMapping turns a field→column-name mapping into field→column-index.
// Unknown columns or fields are ignored; required fields must be present,
// except that full_name stands in for first_name and last_name.
func ResolveMapping(headers []string, fields []TargetField, mapping map[string]string) (map[string]int, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Key] = true
	}
	out := make(map[string]int, len(mapping))
	for field, column := range mapping {
		if !known[field] {
			continue
		}
		if i, ok := index[column]; ok {
			out[field] = i
		}
	}
	_, hasFullName := out[FieldFullName]
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if _, ok := out[f.Key]; ok {
			continue
		}
		if hasFullName && (f.Key == "first_name" || f.Key == "last_name") {
			continue
		}
		return nil, ErrMissingMapping
	}
	return out, nil
}

// MappingFromProposal converts proposed mappings to the field→column form
func MappingFromProposal(proposed []ColumnMapping) map[string]string {
	out := make(map[string]string, len(proposed))
	for _, m := range proposed {
		out[m.Field] = m.Column
	}
	return out
}
