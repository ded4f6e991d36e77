package trade

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodSpan is the date/amount view of a rental period used for checks.
// A zero StartDate or EndDate means the date could not be parsed.
type PeriodSpan struct {
	ID            string
	StartDate     time.Time
	EndDate       time.Time
	Amount        decimal.Decimal
	PaymentMethod string
	IsGapPeriod   bool
}

// IssueSeverity tells whether an issue blocks the operation
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// IssueType classifies a period issue
type IssueType string

const (
	IssueOverlap       IssueType = "overlap"
	IssueInvalidDate   IssueType = "invalid_date"
	IssueInvalidAmount IssueType = "invalid_amount"
)

// PeriodIssue is one finding of ValidatePeriods
type PeriodIssue struct {
	Type     IssueType     `json:"type"`
	Message  string        `json:"message"`
	Periods  []string      `json:"periods,omitempty"`
	Severity IssueSeverity `json:"severity"`
}

const day = 24 * time.Hour

// daysBetween counts whole days from a to b, truncated toward zero
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / day)
}

func spanRef(p PeriodSpan, index int) string {
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("period-%d", index)
}

func sortedSpans(periods []PeriodSpan) []PeriodSpan {
	out := make([]PeriodSpan, len(periods))
	copy(out, periods)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

// ValidatePeriods checks each period's dates and amount, its position
// relative to the rental bounds, and overlaps between consecutive periods.
func ValidatePeriods(periods []PeriodSpan, rentalStart, rentalEnd *time.Time) []PeriodIssue {
	issues := make([]PeriodIssue, 0)
	sorted := sortedSpans(periods)

	for i, p := range sorted {
		ref := []string{spanRef(p, i)}
		n := i + 1
		if p.StartDate.IsZero() || p.EndDate.IsZero() {
			issues = append(issues, PeriodIssue{IssueInvalidDate, fmt.Sprintf("Période %d: Dates invalides", n), ref, SeverityError})
			continue
		}
		if p.StartDate.After(p.EndDate) {
			issues = append(issues, PeriodIssue{IssueInvalidDate, fmt.Sprintf("Période %d: Date de fin antérieure à la date de début", n), ref, SeverityError})
		}
		if p.Amount.IsNegative() {
			issues = append(issues, PeriodIssue{IssueInvalidAmount, fmt.Sprintf("Période %d: Montant invalide (%s)", n, p.Amount.String()), ref, SeverityError})
		}
		if rentalStart != nil && p.StartDate.Before(*rentalStart) {
			issues = append(issues, PeriodIssue{IssueInvalidDate, fmt.Sprintf("Période %d: Commence avant le début de location", n), ref, SeverityWarning})
		}
		if rentalEnd != nil && p.EndDate.After(*rentalEnd) {
			issues = append(issues, PeriodIssue{IssueInvalidDate, fmt.Sprintf("Période %d: Se termine après la fin de location", n), ref, SeverityWarning})
		}
	}

	for i := 0; i < len(sorted)-1; i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.EndDate.IsZero() || next.StartDate.IsZero() {
			continue
		}
		if next.StartDate.After(cur.EndDate) {
			continue
		}
		overlap := daysBetween(next.StartDate, cur.EndDate)
		if overlap < 0 {
			overlap = -overlap
		}
		unit := "jour"
		if overlap > 1 {
			unit = "jours"
		}
		issues = append(issues, PeriodIssue{
			Type:     IssueOverlap,
			Message:  fmt.Sprintf("Chevauchement détecté: Période %d et %d (%d %s)", i+1, i+2, overlap, unit),
			Periods:  []string{spanRef(cur, i), spanRef(next, i+1)},
			Severity: SeverityError,
		})
	}
	return issues
}

// HasBlockingIssues reports whether any issue is an error
func HasBlockingIssues(issues []PeriodIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// DetectedGapType locates an uncovered stretch within the rental
type DetectedGapType string

const (
	GapAtStart   DetectedGapType = "start_gap"
	GapInBetween DetectedGapType = "middle_gap"
	GapAtEnd     DetectedGapType = "end_gap"
)

// DetectedGap is an uncovered stretch and its estimated cost
type DetectedGap struct {
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	DurationDays    int             `json:"duration_days"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
	Type            DetectedGapType `json:"type"`
	Description     string          `json:"description"`
}

func pluralDays(n int) string {
	if n > 1 {
		return fmt.Sprintf("%d jours", n)
	}
	return fmt.Sprintf("%d jour", n)
}

// DetectGaps finds the stretches of [rentalStart, rentalEnd] not covered by
// billing periods. Gap periods are ignored. An open-ended rental is checked
// up to now but never reports an end gap.
func DetectGaps(periods []PeriodSpan, rentalStart time.Time, rentalEnd *time.Time, dailyRate decimal.Decimal, now time.Time) []DetectedGap {
	gaps := make([]DetectedGap, 0)
	end := now
	if rentalEnd != nil {
		end = *rentalEnd
	}
	estimate := func(days int) decimal.Decimal {
		return dailyRate.Mul(decimal.NewFromInt(int64(days)))
	}

	billing := make([]PeriodSpan, 0, len(periods))
	for _, p := range periods {
		if !p.IsGapPeriod {
			billing = append(billing, p)
		}
	}
	billing = sortedSpans(billing)

	if len(billing) == 0 {
		d := daysBetween(rentalStart, end) + 1
		return append(gaps, DetectedGap{rentalStart, end, d, estimate(d), GapAtStart, "Aucune période de facturation définie"})
	}

	first := billing[0]
	if first.StartDate.After(rentalStart) {
		if d := daysBetween(rentalStart, first.StartDate); d > 0 {
			gaps = append(gaps, DetectedGap{rentalStart, first.StartDate.Add(-day), d, estimate(d), GapAtStart, "Gap initial de " + pluralDays(d)})
		}
	}

	for i := 0; i < len(billing)-1; i++ {
		gapStart := billing[i].EndDate.Add(day)
		gapEnd := billing[i+1].StartDate.Add(-day)
		if d := daysBetween(gapStart, gapEnd) + 1; d > 0 {
			gaps = append(gaps, DetectedGap{gapStart, gapEnd, d, estimate(d), GapInBetween, "Gap entre périodes de " + pluralDays(d)})
		}
	}

	if rentalEnd != nil {
		last := billing[len(billing)-1]
		if last.EndDate.Before(end) {
			gapStart := last.EndDate.Add(day)
			if d := daysBetween(gapStart, end) + 1; d > 0 {
				gaps = append(gaps, DetectedGap{gapStart, end, d, estimate(d), GapAtEnd, "Gap final de " + pluralDays(d)})
			}
		}
	}
	return gaps
}

// Financials summarizes the money and days carried by a set of periods
type Financials struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CNAMAmount    decimal.Decimal `json:"cnam_amount"`
	PatientAmount decimal.Decimal `json:"patient_amount"`
	GapAmount     decimal.Decimal `json:"gap_amount"`
	TotalDays     int             `json:"total_days"`
	BillableDays  int             `json:"billable_days"`
	GapDays       int             `json:"gap_days"`
	PeriodCount   int             `json:"period_count"`
	CNAMPeriods   int             `json:"cnam_periods"`
	GapPeriods    int             `json:"gap_periods"`
}

// CalculateFinancials totals periods; CNAM periods count toward the CNAM
// amount, other billable periods toward the patient amount.
func CalculateFinancials(periods []PeriodSpan) Financials {
	f := Financials{
		TotalAmount:   decimal.Zero,
		CNAMAmount:    decimal.Zero,
		PatientAmount: decimal.Zero,
		GapAmount:     decimal.Zero,
		PeriodCount:   len(periods),
	}
	for _, p := range periods {
		days := daysBetween(p.StartDate, p.EndDate) + 1
		f.TotalAmount = f.TotalAmount.Add(p.Amount)
		f.TotalDays += days
		switch {
		case p.IsGapPeriod:
			f.GapAmount = f.GapAmount.Add(p.Amount)
			f.GapDays += days
			f.GapPeriods++
		case p.PaymentMethod == "CNAM":
			f.BillableDays += days
			f.CNAMAmount = f.CNAMAmount.Add(p.Amount)
			f.CNAMPeriods++
		default:
			f.BillableDays += days
			f.PatientAmount = f.PatientAmount.Add(p.Amount)
		}
	}
	return f
}
