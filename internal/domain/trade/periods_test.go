package trade

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func span(start, end time.Time, amount int64) PeriodSpan {
	return PeriodSpan{StartDate: start, EndDate: end, Amount: decimal.NewFromInt(amount)}
}

func TestValidatePeriods(t *testing.T) {
	t.Run("clean periods produce no issues", func(t *testing.T) {
		periods := []PeriodSpan{
			span(date(2025, 2, 1), date(2025, 2, 28), 100),
			span(date(2025, 1, 1), date(2025, 1, 31), 100),
		}
		issues := ValidatePeriods(periods, nil, nil)
		assert.Empty(t, issues)
		assert.False(t, HasBlockingIssues(issues))
	})

	t.Run("end before start and negative amount are errors", func(t *testing.T) {
		issues := ValidatePeriods([]PeriodSpan{span(date(2025, 1, 10), date(2025, 1, 1), -5)}, nil, nil)
		require.Len(t, issues, 2)
		assert.Equal(t, IssueInvalidDate, issues[0].Type)
		assert.Equal(t, IssueInvalidAmount, issues[1].Type)
		assert.True(t, HasBlockingIssues(issues))
	})

	t.Run("missing dates are errors", func(t *testing.T) {
		issues := ValidatePeriods([]PeriodSpan{{Amount: decimal.Zero}}, nil, nil)
		require.Len(t, issues, 1)
		assert.Equal(t, SeverityError, issues[0].Severity)
	})

	t.Run("periods outside rental bounds are warnings", func(t *testing.T) {
		start, end := date(2025, 1, 5), date(2025, 1, 20)
		issues := ValidatePeriods([]PeriodSpan{span(date(2025, 1, 1), date(2025, 1, 31), 10)}, &start, &end)
		require.Len(t, issues, 2)
		for _, is := range issues {
			assert.Equal(t, SeverityWarning, is.Severity)
		}
		assert.False(t, HasBlockingIssues(issues))
	})

	t.Run("touching periods overlap", func(t *testing.T) {
		a := span(date(2025, 1, 1), date(2025, 1, 31), 10)
		a.ID = "a"
		b := span(date(2025, 1, 31), date(2025, 2, 28), 10)
		b.ID = "b"
		issues := ValidatePeriods([]PeriodSpan{b, a}, nil, nil)
		require.Len(t, issues, 1)
		assert.Equal(t, IssueOverlap, issues[0].Type)
		assert.Equal(t, []string{"a", "b"}, issues[0].Periods)
		assert.Contains(t, issues[0].Message, "0 jour")
	})
}

func TestDetectGaps(t *testing.T) {
	now := date(2025, 6, 1)

	t.Run("no billing periods covers the whole rental", func(t *testing.T) {
		end := date(2025, 1, 10)
		gaps := DetectGaps(nil, date(2025, 1, 1), &end, decimal.NewFromInt(5), now)
		require.Len(t, gaps, 1)
		assert.Equal(t, GapAtStart, gaps[0].Type)
		assert.Equal(t, 10, gaps[0].DurationDays)
		assert.True(t, gaps[0].EstimatedAmount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("start middle and end gaps", func(t *testing.T) {
		end := date(2025, 3, 31)
		periods := []PeriodSpan{
			span(date(2025, 1, 11), date(2025, 1, 31), 100),
			span(date(2025, 2, 11), date(2025, 3, 20), 100),
			{StartDate: date(2025, 3, 21), EndDate: date(2025, 3, 31), IsGapPeriod: true},
		}
		gaps := DetectGaps(periods, date(2025, 1, 1), &end, decimal.NewFromInt(2), now)
		require.Len(t, gaps, 3)

		assert.Equal(t, GapAtStart, gaps[0].Type)
		assert.Equal(t, 10, gaps[0].DurationDays)
		assert.Equal(t, date(2025, 1, 10), gaps[0].EndDate)

		assert.Equal(t, GapInBetween, gaps[1].Type)
		assert.Equal(t, date(2025, 2, 1), gaps[1].StartDate)
		assert.Equal(t, date(2025, 2, 10), gaps[1].EndDate)
		assert.Equal(t, 10, gaps[1].DurationDays)

		assert.Equal(t, GapAtEnd, gaps[2].Type)
		assert.Equal(t, date(2025, 3, 21), gaps[2].StartDate)
		assert.Equal(t, 11, gaps[2].DurationDays)
		assert.True(t, gaps[2].EstimatedAmount.Equal(decimal.NewFromInt(22)))
	})

	t.Run("open ended rental has no end gap", func(t *testing.T) {
		periods := []PeriodSpan{span(date(2025, 1, 1), date(2025, 1, 31), 100)}
		gaps := DetectGaps(periods, date(2025, 1, 1), nil, decimal.Zero, now)
		assert.Empty(t, gaps)
	})

	t.Run("contiguous periods have no middle gap", func(t *testing.T) {
		end := date(2025, 2, 28)
		periods := []PeriodSpan{
			span(date(2025, 1, 1), date(2025, 1, 31), 100),
			span(date(2025, 2, 1), date(2025, 2, 28), 100),
		}
		assert.Empty(t, DetectGaps(periods, date(2025, 1, 1), &end, decimal.Zero, now))
	})
}

func TestCalculateFinancials(t *testing.T) {
	cnam := span(date(2025, 1, 1), date(2025, 1, 31), 300)
	cnam.PaymentMethod = "CNAM"
	cash := span(date(2025, 2, 1), date(2025, 2, 10), 50)
	cash.PaymentMethod = "CASH"
	gap := span(date(2025, 2, 11), date(2025, 2, 15), 20)
	gap.IsGapPeriod = true

	f := CalculateFinancials([]PeriodSpan{cnam, cash, gap})
	assert.True(t, f.TotalAmount.Equal(decimal.NewFromInt(370)))
	assert.True(t, f.CNAMAmount.Equal(decimal.NewFromInt(300)))
	assert.True(t, f.PatientAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, f.GapAmount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 46, f.TotalDays)
	assert.Equal(t, 41, f.BillableDays)
	assert.Equal(t, 5, f.GapDays)
	assert.Equal(t, 3, f.PeriodCount)
	assert.Equal(t, 1, f.CNAMPeriods)
	assert.Equal(t, 1, f.GapPeriods)
}
