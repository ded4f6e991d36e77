package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDisplayStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		v := now.AddDate(0, 0, days)
		return &v
	}

	tests := []struct {
		name   string
		start  time.Time
		end    *time.Time
		stored RentalStatus
		want   DisplayStatus
	}{
		{"ended in the past", now.AddDate(0, -2, 0), at(-1), RentalStatusActive, DisplayExpired},
		{"starts later", now.AddDate(0, 0, 3), at(40), RentalStatusActive, DisplayScheduled},
		{"ends within a week", now.AddDate(0, -1, 0), at(5), RentalStatusActive, DisplayExpiringSoon},
		{"ends later", now.AddDate(0, -1, 0), at(30), RentalStatusActive, DisplayActive},
		{"open ended", now.AddDate(0, -1, 0), nil, RentalStatusActive, DisplayActive},
		{"cancelled kept", now.AddDate(0, -1, 0), at(-10), RentalStatusCancelled, DisplayCancelled},
		{"completed kept", now.AddDate(0, -1, 0), at(-10), RentalStatusCompleted, DisplayCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRental("RNT-0001", uuid.New(), uuid.New(), tt.start, nil, uuid.New())
			require.NoError(t, err)
			r.EndDate = tt.end
			r.Status = tt.stored
			assert.Equal(t, tt.want, DeriveDisplayStatus(r, now))
		})
	}
}

func TestDerivePeriodState(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	p := &RentalPeriod{StartDate: now.AddDate(0, 0, 1), EndDate: now.AddDate(0, 1, 0)}
	assert.Equal(t, PeriodUpcoming, DerivePeriodState(p, now))

	p.StartDate = now.AddDate(0, -1, 0)
	assert.Equal(t, PeriodActive, DerivePeriodState(p, now))

	p.EndDate = now.AddDate(0, 0, -1)
	assert.Equal(t, PeriodCompleted, DerivePeriodState(p, now))
}

func TestRental_Update(t *testing.T) {
	start := time.Now().AddDate(0, -1, 0)
	r, err := NewRental("RNT-0002", uuid.New(), uuid.New(), start, nil, uuid.New())
	require.NoError(t, err)
	assert.True(t, r.IsOpenEnded())

	before := start.AddDate(0, 0, -1)
	assert.Error(t, r.Update("", &before, nil))
	assert.Error(t, r.Update(RentalStatus("LOST"), nil, nil))

	end := start.AddDate(0, 2, 0)
	notes := "retour prévu"
	require.NoError(t, r.Update(RentalStatusCompleted, &end, &notes))
	assert.Equal(t, RentalStatusCompleted, r.Status)
	assert.Equal(t, notes, r.Notes)
	assert.False(t, r.IsOpenEnded())
}

func TestNewRentalPeriod(t *testing.T) {
	start := time.Now()
	_, err := NewRentalPeriod(uuid.New(), start, start.AddDate(0, 0, -1), decimalZero(), "CASH")
	assert.Error(t, err)
	p, err := NewRentalPeriod(uuid.New(), start, start.AddDate(0, 1, 0), decimalZero(), "CASH")
	require.NoError(t, err)
	assert.Equal(t, "CASH", p.AsSpan().PaymentMethod)
}
