package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCNAMBond(t *testing.T) {
	b, err := NewCNAMBond(uuid.New(), BondTypeCPAP, "", decimal.NewFromInt(1200))
	require.NoError(t, err)
	assert.Equal(t, CNAMStatusPending, b.Status)
	assert.Equal(t, BondCategoryLocation, b.Category)
	assert.Equal(t, 1, b.CoveredMonths)
	assert.Equal(t, DefaultRenewalReminderDays, b.RenewalReminderDays)

	_, err = NewCNAMBond(uuid.Nil, BondTypeCPAP, "", decimal.Zero)
	assert.Error(t, err)
}

func TestCNAMBond_RemainingMonths(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b, err := NewCNAMBond(uuid.New(), BondTypeMasque, BondCategoryLocation, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, 0, b.RemainingMonths(now))

	end := now.AddDate(0, 0, 61)
	b.EndDate = &end
	assert.Equal(t, 3, b.RemainingMonths(now))

	end = now.AddDate(0, 0, 30)
	b.EndDate = &end
	assert.Equal(t, 1, b.RemainingMonths(now))

	end = now.AddDate(0, 0, -5)
	b.EndDate = &end
	assert.Equal(t, 0, b.RemainingMonths(now))
}

func TestCNAMBond_NeedsRenewalReminder(t *testing.T) {
	now := time.Now()
	b, err := NewCNAMBond(uuid.New(), BondTypeCPAP, BondCategoryLocation, decimal.Zero)
	require.NoError(t, err)
	end := now.AddDate(0, 0, 10)
	b.EndDate = &end

	assert.False(t, b.NeedsRenewalReminder(now, 30*24*time.Hour))
	b.Status = CNAMStatusApproved
	assert.True(t, b.NeedsRenewalReminder(now, 30*24*time.Hour))
	assert.False(t, b.NeedsRenewalReminder(now, 5*24*time.Hour))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, BondTypeCPAP, ParseBondType("cpap"))
	assert.Equal(t, BondTypeAutre, ParseBondType("???"))
	assert.Equal(t, CNAMStatusApproved, ParseCNAMStatus("approuve"))
	assert.Equal(t, CNAMStatusPending, ParseCNAMStatus(""))
}

func TestCNAMDossier_AdvanceTo(t *testing.T) {
	by := uuid.New()
	d, err := NewCNAMDossier("CNAM-0001", uuid.New(), uuid.New(), BondTypeMasque, CNAMStatusPending, 0, by)
	require.NoError(t, err)
	assert.Equal(t, 1, d.CurrentStep)
	assert.Equal(t, DefaultDossierSteps, d.TotalSteps)
	require.Len(t, d.StepHistory, 1)
	assert.Nil(t, d.StepHistory[0].FromStep)

	entry, err := d.AdvanceTo(3, CNAMStatusApproved, "accord reçu", by)
	require.NoError(t, err)
	assert.Equal(t, 1, *entry.FromStep)
	assert.Equal(t, 3, entry.ToStep)
	assert.Equal(t, CNAMStatusPending, *entry.FromStatus)
	assert.Equal(t, CNAMStatusApproved, d.Status)

	_, err = d.AdvanceTo(8, CNAMStatusApproved, "", by)
	assert.Error(t, err)
	_, err = d.AdvanceTo(0, CNAMStatusApproved, "", by)
	assert.Error(t, err)
}
