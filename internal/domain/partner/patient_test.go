package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatient(t *testing.T) {
	t.Run("creates patient", func(t *testing.T) {
		p, err := NewPatient("PAT-0001", " Leila ", "Mansour", "22123456")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "PAT-0001", p.PatientCode)
		assert.Equal(t, "Leila Mansour", p.FullName())
	})

	t.Run("requires names", func(t *testing.T) {
		_, err := NewPatient("PAT-0001", "", "Mansour", "22123456")
		assert.Error(t, err)
	})

	t.Run("requires telephone", func(t *testing.T) {
		_, err := NewPatient("PAT-0001", "Leila", "Mansour", "  ")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Telephone")
	})
}

func TestPatient_SetCoverage(t *testing.T) {
	p, err := NewPatient("PAT-0002", "Karim", "Jaziri", "98000000")
	require.NoError(t, err)

	require.NoError(t, p.SetCoverage("123456", BeneficiaryConjoint, AffiliationCNRPS))
	assert.Equal(t, BeneficiaryConjoint, p.BeneficiaryType)

	assert.Error(t, p.SetCoverage("", BeneficiaryType("OTHER"), ""))
	assert.Error(t, p.SetCoverage("", "", Affiliation("OTHER")))
}

func TestNewCompany(t *testing.T) {
	c, err := NewCompany("COM-0001", "Clinique El Amen")
	require.NoError(t, err)
	assert.Equal(t, "Clinique El Amen", c.CompanyName)

	_, err = NewCompany("COM-0002", "   ")
	assert.Error(t, err)
}

func TestNewPatientHistory(t *testing.T) {
	patientID, userID, itemID := uuid.New(), uuid.New(), uuid.New()
	h := NewPatientHistory(patientID, userID, HistoryRental, itemID, "Rental", nil)
	assert.Equal(t, HistoryRental, h.ActionType)
	require.NotNil(t, h.RelatedItemID)
	assert.Equal(t, itemID, *h.RelatedItemID)
	assert.NotNil(t, h.Details)
}
