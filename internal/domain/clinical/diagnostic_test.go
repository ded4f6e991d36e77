package clinical

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiagnostic(t *testing.T) {
	followUp := time.Now().AddDate(0, 0, 14)
	d, err := NewDiagnostic("DIAG-0001", uuid.New(), uuid.New(), time.Time{}, &followUp, uuid.New())
	require.NoError(t, err)

	assert.True(t, d.FollowUpRequired)
	assert.False(t, d.DiagnosticDate.IsZero())
	require.NotNil(t, d.Result)
	assert.Equal(t, ResultPending, d.Result.Status)
	assert.Equal(t, d.ID, d.Result.DiagnosticID)
	require.Len(t, d.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeDiagnosticCreated, d.GetDomainEvents()[0].EventType())

	_, err = NewDiagnostic("DIAG-0002", uuid.New(), uuid.Nil, time.Now(), nil, uuid.New())
	assert.Error(t, err)
	_, err = NewDiagnostic("DIAG-0002", uuid.Nil, uuid.New(), time.Now(), nil, uuid.New())
	assert.Error(t, err)
}

func iah(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestDeriveOutcome(t *testing.T) {
	assert.Equal(t, OutcomeEquipped, DeriveOutcome(nil, true))
	assert.Equal(t, OutcomeDiagnosticOnly, DeriveOutcome(nil, false))
	assert.Equal(t, OutcomeDiagnosticOnly, DeriveOutcome(&DiagnosticResult{}, false))
	assert.Equal(t, OutcomeAwaiting, DeriveOutcome(&DiagnosticResult{IAH: iah(32)}, false))
	assert.Equal(t, OutcomeNotEquipped, DeriveOutcome(&DiagnosticResult{IAH: iah(15)}, false))
	assert.Equal(t, OutcomeEquipped, DeriveOutcome(&DiagnosticResult{IAH: iah(40)}, true))
}

func TestDiagnosticResult_Record(t *testing.T) {
	r := &DiagnosticResult{Status: ResultPending}
	require.NoError(t, r.Record(iah(22), decimal.NullDecimal{}, "SAOS sévère", ""))
	assert.Equal(t, ResultCompleted, r.Status)

	assert.Error(t, r.Record(iah(-1), decimal.NullDecimal{}, "", ResultNormal))
	assert.Error(t, r.Record(iah(1), decimal.NullDecimal{}, "", ResultStatus("MAYBE")))
}

func TestNewAppointment(t *testing.T) {
	patient := uuid.New()
	when := time.Now().Add(48 * time.Hour)

	a, err := NewAppointment("RDV-0001", "Installation CPAP", when, "Domicile", &patient, nil, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, AppointmentScheduled, a.Status)
	assert.Equal(t, PriorityNormal, a.Priority)
	assert.Equal(t, when.AddDate(0, 0, -1), a.ReminderAt())

	_, err = NewAppointment("RDV-0002", "", when, "Domicile", &patient, nil, uuid.New())
	assert.Error(t, err)
	_, err = NewAppointment("RDV-0002", "Visite", time.Time{}, "Domicile", &patient, nil, uuid.New())
	assert.Error(t, err)
	_, err = NewAppointment("RDV-0002", "Visite", when, " ", &patient, nil, uuid.New())
	assert.Error(t, err)
	_, err = NewAppointment("RDV-0002", "Visite", when, "Domicile", nil, nil, uuid.New())
	assert.Error(t, err)

	assert.Error(t, a.SetPriority(Priority("MEH")))
	require.NoError(t, a.SetPriority(PriorityUrgent))
	assert.Error(t, a.SetStatus(AppointmentStatus("MISSED")))
}
