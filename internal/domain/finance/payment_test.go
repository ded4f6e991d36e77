package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPaymentStatus(t *testing.T) {
	tests := []struct {
		in   string
		want PaymentStatus
	}{
		{"COMPLETED_WITH_PENDING_CNAM", PaymentStatusPartial},
		{"completed", PaymentStatusPaid},
		{"GUARANTEE", PaymentStatusGuarantee},
		{"PAID", PaymentStatusPaid},
		{"whatever", PaymentStatusPending},
		{"", PaymentStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapPaymentStatus(tt.in))
		})
	}
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod(" cheque ")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCheque, m)

	_, err = ParsePaymentMethod("BITCOIN")
	assert.Error(t, err)
}

func TestPayment_IsOverdue(t *testing.T) {
	p, err := NewPayment("PAY-0001", decimal.NewFromInt(120), PaymentMethodCash, PaymentStatusPending, PaymentSourceRental)
	require.NoError(t, err)

	now := time.Now()
	assert.False(t, p.IsOverdue(now))

	past := now.Add(-48 * time.Hour)
	p.DueDate = &past
	assert.True(t, p.IsOverdue(now))

	require.NoError(t, p.SetStatus(PaymentStatusPaid))
	assert.False(t, p.IsOverdue(now))
}

func TestNewPayment_Validation(t *testing.T) {
	_, err := NewPayment("PAY-0001", decimal.NewFromInt(-1), PaymentMethodCash, PaymentStatusPaid, PaymentSourceSale)
	assert.Error(t, err)
	_, err = NewPayment("PAY-0001", decimal.Zero, PaymentMethod("GOLD"), PaymentStatusPaid, PaymentSourceSale)
	assert.Error(t, err)
}

func TestNewPaymentDetail(t *testing.T) {
	d, err := NewPaymentDetail(uuid.New(), "especes", decimal.NewFromInt(50), "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, ClassificationPrincipal, d.Classification)
	assert.Equal(t, "ESPECES", d.Method)

	_, err = NewPaymentDetail(uuid.New(), "cash", decimal.NewFromInt(50), DetailClassification("bonus"), "", nil)
	assert.Error(t, err)
}
