package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID loads a payment with its details
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindAll supports "status", "method", "patient_id", "source",
	// "rental_id", "sale_id", "from_date" and "to_date" filters
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindByRental(ctx context.Context, rentalID uuid.UUID) ([]Payment, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]Payment, error)
	// FindOverdue returns PENDING payments whose due date is before now
	FindOverdue(ctx context.Context, now time.Time) ([]Payment, error)
	// SumByStatus sums amounts in a status, optionally bounded by payment date
	SumByStatus(ctx context.Context, status PaymentStatus, from, to *time.Time) (decimal.Decimal, error)
	Save(ctx context.Context, payment *Payment) error
	SaveDetail(ctx context.Context, detail *PaymentDetail) error
	DeleteDetailsByPayment(ctx context.Context, paymentID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CNAMBondRepository defines the interface for CNAM bond persistence
type CNAMBondRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CNAMBondRental, error)
	FindByRental(ctx context.Context, rentalID uuid.UUID) ([]CNAMBondRental, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]CNAMBondRental, error)
	// FindEndingBetween returns bonds in the status whose end date lies in [from, to]
	FindEndingBetween(ctx context.Context, status CNAMStatus, from, to time.Time) ([]CNAMBondRental, error)
	Save(ctx context.Context, bond *CNAMBondRental) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CNAMDossierRepository defines the interface for dossier persistence
type CNAMDossierRepository interface {
	// FindByID loads a dossier with its step history
	FindByID(ctx context.Context, id uuid.UUID) (*CNAMDossier, error)
	// FindAll supports "status", "patient_id" and "sale_id" filters
	FindAll(ctx context.Context, filter shared.Filter) ([]CNAMDossier, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]CNAMDossier, error)
	// Save persists the dossier together with any new step history entries
	Save(ctx context.Context, dossier *CNAMDossier) error
	SaveStep(ctx context.Context, entry *CNAMStepHistory) error
	// DeleteBySale removes the sale's dossiers and their history
	DeleteBySale(ctx context.Context, saleID uuid.UUID) error
}
