package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BuildBond creates a bond for patientID from a request entry
func BuildBond(patientID uuid.UUID, category finance.BondCategory, in BondInput) (*finance.CNAMBondRental, error) {
	bond, err := finance.NewCNAMBond(patientID, finance.ParseBondType(in.BondType), category, in.TotalAmount)
	if err != nil {
		return nil, err
	}
	if err := ApplyBondInput(bond, in); err != nil {
		return nil, err
	}
	return bond, nil
}

// ApplyBondInput copies the editable fields of in onto bond. Zero months and
// reminder days keep their defaults.
func ApplyBondInput(bond *finance.CNAMBondRental, in BondInput) error {
	if in.TotalAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Bond amount cannot be negative")
	}
	bond.BondType = finance.ParseBondType(in.BondType)
	bond.Status = finance.ParseCNAMStatus(in.Status)
	bond.BondNumber = in.BondNumber
	bond.DossierNumber = in.DossierNumber
	bond.SubmissionDate = in.SubmissionDate
	bond.ApprovalDate = in.ApprovalDate
	bond.StartDate = in.StartDate
	bond.EndDate = in.EndDate
	bond.TotalAmount = in.TotalAmount
	bond.Notes = in.Notes
	if in.MonthlyAmount != nil {
		bond.MonthlyAmount = *in.MonthlyAmount
	}
	if in.DevicePrice != nil {
		bond.DevicePrice = *in.DevicePrice
	}
	if in.ComplementAmount != nil {
		bond.ComplementAmount = *in.ComplementAmount
	}
	if in.CoveredMonths > 0 {
		bond.CoveredMonths = in.CoveredMonths
	}
	if in.RenewalReminderDays > 0 {
		bond.RenewalReminderDays = in.RenewalReminderDays
	}
	bond.MarkModified()
	return nil
}

// CNAMService handles CNAM bonds attached to rentals and purchase dossiers
type CNAMService struct {
	repos   uow.Repositories
	txScope uow.TransactionScope
	logger  *zap.Logger
	now     func() time.Time
}

// NewCNAMService creates a new CNAMService
func NewCNAMService(repos uow.Repositories, txScope uow.TransactionScope, logger *zap.Logger) *CNAMService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CNAMService{repos: repos, txScope: txScope, logger: logger, now: time.Now}
}

// ListBonds returns the bonds of a rental
func (s *CNAMService) ListBonds(ctx context.Context, rentalID uuid.UUID) ([]BondResponse, error) {
	if rentalID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "rental_id is required")
	}
	bonds, err := s.repos.Bonds().FindByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return ToBondResponses(bonds, s.now()), nil
}

// CreateBond attaches a bond to a rental; the patient is the rental's
func (s *CNAMService) CreateBond(ctx context.Context, req CreateBondRequest) (*BondResponse, error) {
	rental, err := s.repos.Rentals().FindByID(ctx, req.RentalID)
	if err != nil {
		return nil, err
	}
	bond, err := BuildBond(rental.PatientID, finance.BondCategoryLocation, req.BondInput)
	if err != nil {
		return nil, err
	}
	bond.RentalID = &rental.ID
	if err := s.repos.Bonds().Save(ctx, bond); err != nil {
		return nil, err
	}

	s.logger.Info("cnam bond created",
		zap.String("bond_id", bond.ID.String()),
		zap.String("rental_code", rental.RentalCode),
		zap.String("bond_type", string(bond.BondType)))
	response := ToBondResponse(bond, s.now())
	return &response, nil
}

// ReconcileBonds makes the rental's bonds match the request: bonds missing
// from the list are deleted, known ids are updated, the rest are created
func (s *CNAMService) ReconcileBonds(ctx context.Context, req ReconcileBondsRequest) ([]BondResponse, error) {
	var result []finance.CNAMBondRental
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		rental, err := repos.Rentals().FindByID(ctx, req.RentalID)
		if err != nil {
			return err
		}
		existing, err := repos.Bonds().FindByRental(ctx, rental.ID)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*finance.CNAMBondRental, len(existing))
		for i := range existing {
			byID[existing[i].ID] = &existing[i]
		}

		keep := make(map[uuid.UUID]bool)
		for _, in := range req.Bonds {
			var bond *finance.CNAMBondRental
			if !in.IsNew() {
				id, err := uuid.Parse(in.ID)
				if err != nil {
					return shared.NewDomainError("INVALID_INPUT", "Invalid bond id: "+in.ID)
				}
				current, ok := byID[id]
				if !ok {
					return shared.NewDomainError("NOT_FOUND", "Bond "+in.ID+" does not belong to this rental")
				}
				if err := ApplyBondInput(current, in); err != nil {
					return err
				}
				bond = current
			} else {
				bond, err = BuildBond(rental.PatientID, finance.BondCategoryLocation, in)
				if err != nil {
					return err
				}
				bond.RentalID = &rental.ID
			}
			if err := repos.Bonds().Save(ctx, bond); err != nil {
				return err
			}
			keep[bond.ID] = true
			result = append(result, *bond)
		}

		for id := range byID {
			if keep[id] {
				continue
			}
			if err := repos.Bonds().Delete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cnam bonds reconciled", zap.String("rental_id", req.RentalID.String()), zap.Int("count", len(result)))
	return ToBondResponses(result, s.now()), nil
}

// DeleteBond removes one bond
func (s *CNAMService) DeleteBond(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repos.Bonds().FindByID(ctx, id); err != nil {
		return err
	}
	return s.repos.Bonds().Delete(ctx, id)
}

// ListDossiers returns dossiers with their step history
func (s *CNAMService) ListDossiers(ctx context.Context, filter DossierListFilter) ([]DossierResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("status", filter.Status).
		With("patient_id", filter.PatientID).
		With("sale_id", filter.SaleID)

	dossiers, err := s.repos.Dossiers().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Dossiers().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]DossierResponse, len(dossiers))
	for i := range dossiers {
		out[i] = ToDossierResponse(&dossiers[i])
	}
	return out, total, nil
}

// GetDossier returns one dossier with its step history
func (s *CNAMService) GetDossier(ctx context.Context, id uuid.UUID) (*DossierResponse, error) {
	dossier, err := s.repos.Dossiers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDossierResponse(dossier)
	return &response, nil
}

// AdvanceStep moves a dossier to a step and appends the history entry
func (s *CNAMService) AdvanceStep(ctx context.Context, id, changedBy uuid.UUID, req AdvanceStepRequest) (*DossierResponse, error) {
	var dossier *finance.CNAMDossier
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		dossier, err = repos.Dossiers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		entry, err := dossier.AdvanceTo(req.ToStep, finance.CNAMStatus(req.ToStatus), req.Notes, changedBy)
		if err != nil {
			return err
		}
		if err := repos.Dossiers().Save(ctx, dossier); err != nil {
			return err
		}
		if err := repos.Dossiers().SaveStep(ctx, entry); err != nil {
			return err
		}
		dossier.StepHistory = append(dossier.StepHistory, *entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cnam dossier advanced",
		zap.String("dossier_number", dossier.DossierNumber),
		zap.Int("step", dossier.CurrentStep),
		zap.String("status", string(dossier.Status)))
	response := ToDossierResponse(dossier)
	return &response, nil
}
