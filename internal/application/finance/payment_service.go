package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentService handles standalone payment operations
type PaymentService struct {
	repos   uow.Repositories
	txScope uow.TransactionScope
	logger  *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repos uow.Repositories, txScope uow.TransactionScope, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repos: repos, txScope: txScope, logger: logger}
}

// Create records a payment and its detail lines
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	method, err := finance.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	source := finance.PaymentSource(req.Source)
	if source == "" {
		source = finance.PaymentSourceOther
	}

	var payment *finance.Payment
	err = s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		code, err := repos.Codes().Next(ctx, shared.CodePayment)
		if err != nil {
			return err
		}
		payment, err = finance.NewPayment(code, req.Amount, method, finance.MapPaymentStatus(req.Status), source)
		if err != nil {
			return err
		}
		payment.PatientID = req.PatientID
		payment.CompanyID = req.CompanyID
		payment.RentalID = req.RentalID
		payment.SaleID = req.SaleID
		payment.ChequeNumber = req.ChequeNumber
		payment.BankName = req.BankName
		payment.ReferenceNumber = req.ReferenceNumber
		payment.DueDate = req.DueDate
		payment.Notes = req.Notes
		if req.PaymentDate != nil {
			payment.PaymentDate = *req.PaymentDate
		}

		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		payment.Details, err = SaveDetails(ctx, repos.Payments(), payment.ID, req.Details)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("payment_code", payment.PaymentCode),
		zap.String("amount", payment.Amount.String()),
		zap.String("method", string(payment.Method)))
	response := ToPaymentResponse(payment)
	return &response, nil
}

// SaveDetails persists detail lines for a payment and returns them
func SaveDetails(ctx context.Context, repo finance.PaymentRepository, paymentID uuid.UUID, inputs []PaymentDetailInput) ([]finance.PaymentDetail, error) {
	details := make([]finance.PaymentDetail, 0, len(inputs))
	for _, in := range inputs {
		detail, err := finance.NewPaymentDetail(paymentID, in.Method, in.Amount,
			finance.DetailClassification(in.Classification), in.Reference, in.Metadata)
		if err != nil {
			return nil, err
		}
		if err := repo.SaveDetail(ctx, detail); err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// GetByID retrieves a payment with its detail lines
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.repos.Payments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search).
		With("status", filter.Status).
		With("method", filter.Method).
		With("patient_id", filter.PatientID).
		With("source", filter.Source)
	if filter.FromDate != nil {
		domainFilter = domainFilter.With("from_date", *filter.FromDate)
	}
	if filter.ToDate != nil {
		domainFilter = domainFilter.With("to_date", filter.ToDate.AddDate(0, 0, 1))
	}
	if filter.OrderBy == "" {
		domainFilter.OrderBy = ""
	}

	payments, err := s.repos.Payments().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Payments().Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPaymentResponses(payments), total, nil
}

// Update changes a payment's status, amount or detail lines
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	var payment *finance.Payment
	err := s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		payment, err = repos.Payments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != nil {
			if err := payment.SetStatus(finance.MapPaymentStatus(*req.Status)); err != nil {
				return err
			}
		}
		if req.Amount != nil {
			if err := payment.SetAmount(*req.Amount); err != nil {
				return err
			}
		}
		if req.Method != nil {
			method, err := finance.ParsePaymentMethod(*req.Method)
			if err != nil {
				return err
			}
			payment.Method = method
		}
		if req.ReferenceNumber != nil {
			payment.ReferenceNumber = *req.ReferenceNumber
		}
		if req.DueDate != nil {
			payment.DueDate = req.DueDate
		}
		if req.Notes != nil {
			payment.Notes = *req.Notes
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}

		if req.Details != nil {
			if err := repos.Payments().DeleteDetailsByPayment(ctx, payment.ID); err != nil {
				return err
			}
			payment.Details, err = SaveDetails(ctx, repos.Payments(), payment.ID, req.Details)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment updated", zap.String("payment_code", payment.PaymentCode), zap.String("status", string(payment.Status)))
	response := ToPaymentResponse(payment)
	return &response, nil
}

// Delete removes a payment and its detail lines
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Payments().FindByID(ctx, id); err != nil {
			return err
		}
		return repos.Payments().Delete(ctx, id)
	})
}
