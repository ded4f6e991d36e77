package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CompanyService handles company-related business operations
type CompanyService struct {
	companyRepo partner.CompanyRepository
	codes       shared.CodeGenerator
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo partner.CompanyRepository, codes shared.CodeGenerator, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{
		companyRepo: companyRepo,
		codes:       codes,
		logger:      logger,
	}
}

// Create creates a new company with the next COM code
func (s *CompanyService) Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	code, err := s.codes.Next(ctx, shared.CodeCompany)
	if err != nil {
		return nil, err
	}
	company, err := partner.NewCompany(code, req.CompanyName)
	if err != nil {
		return nil, err
	}
	company.Telephone = strings.TrimSpace(req.Telephone)
	company.TaxID = strings.TrimSpace(req.TaxID)
	company.Address = req.Address
	company.AssignedToID = req.AssignedToID

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	s.logger.Info("company created", zap.String("company_code", company.CompanyCode))

	response := ToCompanyResponse(company)
	return &response, nil
}

// GetByID retrieves a company by ID
func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	return &response, nil
}

// List retrieves companies with search and pagination
func (s *CompanyService) List(ctx context.Context, filter CompanyListFilter) ([]CompanyResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)

	companies, err := s.companyRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.companyRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCompanyResponses(companies), total, nil
}

// Update applies a partial update to a company
func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CompanyName != nil {
		if err := company.Rename(*req.CompanyName); err != nil {
			return nil, err
		}
	}
	company.Telephone = valueOr(req.Telephone, company.Telephone)
	company.TaxID = valueOr(req.TaxID, company.TaxID)
	company.Address = valueOr(req.Address, company.Address)
	if req.AssignedToID != nil {
		company.AssignedToID = req.AssignedToID
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	return &response, nil
}

// Delete removes a company
func (s *CompanyService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.companyRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("company deleted", zap.String("company_id", id.String()))
	return nil
}
