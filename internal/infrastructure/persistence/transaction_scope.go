package persistence

import (
	"context"

	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/bulk"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/medrent/backend/internal/domain/workflow"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. If fn returns an error,
// or panics, the transaction is rolled back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{db: tx, codes: newTxCodeGenerator(tx)})
	})
}

// gormRepositories binds every repository to one *gorm.DB: the pool, or a
// transaction when created by Execute.
type gormRepositories struct {
	db    *gorm.DB
	codes *GormCodeGenerator
}

// NewRepositories returns the repository set bound to db. Its code
// generator is stateless; use Execute when one unit of work needs several
// codes of the same kind before saving.
func NewRepositories(db *gorm.DB) uow.Repositories {
	return &gormRepositories{db: db, codes: NewGormCodeGenerator(db)}
}

func (r *gormRepositories) Users() identity.UserRepository { return NewGormUserRepository(r.db) }
func (r *gormRepositories) Patients() partner.PatientRepository {
	return NewGormPatientRepository(r.db)
}
func (r *gormRepositories) Companies() partner.CompanyRepository {
	return NewGormCompanyRepository(r.db)
}
func (r *gormRepositories) PatientHistory() partner.PatientHistoryRepository {
	return NewGormPatientHistoryRepository(r.db)
}
func (r *gormRepositories) Devices() catalog.MedicalDeviceRepository {
	return NewGormMedicalDeviceRepository(r.db)
}
func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}
func (r *gormRepositories) Locations() inventory.StockLocationRepository {
	return NewGormStockLocationRepository(r.db)
}
func (r *gormRepositories) Stocks() inventory.StockRepository { return NewGormStockRepository(r.db) }
func (r *gormRepositories) Transfers() inventory.StockTransferRepository {
	return NewGormStockTransferRepository(r.db)
}
func (r *gormRepositories) TransferRequests() inventory.StockTransferRequestRepository {
	return NewGormStockTransferRequestRepository(r.db)
}
func (r *gormRepositories) ActionHistory() inventory.UserActionHistoryRepository {
	return NewGormUserActionHistoryRepository(r.db)
}
func (r *gormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}
func (r *gormRepositories) Bonds() finance.CNAMBondRepository { return NewGormCNAMBondRepository(r.db) }
func (r *gormRepositories) Dossiers() finance.CNAMDossierRepository {
	return NewGormCNAMDossierRepository(r.db)
}
func (r *gormRepositories) Rentals() trade.RentalRepository { return NewGormRentalRepository(r.db) }
func (r *gormRepositories) RentalPeriods() trade.RentalPeriodRepository {
	return NewGormRentalPeriodRepository(r.db)
}
func (r *gormRepositories) Sales() trade.SaleRepository { return NewGormSaleRepository(r.db) }
func (r *gormRepositories) Diagnostics() clinical.DiagnosticRepository {
	return NewGormDiagnosticRepository(r.db)
}
func (r *gormRepositories) Appointments() clinical.AppointmentRepository {
	return NewGormAppointmentRepository(r.db)
}
func (r *gormRepositories) Files() clinical.FileRepository { return NewGormFileRepository(r.db) }
func (r *gormRepositories) Tasks() workflow.TaskRepository { return NewGormTaskRepository(r.db) }
func (r *gormRepositories) Notifications() workflow.NotificationRepository {
	return NewGormNotificationRepository(r.db)
}
func (r *gormRepositories) Imports() bulk.ImportHistoryRepository {
	return NewGormImportHistoryRepository(r.db)
}
func (r *gormRepositories) Codes() shared.CodeGenerator { return r.codes }

var (
	_ uow.TransactionScope = (*GormTransactionScope)(nil)
	_ uow.Repositories     = (*gormRepositories)(nil)
)
