// Package uow defines the unit of work used by application services that
// must change several aggregates atomically.
package uow

import (
	"context"

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
)

// TransactionScope runs fn inside a database transaction.
// If fn returns an error every change made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository bound to one database
// handle (a transaction inside Execute, the pool otherwise).
type Repositories interface {
	Users() identity.UserRepository
	Patients() partner.PatientRepository
	Companies() partner.CompanyRepository
	PatientHistory() partner.PatientHistoryRepository
	Devices() catalog.MedicalDeviceRepository
	Products() catalog.ProductRepository
	Locations() inventory.StockLocationRepository
	Stocks() inventory.StockRepository
	Transfers() inventory.StockTransferRepository
	TransferRequests() inventory.StockTransferRequestRepository
	ActionHistory() inventory.UserActionHistoryRepository
	Payments() finance.PaymentRepository
	Bonds() finance.CNAMBondRepository
	Dossiers() finance.CNAMDossierRepository
	Rentals() trade.RentalRepository
	RentalPeriods() trade.RentalPeriodRepository
	Sales() trade.SaleRepository
	Diagnostics() clinical.DiagnosticRepository
	Appointments() clinical.AppointmentRepository
	Files() clinical.FileRepository
	Tasks() workflow.TaskRepository
	Notifications() workflow.NotificationRepository
	Imports() bulk.ImportHistoryRepository
	Codes() shared.CodeGenerator
}
