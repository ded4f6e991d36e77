package persistence

import (
	"github.com/medrent/backend/internal/domain/bulk"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/finance"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/trade"
	"github.com/medrent/backend/internal/domain/workflow"
	"gorm.io/gorm"
)

// Models lists every persisted entity. The SQL files under migrations/
// are the source of truth for PostgreSQL; this list drives AutoMigrate
// for SQLite-backed tests and local prototyping.
func Models() []interface{} {
	return []interface{}{
		&identity.User{},
		&partner.Patient{},
		&partner.Company{},
		&partner.PatientHistory{},
		&catalog.MedicalDevice{},
		&catalog.RepairLog{},
		&catalog.Product{},
		&inventory.StockLocation{},
		&inventory.Stock{},
		&inventory.StockTransfer{},
		&inventory.StockTransferRequest{},
		&inventory.UserActionHistory{},
		&finance.Payment{},
		&finance.PaymentDetail{},
		&finance.CNAMBondRental{},
		&finance.CNAMDossier{},
		&finance.CNAMStepHistory{},
		&trade.Rental{},
		&trade.RentalConfiguration{},
		&trade.RentalGap{},
		&trade.RentalAccessory{},
		&trade.RentalPeriod{},
		&trade.Sale{},
		&trade.SaleItem{},
		&trade.SaleConfiguration{},
		&clinical.Diagnostic{},
		&clinical.DiagnosticResult{},
		&clinical.Appointment{},
		&clinical.File{},
		&workflow.Task{},
		&workflow.Notification{},
		&bulk.ImportHistory{},
	}
}

// AutoMigrate creates or updates every table from the entity definitions
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
