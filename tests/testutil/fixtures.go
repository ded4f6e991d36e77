package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/domain/catalog"
	"github.com/medrent/backend/internal/domain/identity"
	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SeedUser inserts an active user with password "password123"
func SeedUser(t *testing.T, db *gorm.DB, email string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, "password123", "Test", "User", role)
	require.NoError(t, err)
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedPatient inserts a patient
func SeedPatient(t *testing.T, db *gorm.DB, code, first, last string) *partner.Patient {
	t.Helper()
	p, err := partner.NewPatient(code, first, last, "20000000")
	require.NoError(t, err)
	require.NoError(t, db.Create(p).Error)
	return p
}

// SeedCompany inserts a company
func SeedCompany(t *testing.T, db *gorm.DB, code, name string) *partner.Company {
	t.Helper()
	c, err := partner.NewCompany(code, name)
	require.NoError(t, err)
	require.NoError(t, db.Create(c).Error)
	return c
}

// SeedLocation inserts an active stock location
func SeedLocation(t *testing.T, db *gorm.DB, name string) *inventory.StockLocation {
	t.Helper()
	l, err := inventory.NewStockLocation(name, "", nil)
	require.NoError(t, err)
	require.NoError(t, db.Create(l).Error)
	return l
}

// SeedProduct inserts an accessory priced at 10/25
func SeedProduct(t *testing.T, db *gorm.DB, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, catalog.ProductTypeAccessory)
	require.NoError(t, err)
	require.NoError(t, p.SetPrices(decimal.NewFromInt(10), decimal.NewFromInt(25)))
	require.NoError(t, db.Create(p).Error)
	return p
}

// SeedDevice inserts an ACTIVE device stored at locationID
func SeedDevice(t *testing.T, db *gorm.DB, code, name string, locationID uuid.UUID) *catalog.MedicalDevice {
	t.Helper()
	d, err := catalog.NewMedicalDevice(code, name, catalog.DeviceTypeMedical)
	require.NoError(t, err)
	d.MoveTo(locationID)
	d.RentalPrice = decimal.NewFromInt(300)
	require.NoError(t, db.Create(d).Error)
	return d
}

// SeedStock inserts a stock row
func SeedStock(t *testing.T, db *gorm.DB, locationID, productID uuid.UUID, quantity int, status inventory.StockStatus) *inventory.Stock {
	t.Helper()
	s, err := inventory.NewStock(locationID, productID, quantity, status)
	require.NoError(t, err)
	require.NoError(t, db.Create(s).Error)
	return s
}

// ReloadStock reads a stock row back; a deleted row fails the test
func ReloadStock(t *testing.T, db *gorm.DB, id uuid.UUID) *inventory.Stock {
	t.Helper()
	var s inventory.Stock
	require.NoError(t, db.First(&s, "id = ?", id).Error)
	return &s
}

// ReloadDevice reads a device back
func ReloadDevice(t *testing.T, db *gorm.DB, id uuid.UUID) *catalog.MedicalDevice {
	t.Helper()
	var d catalog.MedicalDevice
	require.NoError(t, db.First(&d, "id = ?", id).Error)
	return &d
}

// CountRows counts the rows of model matching the optional condition
func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
