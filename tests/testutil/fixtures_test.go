package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/medrent/backend/internal/domain/inventory"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestSeedHelpers(t *testing.T) {
	db := NewSQLiteDB(t)

	loc := SeedLocation(t, db, "Depot")
	prod := SeedProduct(t, db, "Masque nasal")
	stock := SeedStock(t, db, loc.ID, prod.ID, 4, inventory.StockStatusForSale)
	dev := SeedDevice(t, db, "DEV-0001", "CPAP", loc.ID)

	assert.Equal(t, 4, ReloadStock(t, db, stock.ID).Quantity)
	assert.Equal(t, loc.ID, *ReloadDevice(t, db, dev.ID).StockLocationID)
	assert.Equal(t, int64(1), CountRows(t, db, &inventory.Stock{}, "location_id = ?", loc.ID))
}

func TestRecordingPublisher(t *testing.T) {
	p := NewRecordingPublisher()
	ev := shared.NewBaseDomainEvent("Thing", "Agg", NewTestUUID("a"), NewTestUUID("b"))

	assert.NoError(t, p.Publish(context.Background(), &ev))
	assert.Equal(t, []string{"Thing"}, p.Types())

	boom := errors.New("boom")
	p.FailWith(boom)
	assert.ErrorIs(t, p.Publish(context.Background(), &ev), boom)
	assert.Len(t, p.Events(), 2)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("x"), NewTestUUID("x"))
	assert.NotEqual(t, NewTestUUID("x"), NewTestUUID("y"))
}
