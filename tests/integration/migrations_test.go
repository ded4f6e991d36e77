//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_UpDownUp(t *testing.T) {
	tdb := NewTestDB(t)
	m := tdb.Migrator()
	assert.Equal(t, uint(4), m.Version())

	for _, table := range []string{"users", "patients", "medical_devices", "stocks", "rentals", "payments", "cnam_bond_rentals", "diagnostics", "tasks", "notifications"} {
		assert.True(t, tdb.DB.Migrator().HasTable(table), table)
	}

	m.Down()
	assert.Equal(t, uint(0), m.Version())
	assert.False(t, tdb.DB.Migrator().HasTable("rentals"))

	m.Up()
	require.Equal(t, uint(4), m.Version())
	assert.True(t, tdb.DB.Migrator().HasTable("rentals"))
}
