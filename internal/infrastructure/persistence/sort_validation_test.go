package persistence

import (
	"testing"

	"github.com/medrent/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE users;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"whitelisted field returns field", "rental_code", "rental_code"},
		{"base field is always allowed", "updated_at", "updated_at"},
		{"unknown field returns default", "password_hash", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE rentals;--", "created_at"},
		{"case sensitive", "RENTAL_CODE", "created_at"},
		{"whitespace around valid field returns field", "  start_date  ", "start_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, RentalSortFields, "created_at"))
		})
	}
}

type sortProbe struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func TestApplyPagingAndSearch(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&sortProbe{}))
	for _, name := range []string{"Alpha", "beta", "Gamma", "alphabet"} {
		require.NoError(t, db.Create(&sortProbe{ID: name, Name: name}).Error)
	}

	t.Run("search is case insensitive", func(t *testing.T) {
		var rows []sortProbe
		q := applySearch(db.Model(&sortProbe{}), "ALPHA", "name")
		require.NoError(t, q.Order("name").Find(&rows).Error)
		require.Len(t, rows, 2)
	})

	t.Run("unknown order field falls back to default", func(t *testing.T) {
		var rows []sortProbe
		f := shared.Filter{Page: 1, PageSize: 2, OrderBy: "nope"}
		q := applyPaging(db.Model(&sortProbe{}), f, map[string]bool{"name": true}, "id ASC")
		require.NoError(t, q.Find(&rows).Error)
		require.Len(t, rows, 2)
		assert.Equal(t, "Alpha", rows[0].ID)
	})

	t.Run("second page", func(t *testing.T) {
		var rows []sortProbe
		f := shared.Filter{Page: 2, PageSize: 3, OrderBy: "name", OrderDir: "asc"}
		q := applyPaging(db.Model(&sortProbe{}), f, map[string]bool{"name": true}, "id ASC")
		require.NoError(t, q.Find(&rows).Error)
		require.Len(t, rows, 1)
	})
}
