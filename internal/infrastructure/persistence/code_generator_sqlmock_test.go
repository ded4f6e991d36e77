package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens GORM with the postgres dialector over sqlmock, for tests
// of the SQL the repositories send to PostgreSQL.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

const (
	highestPatientCode = `SELECT .*"?patient_code"? FROM "patients" WHERE patient_code LIKE \$1 ORDER BY LENGTH\(patient_code\) DESC, patient_code DESC LIMIT`
	countPatientCode   = `SELECT count\(\*\) FROM "patients" WHERE patient_code = \$1`
)

func TestGormCodeGenerator_PostgresQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("next code after the highest suffix", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(highestPatientCode).
			WillReturnRows(sqlmock.NewRows([]string{"patient_code"}).AddRow("PAT-0041").AddRow("PAT-0007"))
		mock.ExpectQuery(countPatientCode).
			WithArgs("PAT-0042").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		code, err := NewGormCodeGenerator(db).Next(ctx, shared.CodePatient)
		require.NoError(t, err)
		assert.Equal(t, "PAT-0042", code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips a candidate already taken", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(highestPatientCode).
			WillReturnRows(sqlmock.NewRows([]string{"patient_code"}).AddRow("PAT-0041"))
		mock.ExpectQuery(countPatientCode).
			WithArgs("PAT-0042").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(countPatientCode).
			WithArgs("PAT-0043").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		code, err := NewGormCodeGenerator(db).Next(ctx, shared.CodePatient)
		require.NoError(t, err)
		assert.Equal(t, "PAT-0043", code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		connReset := errors.New("connection reset by peer")
		mock.ExpectQuery(highestPatientCode).WillReturnError(connReset)

		_, err := NewGormCodeGenerator(db).Next(ctx, shared.CodePatient)
		assert.ErrorIs(t, err, connReset)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
