package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/medrent/backend/internal/application/uow"
	"github.com/medrent/backend/internal/domain/partner"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := newTestDB(t)
		scope := NewGormTransactionScope(db)

		err := scope.Execute(ctx, func(repos uow.Repositories) error {
			code, err := repos.Codes().Next(ctx, shared.CodePatient)
			if err != nil {
				return err
			}
			p, err := partner.NewPatient(code, "Ines", "Hamdi", "21000000")
			if err != nil {
				return err
			}
			return repos.Patients().Save(ctx, p)
		})
		require.NoError(t, err)

		n, err := NewGormPatientRepository(db).Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := newTestDB(t)
		scope := NewGormTransactionScope(db)
		boom := errors.New("boom")

		err := scope.Execute(ctx, func(repos uow.Repositories) error {
			p, err := partner.NewPatient("PAT-0001", "Ines", "Hamdi", "21000000")
			if err != nil {
				return err
			}
			if err := repos.Patients().Save(ctx, p); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		n, err := NewGormPatientRepository(db).Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
