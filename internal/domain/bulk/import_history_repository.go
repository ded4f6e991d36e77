package bulk

import (
	"context"

	"github.com/medrent/backend/internal/domain/shared"
)

// ImportHistoryRepository defines the interface for import history persistence
type ImportHistoryRepository interface {
	// FindAll lists runs newest first; supports an "entity_type" filter
	FindAll(ctx context.Context, filter shared.Filter) ([]ImportHistory, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, history *ImportHistory) error
}
