package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// InstrumentDB registers the otelgorm plugin so every query becomes a
// child span of the request that issued it. Bound variables are left out
// of the recorded statement unless fullSQL is set.
func InstrumentDB(db *gorm.DB, dbName string, fullSQL bool) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(dbName)}
	if !fullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm: %w", err)
	}
	return nil
}
