package migration

import (
	"context"

	"github.com/slotdraw/backend/internal/entity"
	"github.com/slotdraw/backend/pkg/xcontext"
)

// AutoMigrate creates the schema from the entities. It is used by the
// databases which have no versioned scripts.
func AutoMigrate(ctx context.Context) error {
	xcontext.Logger(ctx).Infof("Auto migrating %s database", xcontext.Configs(ctx).Database.Driver)
	return entity.MigrateTable(ctx)
}
