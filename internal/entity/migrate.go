package entity

import (
	"context"

	"github.com/slotdraw/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Drawing{},
		&Slot{},
		&Participant{},
		&WinnerRecord{},
	)
}
