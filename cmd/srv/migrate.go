package main

import (
	"github.com/slotdraw/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Database is up to date")
	return nil
}
