package main

import (
	"github.com/spdm-lab/rewards/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.loadDatabase()

	if version := cctx.String("version"); version != "" {
		return migration.MigrateVersion(s.ctx, version)
	}

	return migration.Migrate(s.ctx)
}
