package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/coach-importer/internal/config"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/pkg/log"
	"github.com/kubev2v/coach-importer/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting db migration")
		defer zap.S().Info("Db migrated")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		pool, err := store.NewPgxPool(context.Background(), cfg)
		if err != nil {
			zap.S().Fatalw("initializing pgx pool", "error", err)
		}
		defer pool.Close()

		if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder, pool); err != nil {
			zap.S().Fatalw("running migrations", "error", err)
		}

		if err := s.Seed(); err != nil {
			zap.S().Fatalw("seeding reference data", "error", err)
		}

		return nil
	},
}
