package main

import (
	"context"
	"log/slog"

	"github.com/voyagen/tubestats/internal/config"
	"github.com/voyagen/tubestats/internal/store"
)

// openSource picks the table source: Postgres when a database is configured,
// the CSV file or URL otherwise. The returned close func is never nil.
func openSource(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Source, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, exitError(ExitFailure, "db: %v", err)
		}
		log.Info("using postgres source", "dsn", store.RedactDSN(cfg.DatabaseURL))
		return pg, pg.Close, nil
	}
	src := store.NewFileSource(cfg.DataPath, cfg.UserAgent, cfg.Timeout)
	log.Debug("using file source", "location", cfg.DataPath)
	return src, func() {}, nil
}
