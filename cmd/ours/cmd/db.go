package cmd

import (
	"github.com/jmoiron/sqlx"
	"github.com/oursapp/ours/internal/config"
	"github.com/oursapp/ours/internal/db"
	"github.com/oursapp/ours/internal/logger"
)

// open loads the config and connects to the database named by it.
func open() (*config.Config, *sqlx.DB, error) {
	cfg := config.LoadCLI()
	logger.Init(cfg.IsDevelopment(), cfg.AppEnv, "")

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}
