package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/alainbeyonder/aia-regenord/internal/config"
	"github.com/alainbeyonder/aia-regenord/internal/rules"
	"github.com/alainbeyonder/aia-regenord/internal/storage"
)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// loadRules loads the category rule set named in the configuration.
func loadRules() (*rules.Set, error) {
	path := viper.GetString("rules.path")
	if path == "" {
		path = config.DefaultRulesPath()
	}
	return rules.Load(config.ExpandPath(path))
}

// parseDate parses a YYYY-MM-DD flag value.
func parseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q: expected YYYY-MM-DD", flag, value)
	}
	return t, nil
}
