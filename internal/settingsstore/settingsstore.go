// Package settingsstore resolves runtime settings that can be overridden
// at run time and records the outcome of scheduled work.
//
// Priority: database > config (environment or .env) > default
package settingsstore

import (
	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/database"
)

type SettingsStore struct {
	db  *database.Database
	cfg *config.Config
}

func New(db *database.Database, cfg *config.Config) *SettingsStore {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &SettingsStore{db: db, cfg: cfg}
}

// sourceOf reports where the effective value of key comes from.
func (s *SettingsStore) sourceOf(key, configValue string) string {
	if _, ok := s.db.Settings().GetValue(key); ok {
		return "database"
	}
	if configValue != "" {
		return "config"
	}
	return "default"
}
