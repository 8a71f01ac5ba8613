// Package settings provides database operations for persisted runtime
// settings: the extraction schedule override and the status of the last
// scheduled run and index rebuild.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	value, ok := repo.GetValue(entities.SettingKeyExtractSchedule)
package settings

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetValue returns the value stored for key. Missing and empty values
// report false.
func (r *Repository) GetValue(key string) (string, bool) {
	setting, err := r.GetSetting(key)
	if err != nil || setting.Value == "" {
		return "", false
	}
	return setting.Value, true
}

// SetSetting creates or updates a setting.
func (r *Repository) SetSetting(key, value string) error {
	return r.upsert(r.db, key, value)
}

// SetValues writes several settings in one transaction.
func (r *Repository) SetValues(values map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if err := r.upsert(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns all settings whose key starts with prefix, ordered by key.
func (r *Repository) List(prefix string) ([]entities.Setting, error) {
	var settings []entities.Setting
	tx := r.db.Order("key ASC")
	if prefix != "" {
		tx = tx.Where("key LIKE ?", strings.ReplaceAll(prefix, "%", "")+"%")
	}
	err := tx.Find(&settings).Error
	return settings, err
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}

func (r *Repository) upsert(tx *gorm.DB, key, value string) error {
	setting := entities.Setting{Key: key, Value: value}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}
