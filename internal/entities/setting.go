package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Scheduled extraction
	SettingKeyExtractSchedule    = "extract_schedule"
	SettingKeyExtractLastAt      = "extract_last_at"
	SettingKeyExtractLastStatus  = "extract_last_status"
	SettingKeyExtractLastMessage = "extract_last_message"

	// Search index
	SettingKeyIndexLastAt  = "index_last_at"
	SettingKeyIndexSource  = "index_source"
	SettingKeyIndexEntries = "index_entries"
)
