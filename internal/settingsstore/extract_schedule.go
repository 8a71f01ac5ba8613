package settingsstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/entities"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ExtractScheduleInfo is the effective schedule with its origin.
type ExtractScheduleInfo struct {
	Schedule string `json:"schedule"`
	Source   string `json:"source"` // "database", "config", or "default"
}

// RunStatus is the outcome of the last scheduled extraction.
type RunStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"`  // "success", "failed", ""
	Message   string     `json:"message,omitempty"` // Error message or stats summary
}

// IndexStatus describes the last search index rebuild.
type IndexStatus struct {
	LastBuiltAt *time.Time `json:"last_built_at,omitempty"`
	Source      string     `json:"source,omitempty"`
	Entries     int        `json:"entries"`
}

// GetExtractSchedule returns the cron schedule (database > config > default)
func (s *SettingsStore) GetExtractSchedule() string {
	if value, ok := s.db.Settings().GetValue(entities.SettingKeyExtractSchedule); ok {
		return value
	}
	if s.cfg.ExtractSchedule != "" {
		return s.cfg.ExtractSchedule
	}
	return config.DefaultExtractSchedule
}

func (s *SettingsStore) GetExtractScheduleInfo() ExtractScheduleInfo {
	return ExtractScheduleInfo{
		Schedule: s.GetExtractSchedule(),
		Source:   s.sourceOf(entities.SettingKeyExtractSchedule, s.cfg.ExtractSchedule),
	}
}

// SetExtractSchedule validates and saves a schedule override.
func (s *SettingsStore) SetExtractSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return s.db.SetSetting(entities.SettingKeyExtractSchedule, schedule)
}

// ClearExtractSchedule removes the database override, reverting to config/default
func (s *SettingsStore) ClearExtractSchedule() error {
	return s.db.DeleteSetting(entities.SettingKeyExtractSchedule)
}

// GetExtractStatus returns the last scheduled run status
func (s *SettingsStore) GetExtractStatus() RunStatus {
	status := RunStatus{}
	repo := s.db.Settings()

	if value, ok := repo.GetValue(entities.SettingKeyExtractLastAt); ok {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			status.LastRunAt = &ts
		}
	}
	status.Status, _ = repo.GetValue(entities.SettingKeyExtractLastStatus)
	status.Message, _ = repo.GetValue(entities.SettingKeyExtractLastMessage)

	return status
}

// SetExtractStatus records the outcome of a scheduled run
func (s *SettingsStore) SetExtractStatus(status, message string) error {
	return s.db.Settings().SetValues(map[string]string{
		entities.SettingKeyExtractLastAt:      time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyExtractLastStatus:  status,
		entities.SettingKeyExtractLastMessage: message,
	})
}

// GetIndexStatus returns what the search index was last built from
func (s *SettingsStore) GetIndexStatus() IndexStatus {
	status := IndexStatus{}
	repo := s.db.Settings()

	if value, ok := repo.GetValue(entities.SettingKeyIndexLastAt); ok {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			status.LastBuiltAt = &ts
		}
	}
	status.Source, _ = repo.GetValue(entities.SettingKeyIndexSource)
	if value, ok := repo.GetValue(entities.SettingKeyIndexEntries); ok {
		status.Entries, _ = strconv.Atoi(value)
	}
	return status
}

// SetIndexStatus records a completed index rebuild
func (s *SettingsStore) SetIndexStatus(source string, entries int) error {
	return s.db.Settings().SetValues(map[string]string{
		entities.SettingKeyIndexLastAt:  time.Now().UTC().Format(time.RFC3339),
		entities.SettingKeyIndexSource:  source,
		entities.SettingKeyIndexEntries: strconv.Itoa(entries),
	})
}

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "*/5 * * * *":
		return "Every 5 minutes"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 * * * *":
		return "Every hour at :00"
	case "0 0 * * *":
		return "Daily at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next run will happen after from
func GetNextRunTime(schedule string, from time.Time) (*time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(from)
	return &next, nil
}
