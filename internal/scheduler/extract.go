// Package scheduler runs sticky note extraction in the background: on a
// cron schedule and, optionally, whenever the sticky notes database changes.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/notecompiler/internal/database"
	"github.com/mrlokans/notecompiler/internal/importers"
	"github.com/mrlokans/notecompiler/internal/services"
	"github.com/mrlokans/notecompiler/internal/settingsstore"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ExtractScheduler manages periodic extraction into the canonical collection
type ExtractScheduler struct {
	pipeline      *importers.Pipeline
	source        importers.Source
	settingsStore *settingsstore.SettingsStore

	// Optional search index refreshed after every successful run.
	index      *database.Database
	collection services.NoteReader

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	runMu      sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
	generation uint64 // bumped by every Start
}

// NewExtractScheduler creates a new scheduler instance
func NewExtractScheduler(pipeline *importers.Pipeline, source importers.Source, settingsStore *settingsstore.SettingsStore) *ExtractScheduler {
	return &ExtractScheduler{
		pipeline:      pipeline,
		source:        source,
		settingsStore: settingsStore,
		cron: cron.New(
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// WithIndex refreshes index from collection after each successful run.
func (s *ExtractScheduler) WithIndex(index *database.Database, collection services.NoteReader) *ExtractScheduler {
	s.index = index
	s.collection = collection
	return s
}

// Start schedules extraction using the effective schedule
func (s *ExtractScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	schedule := s.settingsStore.GetExtractSchedule()
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		_ = s.RunOnce()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule extraction job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	s.generation++
	generation := s.generation

	nextRun, _ := settingsstore.GetNextRunTime(schedule, time.Now())
	log.Printf("Extract scheduler: started with schedule '%s' (%s). Next run: %v",
		schedule,
		settingsstore.GetCronDescription(schedule),
		nextRun)

	// Only the run this context belongs to is stopped; a Reschedule may
	// already have started a newer one.
	go func() {
		<-cancelCtx.Done()
		s.stopGeneration(generation)
	}()

	return nil
}

// Stop waits for a running extraction and stops the scheduler
func (s *ExtractScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ExtractScheduler) stopGeneration(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return
	}
	s.stopLocked()
}

func (s *ExtractScheduler) stopLocked() {
	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Extract scheduler: stopped")
}

// Reschedule picks up a changed schedule
func (s *ExtractScheduler) Reschedule(ctx context.Context) error {
	if s.IsRunning() {
		s.Stop()
	}
	return s.Start(ctx)
}

// RunNow triggers an immediate extraction in the background
func (s *ExtractScheduler) RunNow() {
	go func() {
		_ = s.RunOnce()
	}()
}

func (s *ExtractScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next extraction will occur
func (s *ExtractScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunOnce performs one extraction and records its outcome. Runs triggered
// by the schedule and by the watcher never overlap.
func (s *ExtractScheduler) RunOnce() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	log.Printf("Extract: reading %s", s.source.Name)
	startTime := time.Now()

	result, err := s.pipeline.Import(s.source)
	if err != nil {
		errMsg := fmt.Sprintf("Export failed: %v", err)
		log.Printf("ERROR: Extract: %s", errMsg)
		_ = s.settingsStore.SetExtractStatus(StatusFailed, errMsg)
		return err
	}

	if result.SourcesFailed > 0 {
		errMsg := fmt.Sprintf("Source %s could not be read", s.source.Name)
		log.Printf("Extract: %s", errMsg)
		_ = s.settingsStore.SetExtractStatus(StatusFailed, errMsg)
		return nil
	}

	if s.index != nil && result.NotesAdded > 0 {
		if err := s.refreshIndex(); err != nil {
			log.Printf("WARNING: Extract: failed to refresh search index: %v", err)
		}
	}

	successMsg := fmt.Sprintf("Read %d payloads, added %d notes, skipped %d in %v",
		result.PayloadsRead, result.NotesAdded, result.NotesSkipped,
		time.Since(startTime).Round(time.Millisecond))
	log.Printf("Extract: %s", successMsg)
	_ = s.settingsStore.SetExtractStatus(StatusSuccess, successMsg)
	return nil
}

func (s *ExtractScheduler) refreshIndex() error {
	count, err := s.index.Rebuild(s.collection)
	if err != nil {
		return err
	}
	return s.settingsStore.SetIndexStatus(s.source.Name, count)
}
