package scheduler

import (
	"fmt"
	"log"

	"github.com/cybernetics669/nadlan-website/internal/cleanup"
	"github.com/cybernetics669/nadlan-website/internal/config"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the nightly orphaned-upload sweep.
type Scheduler struct {
	cron      *cron.Cron
	sweeper   *cleanup.Service
	config    *config.SweepConfig
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(sweeper *cleanup.Service, cfg *config.SweepConfig) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		config:  cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		log.Println("Scheduler: Upload sweep is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting nightly upload sweep...")
		if err := s.runSweep(); err != nil {
			log.Printf("Scheduler: Upload sweep failed: %v", err)
		} else {
			log.Println("Scheduler: Upload sweep completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with daily sweep at %s (cron: %s)", s.config.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

func (s *Scheduler) runSweep() error {
	cfg := cleanup.DefaultSweepConfig()
	if s.config.RetentionDays > 0 {
		cfg.RetentionDays = s.config.RetentionDays
	}
	if s.config.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = s.config.MaxDeletionCount
	}
	cfg.DryRun = s.config.DryRun

	result, err := s.sweeper.Sweep(cfg)
	if err != nil {
		return err
	}
	log.Printf("Scheduler: Sweep result: scanned=%d orphans=%d deleted=%d dry-run=%v",
		result.ScannedCount, result.OrphanCount, result.DeletedCount, result.DryRun)
	return nil
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "03:00" -> "0 3 * * *" (run at 3:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Printf("Scheduler: Failed to parse time '%s', using default 03:00", timeStr)
	return "0 3 * * *"
}
