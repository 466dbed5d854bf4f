// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

type Scheduler struct {
	db   *gorm.DB
	cron *cron.Cron
	now  func() time.Time
}

func New(db *gorm.DB) *Scheduler {
	return &Scheduler{db: db, cron: cron.New(), now: time.Now}
}

// Start registers the token cleanup job under spec and starts the cron loop.
// spec accepts standard five-field expressions and descriptors like
// "@every 1h".
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runTokenCleanup); err != nil {
		return fmt.Errorf("schedule token cleanup %q: %w", spec, err)
	}
	s.cron.Start()
	logger.Info().Str("spec", spec).Msg("scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := PurgeTokens(ctx, s.db, s.now())
	if err != nil {
		logger.Error().Err(err).Msg("token cleanup failed")
		return
	}
	if n > 0 {
		logger.Info().Int64("deleted", n).Msg("token cleanup finished")
	}
}

// PurgeTokens deletes tokens that expired before now or were already used.
func PurgeTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&models.Token{})
	return result.RowsAffected, result.Error
}
