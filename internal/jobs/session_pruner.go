package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/stackmentor/backend/internal/repository"
	"github.com/stackmentor/backend/pkg/logger"
)

// SessionPruner purges soft-deleted chat sessions (and their transcripts)
// once they have aged past the retention window. Deleted sessions stay
// recoverable until then.
type SessionPruner struct {
	sessionRepo *repository.SessionRepository
	retention   time.Duration
	schedule    string
	cron        *cron.Cron
}

func NewSessionPruner(sessionRepo *repository.SessionRepository, retention time.Duration, schedule string) *SessionPruner {
	if schedule == "" {
		schedule = "0 3 * * *"
	}
	return &SessionPruner{
		sessionRepo: sessionRepo,
		retention:   retention,
		schedule:    schedule,
		cron:        cron.New(),
	}
}

// Start schedules the prune job.
func (p *SessionPruner) Start() error {
	_, err := p.cron.AddFunc(p.schedule, func() {
		if err := p.RunOnce(); err != nil {
			logger.Log.Error("Session prune run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session pruner: %w", err)
	}

	p.cron.Start()
	logger.Log.Info("Session pruner started",
		zap.String("schedule", p.schedule),
		zap.Duration("retention", p.retention),
	)
	return nil
}

// Stop halts the scheduler. Already-running prune calls finish.
func (p *SessionPruner) Stop() {
	if p.cron != nil {
		p.cron.Stop()
	}
}

// RunOnce performs a single prune pass.
func (p *SessionPruner) RunOnce() error {
	cutoff := time.Now().Add(-p.retention)

	purged, err := p.sessionRepo.PurgeSessionsDeletedBefore(cutoff)
	if err != nil {
		return err
	}

	if purged > 0 {
		logger.Log.Info("Purged expired chat sessions",
			zap.Int64("count", purged),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
