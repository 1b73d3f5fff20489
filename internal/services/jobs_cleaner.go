package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type jobCleanupRepository interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// JobsCleaner deactivates postings past their expiry date once a day, so new
// schedules can't be booked against jobs that are no longer open.
type JobsCleaner struct {
	jobs jobCleanupRepository
	cron *cron.Cron
}

func NewJobsCleaner(jobs jobCleanupRepository) (*JobsCleaner, error) {

	jc := &JobsCleaner{
		jobs: jobs,
		cron: cron.New(),
	}

	_, err := jc.cron.AddFunc("0 0 * * *", jc.deactivateExpiredJobs)
	if err != nil {
		return nil, err
	}

	jc.cron.Start()
	log.Info("jobs cleaner started")
	return jc, nil
}

func (jc *JobsCleaner) Stop() {
	jc.cron.Stop()
}

func (jc *JobsCleaner) deactivateExpiredJobs() {
	rowsAffected, err := jc.jobs.DeactivateExpired(context.Background(), time.Now())
	if err != nil {
		log.Errorf("Failed to deactivate expired jobs: %v", err)
	} else {
		log.Infof("Expired jobs deactivated at %v, affected rows: %v", time.Now(), rowsAffected)
	}
}
