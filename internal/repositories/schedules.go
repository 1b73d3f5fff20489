package repositories

import (
	"context"
	"time"

	"github.com/velocityhr/scheduler/internal/entities"
	"gorm.io/gorm"
)

type Schedules struct {
	db *gorm.DB
}

func NewSchedulesRepository(db *gorm.DB) *Schedules {
	return &Schedules{db: db}
}

const detailColumns = "schedules.*, applicants.full_name AS applicant_name, " +
	"applicants.email AS applicant_email, applicants.phone AS applicant_phone, " +
	"jobs.title AS job_title, jobs.hr_id AS job_hr_id"

func (repo *Schedules) withJoins(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Table("schedules").
		Select(detailColumns).
		Joins("JOIN applicants ON applicants.id = schedules.applicant_id").
		Joins("JOIN jobs ON jobs.id = schedules.job_id")
}

// Add inserts the schedule and moves the applicant to 'scheduled' in one
// transaction, so a failed insert can't leave the applicant half-promoted.
func (repo *Schedules) Add(ctx context.Context, schedule *entities.Schedule) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(schedule).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Applicant{}).Where("id = ?", schedule.ApplicantID).
			Update("status", entities.ApplicantScheduled).Error
	})
}

// GetOwned returns the joined detail row, but only when the schedule's job
// belongs to the given HR. A schedule owned by someone else scans identically
// to one that does not exist.
func (repo *Schedules) GetOwned(ctx context.Context, scheduleID int, hrID int) (*entities.ScheduleDetails, error) {

	var details entities.ScheduleDetails
	err := repo.withJoins(ctx).
		Where("schedules.id = ? AND jobs.hr_id = ?", scheduleID, hrID).
		Take(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (repo *Schedules) ListOwned(ctx context.Context, hrID int) ([]entities.ScheduleDetails, error) {

	var details []entities.ScheduleDetails
	err := repo.withJoins(ctx).
		Where("jobs.hr_id = ?", hrID).
		Order("schedules.interview_time ASC").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

// ApplyPatch writes the non-nil patch fields in a single update.
func (repo *Schedules) ApplyPatch(ctx context.Context, scheduleID int, patch entities.SchedulePatch) error {

	changes := patch.Changes()
	if len(changes) == 0 {
		return nil
	}
	changes["updated_at"] = time.Now().UTC()

	return repo.db.WithContext(ctx).Model(&entities.Schedule{}).Where("id = ?", scheduleID).
		Updates(changes).Error
}

// Remove deletes the schedule and reverts the applicant to 'reviewed' in one
// transaction.
func (repo *Schedules) Remove(ctx context.Context, scheduleID int, applicantID int) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entities.Schedule{ID: scheduleID}).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Applicant{}).Where("id = ?", applicantID).
			Update("status", entities.ApplicantReviewed).Error
	})
}
