package repositories

import (
	"context"
	"time"

	"github.com/velocityhr/scheduler/internal/entities"
	"gorm.io/gorm"
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

// GetOwned loads a job only when it belongs to the given HR. Missing and
// foreign jobs are both gorm.ErrRecordNotFound; callers must not be able to
// distinguish the two.
func (repo *Jobs) GetOwned(ctx context.Context, jobID int, hrID int) (*entities.Job, error) {

	var job entities.Job
	if err := repo.db.WithContext(ctx).First(&job, "id = ? AND hr_id = ?", jobID, hrID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) Add(ctx context.Context, job *entities.Job) error {
	return repo.db.WithContext(ctx).Create(job).Error
}

// DeactivateExpired flips the active flag off for jobs past their expiry date.
func (repo *Jobs) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&entities.Job{}).
		Where("is_active = ? AND expiry_date IS NOT NULL AND expiry_date < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
