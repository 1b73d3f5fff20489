package repositories

import (
	"context"

	"github.com/velocityhr/scheduler/internal/entities"
	"gorm.io/gorm"
)

type Applicants struct {
	db *gorm.DB
}

func NewApplicantsRepository(db *gorm.DB) *Applicants {
	return &Applicants{db: db}
}

func (repo *Applicants) GetByID(ctx context.Context, applicantID int) (*entities.Applicant, error) {

	var applicant entities.Applicant
	if err := repo.db.WithContext(ctx).First(&applicant, "id = ?", applicantID).Error; err != nil {
		return nil, err
	}
	return &applicant, nil
}

// GetForJob loads an applicant only when they applied to the given job.
func (repo *Applicants) GetForJob(ctx context.Context, applicantID int, jobID int) (*entities.Applicant, error) {

	var applicant entities.Applicant
	if err := repo.db.WithContext(ctx).
		First(&applicant, "id = ? AND job_id = ?", applicantID, jobID).Error; err != nil {
		return nil, err
	}
	return &applicant, nil
}

func (repo *Applicants) Add(ctx context.Context, applicant *entities.Applicant) error {
	return repo.db.WithContext(ctx).Create(applicant).Error
}

func (repo *Applicants) UpdateStatus(ctx context.Context, applicantID int, status entities.ApplicantStatus) error {
	return repo.db.WithContext(ctx).Model(&entities.Applicant{}).Where("id = ?", applicantID).
		Update("status", status).Error
}

// SetAnalysis writes back the asynchronous AI resume evaluation.
func (repo *Applicants) SetAnalysis(ctx context.Context, applicantID int, score float64, summary string) error {
	return repo.db.WithContext(ctx).Model(&entities.Applicant{}).Where("id = ?", applicantID).
		Updates(map[string]any{
			"ai_score":   score,
			"ai_summary": summary,
		}).Error
}
