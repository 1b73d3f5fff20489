package entities

import "time"

type ApplicantStatus string

const (
	ApplicantPending   ApplicantStatus = "pending"
	ApplicantReviewed  ApplicantStatus = "reviewed"
	ApplicantScheduled ApplicantStatus = "scheduled"
	ApplicantRejected  ApplicantStatus = "rejected"
	ApplicantHired     ApplicantStatus = "hired"
)

type Applicant struct {
	ID              int
	JobID           int `gorm:"index"`
	Job             Job `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	FullName        string
	Email           string
	Phone           string
	ExperienceYears int
	DetailBox       string
	ResumeURL       string
	// AIScore and AISummary are filled asynchronously by the resume analyzer
	// and stay nil until the first analysis completes.
	AIScore   *float64
	AISummary *string
	Status    ApplicantStatus `gorm:"default:pending"`
	AppliedAt time.Time       `gorm:"autoCreateTime"`
}
