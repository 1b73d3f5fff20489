package entities

import "time"

type Job struct {
	ID                  int
	HrID                int `gorm:"index"`
	HR                  HR  `gorm:"foreignKey:HrID;constraint:OnDelete:CASCADE"`
	Title               string
	Description         string
	RequiredExperience  int
	Location            string
	SalaryRange         string
	AIGeneratedSummary  string
	IsActive            bool `gorm:"default:true;index"`
	ExpiryDate          *time.Time
	CreatedAt           time.Time
}
