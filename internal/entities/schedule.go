package entities

import (
	"fmt"
	"strings"
	"time"
)

type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleReviewing ScheduleStatus = "reviewing"
	ScheduleRejected  ScheduleStatus = "rejected"
	ScheduleHired     ScheduleStatus = "hired"
)

// ToScheduleStatus normalizes case-insensitive input to the stored lowercase form.
func ToScheduleStatus(s string) (ScheduleStatus, error) {
	switch ScheduleStatus(strings.ToLower(s)) {
	case ScheduleScheduled:
		return ScheduleScheduled, nil
	case ScheduleReviewing:
		return ScheduleReviewing, nil
	case ScheduleRejected:
		return ScheduleRejected, nil
	case ScheduleHired:
		return ScheduleHired, nil
	default:
		return "", fmt.Errorf("invalid schedule status: %v", s)
	}
}

type Schedule struct {
	ID          int
	ApplicantID int       `gorm:"index"`
	Applicant   Applicant `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE"`
	JobID       int       `gorm:"index"`
	Job         Job       `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`

	InterviewTime time.Time
	MeetLink      string
	// CalendarEventID lets Update and Delete remove the event previously
	// created on the HR's calendar. Fallback links carry a synthetic id.
	CalendarEventID string
	Notes           string
	Status          ScheduleStatus `gorm:"default:scheduled"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScheduleDetails is the joined read model returned by every orchestrator
// operation: Schedule columns plus the candidate and job fields needed for
// display and notifications.
type ScheduleDetails struct {
	ID              int
	ApplicantID     int
	JobID           int
	InterviewTime   time.Time
	MeetLink        string
	CalendarEventID string
	Notes           string
	Status          ScheduleStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time

	ApplicantName  string
	ApplicantEmail string
	ApplicantPhone string
	JobTitle       string
	JobHrID        int
}

// SchedulePatch carries the independently-optional fields of a partial
// update. Nil means "keep the stored value".
type SchedulePatch struct {
	InterviewTime   *time.Time
	MeetLink        *string
	CalendarEventID *string
	Notes           *string
	Status          *ScheduleStatus
}

// Changes merges the patch into a column map; the caller applies it in one
// update statement instead of assembling clauses by hand.
func (p SchedulePatch) Changes() map[string]any {
	changes := map[string]any{}
	if p.InterviewTime != nil {
		changes["interview_time"] = *p.InterviewTime
	}
	if p.MeetLink != nil {
		changes["meet_link"] = *p.MeetLink
	}
	if p.CalendarEventID != nil {
		changes["calendar_event_id"] = *p.CalendarEventID
	}
	if p.Notes != nil {
		changes["notes"] = *p.Notes
	}
	if p.Status != nil {
		changes["status"] = *p.Status
	}
	return changes
}
