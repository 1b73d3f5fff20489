package services

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/velocityhr/scheduler/internal/clients/gcal"
	"github.com/velocityhr/scheduler/internal/entities"
	"github.com/velocityhr/scheduler/internal/events"
	"github.com/velocityhr/scheduler/internal/logger"
	"github.com/velocityhr/scheduler/internal/metrics"
	"gorm.io/gorm"
)

// ErrNotFound covers both truly missing records and records owned by another
// HR. Callers must not be able to tell the two apart.
var ErrNotFound = errors.New("record not found")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", e.Field, e.Message)
}

type jobsRepository interface {
	GetOwned(ctx context.Context, jobID int, hrID int) (*entities.Job, error)
}

type applicantsRepository interface {
	GetForJob(ctx context.Context, applicantID int, jobID int) (*entities.Applicant, error)
}

type schedulesRepository interface {
	Add(ctx context.Context, schedule *entities.Schedule) error
	GetOwned(ctx context.Context, scheduleID int, hrID int) (*entities.ScheduleDetails, error)
	ListOwned(ctx context.Context, hrID int) ([]entities.ScheduleDetails, error)
	ApplyPatch(ctx context.Context, scheduleID int, patch entities.SchedulePatch) error
	Remove(ctx context.Context, scheduleID int, applicantID int) error
}

type meetingLinkProvider interface {
	Get(ctx context.Context, hrID int, spec gcal.EventSpec) MeetingLink
	Discard(ctx context.Context, hrID int, eventID string)
}

type CreateScheduleRequest struct {
	JobID         int       `validate:"required,gt=0"`
	ApplicantID   int       `validate:"required,gt=0"`
	InterviewTime time.Time `validate:"required"`
	Notes         string    `validate:"max=2000"`
}

// UpdateScheduleRequest carries independently-optional fields; nil keeps the
// stored value.
type UpdateScheduleRequest struct {
	InterviewTime *time.Time
	Notes         *string `validate:"omitempty,max=2000"`
	Status        *string
}

const interviewDurationMinutes = 45

// Scheduler coordinates the schedule lifecycle: ownership checks, meeting
// link acquisition, the transactional write, and the notification event.
// Notification delivery never affects an operation's outcome.
type Scheduler struct {
	bus        EventBus.Bus
	jobs       jobsRepository
	applicants applicantsRepository
	schedules  schedulesRepository
	meetings   meetingLinkProvider
	validate   *validator.Validate
}

func NewScheduler(bus EventBus.Bus, jobs jobsRepository, applicants applicantsRepository,
	schedules schedulesRepository, meetings meetingLinkProvider) *Scheduler {

	return &Scheduler{
		bus:        bus,
		jobs:       jobs,
		applicants: applicants,
		schedules:  schedules,
		meetings:   meetings,
		validate:   validator.New(),
	}
}

// Create books an interview: verifies the job belongs to the HR and the
// applicant applied to that job, obtains a meeting link (real or fallback),
// inserts the schedule together with the applicant status promotion, then
// emits the invitation event.
func (s *Scheduler) Create(ctx context.Context, hrID int, req CreateScheduleRequest) (*entities.ScheduleDetails, error) {

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetOwned(ctx, req.JobID, hrID)
	if err != nil {
		return nil, s.mapDbError(err, "failed to get job")
	}

	applicant, err := s.applicants.GetForJob(ctx, req.ApplicantID, req.JobID)
	if err != nil {
		return nil, s.mapDbError(err, "failed to get applicant")
	}

	link := s.meetings.Get(ctx, hrID, gcal.EventSpec{
		Summary:         fmt.Sprintf("Interview: %v - %v", applicant.FullName, job.Title),
		Description:     req.Notes,
		Start:           req.InterviewTime,
		DurationMinutes: interviewDurationMinutes,
		AttendeeEmail:   applicant.Email,
	})

	schedule := &entities.Schedule{
		ApplicantID:     applicant.ID,
		JobID:           job.ID,
		InterviewTime:   req.InterviewTime,
		MeetLink:        link.URL,
		CalendarEventID: link.EventID,
		Notes:           req.Notes,
		Status:          entities.ScheduleScheduled,
	}
	if err = s.schedules.Add(ctx, schedule); err != nil {
		s.meetings.Discard(context.Background(), hrID, link.EventID)
		return nil, s.mapDbError(err, "failed to add schedule")
	}

	metrics.ScheduleOperationsCounter.WithLabelValues("create").Inc()
	log.Infof("scheduled interview %v for applicant %v via %v link", schedule.ID, applicant.ID, link.Provider)

	s.bus.Publish(events.InterviewScheduledTopic, events.InterviewScheduled{
		ScheduleID:     schedule.ID,
		CandidateName:  applicant.FullName,
		CandidateEmail: applicant.Email,
		JobTitle:       job.Title,
		InterviewTime:  schedule.InterviewTime,
		MeetLink:       schedule.MeetLink,
		Notes:          schedule.Notes,
	})

	return s.schedules.GetOwned(ctx, schedule.ID, hrID)
}

func (s *Scheduler) Get(ctx context.Context, hrID int, scheduleID int) (*entities.ScheduleDetails, error) {

	details, err := s.schedules.GetOwned(ctx, scheduleID, hrID)
	if err != nil {
		return nil, s.mapDbError(err, "failed to get schedule")
	}
	return details, nil
}

func (s *Scheduler) List(ctx context.Context, hrID int) ([]entities.ScheduleDetails, error) {

	details, err := s.schedules.ListOwned(ctx, hrID)
	if err != nil {
		return nil, s.mapDbError(err, "failed to list schedules")
	}
	return details, nil
}

// Update applies a partial edit. A changed interview time means a fresh
// meeting link; the superseded calendar event is discarded best-effort. The
// candidate always receives an updated invitation, even when only the notes
// changed.
func (s *Scheduler) Update(ctx context.Context, hrID int, scheduleID int,
	req UpdateScheduleRequest) (*entities.ScheduleDetails, error) {

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	patch := entities.SchedulePatch{
		InterviewTime: req.InterviewTime,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		status, err := entities.ToScheduleStatus(*req.Status)
		if err != nil {
			return nil, &ValidationError{Field: "status", Message: err.Error()}
		}
		patch.Status = &status
	}

	current, err := s.schedules.GetOwned(ctx, scheduleID, hrID)
	if err != nil {
		return nil, s.mapDbError(err, "failed to get schedule")
	}

	timeChanged := req.InterviewTime != nil && !req.InterviewTime.Equal(current.InterviewTime)
	if timeChanged {
		link := s.meetings.Get(ctx, hrID, gcal.EventSpec{
			Summary:         fmt.Sprintf("Interview: %v - %v", current.ApplicantName, current.JobTitle),
			Description:     current.Notes,
			Start:           *req.InterviewTime,
			DurationMinutes: interviewDurationMinutes,
			AttendeeEmail:   current.ApplicantEmail,
		})
		patch.MeetLink = &link.URL
		patch.CalendarEventID = &link.EventID
	}

	if err = s.schedules.ApplyPatch(ctx, scheduleID, patch); err != nil {
		return nil, s.mapDbError(err, "failed to update schedule")
	}

	if timeChanged {
		s.meetings.Discard(context.Background(), hrID, current.CalendarEventID)
	}

	updated, err := s.schedules.GetOwned(ctx, scheduleID, hrID)
	if err != nil {
		return nil, s.mapDbError(err, "failed to get updated schedule")
	}

	metrics.ScheduleOperationsCounter.WithLabelValues("update").Inc()
	log.Infof("updated schedule %v, time changed: %v", scheduleID, timeChanged)

	s.bus.Publish(events.InterviewUpdatedTopic, events.InterviewUpdated{
		ScheduleID:     updated.ID,
		CandidateName:  updated.ApplicantName,
		CandidateEmail: updated.ApplicantEmail,
		JobTitle:       updated.JobTitle,
		InterviewTime:  updated.InterviewTime,
		MeetLink:       updated.MeetLink,
		Notes:          updated.Notes,
	})

	return updated, nil
}

// Delete cancels the interview: removes the schedule, reverts the applicant
// to 'reviewed', discards the calendar event and emits the cancellation
// event. Returns the applicant id of the removed schedule.
func (s *Scheduler) Delete(ctx context.Context, hrID int, scheduleID int, reason string) (int, error) {

	current, err := s.schedules.GetOwned(ctx, scheduleID, hrID)
	if err != nil {
		return 0, s.mapDbError(err, "failed to get schedule")
	}

	if err = s.schedules.Remove(ctx, scheduleID, current.ApplicantID); err != nil {
		return 0, s.mapDbError(err, "failed to remove schedule")
	}

	s.meetings.Discard(context.Background(), hrID, current.CalendarEventID)

	metrics.ScheduleOperationsCounter.WithLabelValues("delete").Inc()
	log.Infof("canceled schedule %v for applicant %v", scheduleID, current.ApplicantID)

	s.bus.Publish(events.InterviewCanceledTopic, events.InterviewCanceled{
		ScheduleID:     current.ID,
		CandidateName:  current.ApplicantName,
		CandidateEmail: current.ApplicantEmail,
		JobTitle:       current.JobTitle,
		Reason:         reason,
	})

	return current.ApplicantID, nil
}

// PatchStatus is a pure field update: no meeting link work and no candidate
// notification, unlike Create and Update.
func (s *Scheduler) PatchStatus(ctx context.Context, hrID int, scheduleID int, status string) (*entities.ScheduleDetails, error) {

	normalized, err := entities.ToScheduleStatus(status)
	if err != nil {
		return nil, &ValidationError{Field: "status", Message: err.Error()}
	}

	if _, err = s.schedules.GetOwned(ctx, scheduleID, hrID); err != nil {
		return nil, s.mapDbError(err, "failed to get schedule")
	}

	patch := entities.SchedulePatch{Status: &normalized}
	if err = s.schedules.ApplyPatch(ctx, scheduleID, patch); err != nil {
		return nil, s.mapDbError(err, "failed to patch schedule status")
	}

	metrics.ScheduleOperationsCounter.WithLabelValues("status_patch").Inc()
	return s.schedules.GetOwned(ctx, scheduleID, hrID)
}

func (s *Scheduler) validateRequest(req any) error {

	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return &ValidationError{
			Field:   first.Field(),
			Message: fmt.Sprintf("failed on '%v' rule", first.Tag()),
		}
	}
	return &ValidationError{Field: "request", Message: err.Error()}
}

func (s *Scheduler) mapDbError(err error, msg string) error {

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("%v: %v", msg, err)
	return errors.Wrap(err, msg)
}
