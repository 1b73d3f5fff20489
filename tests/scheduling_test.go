package tests

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/velocityhr/scheduler/internal/clients/gcal"
	"github.com/velocityhr/scheduler/internal/entities"
	"github.com/velocityhr/scheduler/internal/repositories"
	"github.com/velocityhr/scheduler/internal/services"
)

var fallbackLinkPattern = regexp.MustCompile(`^https://meet\.[^/]+/[a-z0-9]{10,12}$`)

func applicantStatus(t *testing.T) entities.ApplicantStatus {
	applicant, err := repositories.NewApplicantsRepository(dbCtx.DB).GetByID(context.Background(), applicantID)
	assert.NoError(t, err)
	return applicant.Status
}

func Test_Create_WithConnectedCalendar_UsesProviderLink(t *testing.T) {

	defer clearSchedules()

	calendar := &mockCalendar{}
	email := &mockEmailSender{}
	scheduler, bus := newTestEnvironment(calendar, email)

	details, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Notes:         "bring portfolio",
	})
	bus.WaitAsync()

	assert.NoError(t, err)
	assert.Equal(t, entities.ScheduleScheduled, details.Status)
	assert.Regexp(t, `^https://meet\.google\.com/real-link-\d+$`, details.MeetLink)
	assert.Equal(t, entities.ApplicantScheduled, applicantStatus(t))

	sent := email.sentMessages()
	assert.Len(t, sent, 1)
	assert.Equal(t, []string{"jane@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Subject, "Interview invitation")
}

func Test_Create_WithFailingCalendar_FallsBackAndStillSucceeds(t *testing.T) {

	defer clearSchedules()

	calendar := &mockCalendar{}
	calendar.failWith(errors.New("provider is down"))
	email := &mockEmailSender{}
	scheduler, bus := newTestEnvironment(calendar, email)

	details, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Notes:         "bring portfolio",
	})
	bus.WaitAsync()

	assert.NoError(t, err)
	assert.Equal(t, entities.ScheduleScheduled, details.Status)
	assert.Regexp(t, fallbackLinkPattern, details.MeetLink)
	assert.Equal(t, entities.ApplicantScheduled, applicantStatus(t))
	assert.Len(t, email.sentMessages(), 1)
}

func Test_Create_WithDisconnectedCalendar_FallsBack(t *testing.T) {

	defer clearSchedules()

	calendar := &mockCalendar{}
	calendar.failWith(gcal.ErrNotConnected)
	email := &mockEmailSender{}
	scheduler, bus := newTestEnvironment(calendar, email)

	details, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	bus.WaitAsync()

	assert.NoError(t, err)
	assert.Regexp(t, fallbackLinkPattern, details.MeetLink)
	assert.Len(t, email.sentMessages(), 1)
}

func Test_Update_OnlyChangedTimeProducesNewLink(t *testing.T) {

	defer clearSchedules()

	calendar := &mockCalendar{}
	email := &mockEmailSender{}
	scheduler, bus := newTestEnvironment(calendar, email)

	created, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	notes := "updated notes"
	unchanged, err := scheduler.Update(context.Background(), ownerHrID, created.ID,
		services.UpdateScheduleRequest{Notes: &notes})
	assert.NoError(t, err)
	assert.Equal(t, created.MeetLink, unchanged.MeetLink)
	assert.Equal(t, notes, unchanged.Notes)

	newTime := time.Date(2025, 3, 2, 14, 0, 0, 0, time.UTC)
	changed, err := scheduler.Update(context.Background(), ownerHrID, created.ID,
		services.UpdateScheduleRequest{InterviewTime: &newTime})
	bus.WaitAsync()

	assert.NoError(t, err)
	assert.NotEqual(t, created.MeetLink, changed.MeetLink)
	assert.True(t, changed.InterviewTime.Equal(newTime))
	//the superseded provider event is cleaned up
	assert.Contains(t, calendar.deleted, created.CalendarEventID)
	//one invitation plus two update notices
	assert.Len(t, email.sentMessages(), 3)
}

func Test_Delete_RevertsApplicantAndSendsCancellation(t *testing.T) {

	defer clearSchedules()

	calendar := &mockCalendar{}
	email := &mockEmailSender{}
	scheduler, bus := newTestEnvironment(calendar, email)

	created, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
	assert.Equal(t, entities.ApplicantScheduled, applicantStatus(t))

	removedApplicantID, err := scheduler.Delete(context.Background(), ownerHrID, created.ID, "position filled")
	bus.WaitAsync()

	assert.NoError(t, err)
	assert.Equal(t, applicantID, removedApplicantID)
	assert.Equal(t, entities.ApplicantReviewed, applicantStatus(t))

	sent := email.sentMessages()
	assert.Len(t, sent, 2)
	assert.Contains(t, sent[1].Subject, "Interview canceled")
	assert.Contains(t, sent[1].Text, "position filled")

	_, err = scheduler.Get(context.Background(), ownerHrID, created.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func Test_ForeignSchedule_IsIndistinguishableFromMissing(t *testing.T) {

	defer clearSchedules()

	calendar := &mockCalendar{}
	email := &mockEmailSender{}
	scheduler, _ := newTestEnvironment(calendar, email)

	created, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	_, foreignErr := scheduler.Get(context.Background(), foreignHrID, created.ID)
	_, missingErr := scheduler.Get(context.Background(), ownerHrID, 99999)
	assert.ErrorIs(t, foreignErr, services.ErrNotFound)
	assert.ErrorIs(t, missingErr, services.ErrNotFound)
	assert.Equal(t, foreignErr, missingErr)

	_, err = scheduler.Delete(context.Background(), foreignHrID, created.ID, "")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, entities.ApplicantScheduled, applicantStatus(t))

	_, err = scheduler.Update(context.Background(), foreignHrID, created.ID, services.UpdateScheduleRequest{})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func Test_PatchStatus_NormalizesAndRejects(t *testing.T) {

	defer clearSchedules()

	calendar := &mockCalendar{}
	email := &mockEmailSender{}
	scheduler, bus := newTestEnvironment(calendar, email)

	created, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
	bus.WaitAsync()
	sentBefore := len(email.sentMessages())

	patched, err := scheduler.PatchStatus(context.Background(), ownerHrID, created.ID, "Hired")
	assert.NoError(t, err)
	assert.Equal(t, entities.ScheduleHired, patched.Status)

	_, err = scheduler.PatchStatus(context.Background(), ownerHrID, created.ID, "archived")
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	current, err := scheduler.Get(context.Background(), ownerHrID, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, entities.ScheduleHired, current.Status)

	//status changes are silent: no calendar work, no candidate email
	bus.WaitAsync()
	assert.Len(t, email.sentMessages(), sentBefore)
}

func Test_List_ReturnsOwnSchedulesOrderedByTime(t *testing.T) {

	defer clearSchedules()

	calendar := &mockCalendar{}
	email := &mockEmailSender{}
	scheduler, _ := newTestEnvironment(calendar, email)

	later, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	earlier, err := scheduler.Create(context.Background(), ownerHrID, services.CreateScheduleRequest{
		JobID:         jobID,
		ApplicantID:   applicantID,
		InterviewTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	listed, err := scheduler.List(context.Background(), ownerHrID)
	assert.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.Equal(t, earlier.ID, listed[0].ID)
	assert.Equal(t, later.ID, listed[1].ID)

	foreign, err := scheduler.List(context.Background(), foreignHrID)
	assert.NoError(t, err)
	assert.Empty(t, foreign)
}
