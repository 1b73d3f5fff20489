package services

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/velocityhr/scheduler/internal/clients/resend"
	"github.com/velocityhr/scheduler/internal/events"
)

type mockEmailClient struct {
	mock.Mock
}

func (m *mockEmailClient) Send(ctx context.Context, message resend.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func Test_Notifier_OnInterviewScheduled_SendsInvitation(t *testing.T) {

	bus := EventBus.New()
	email := &mockEmailClient{}

	var sent resend.Message
	email.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(resend.Message)
		}).
		Return("email-1", nil).Once()

	_, err := NewNotifier(bus, email, "HR <hr@example.com>", time.Second)
	assert.NoError(t, err)

	bus.Publish(events.InterviewScheduledTopic, events.InterviewScheduled{
		ScheduleID:     42,
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		JobTitle:       "Backend Engineer",
		InterviewTime:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		MeetLink:       "https://meet.google.com/abc-defg-hij",
		Notes:          "bring portfolio",
	})
	bus.WaitAsync()

	email.AssertExpectations(t)
	assert.Equal(t, "HR <hr@example.com>", sent.From)
	assert.Equal(t, []string{"jane@example.com"}, sent.To)
	assert.Equal(t, "Interview invitation: Backend Engineer", sent.Subject)
	assert.Contains(t, sent.HTML, "https://meet.google.com/abc-defg-hij")
	assert.Contains(t, sent.HTML, "Saturday, March 1, 2025 at 10:00 AM UTC")
	assert.Contains(t, sent.Text, "bring portfolio")
}

func Test_Notifier_OnInterviewUpdated_SendsUpdateNotice(t *testing.T) {

	bus := EventBus.New()
	email := &mockEmailClient{}

	var sent resend.Message
	email.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(resend.Message)
		}).
		Return("email-2", nil).Once()

	_, err := NewNotifier(bus, email, "hr@example.com", time.Second)
	assert.NoError(t, err)

	bus.Publish(events.InterviewUpdatedTopic, events.InterviewUpdated{
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		JobTitle:       "Backend Engineer",
		InterviewTime:  time.Date(2025, 3, 2, 14, 0, 0, 0, time.UTC),
		MeetLink:       "https://meet.google.com/new-link-xyz",
	})
	bus.WaitAsync()

	email.AssertExpectations(t)
	assert.Equal(t, "Interview updated: Backend Engineer", sent.Subject)
	assert.Contains(t, sent.HTML, "has been updated")
}

func Test_Notifier_OnInterviewCanceled_SendsCancellationWithReason(t *testing.T) {

	bus := EventBus.New()
	email := &mockEmailClient{}

	var sent resend.Message
	email.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(resend.Message)
		}).
		Return("email-3", nil).Once()

	_, err := NewNotifier(bus, email, "hr@example.com", time.Second)
	assert.NoError(t, err)

	bus.Publish(events.InterviewCanceledTopic, events.InterviewCanceled{
		CandidateName:  "Jane Doe",
		CandidateEmail: "jane@example.com",
		JobTitle:       "Backend Engineer",
		Reason:         "position filled",
	})
	bus.WaitAsync()

	email.AssertExpectations(t)
	assert.Equal(t, "Interview canceled: Backend Engineer", sent.Subject)
	assert.Contains(t, sent.HTML, "position filled")
	assert.Contains(t, sent.Text, "position filled")
}

func Test_Notifier_SendFailureIsAbsorbed(t *testing.T) {

	bus := EventBus.New()
	email := &mockEmailClient{}
	email.On("Send", mock.Anything, mock.Anything).
		Return("", errors.New("provider down")).Once()

	_, err := NewNotifier(bus, email, "hr@example.com", time.Second)
	assert.NoError(t, err)

	bus.Publish(events.InterviewScheduledTopic, events.InterviewScheduled{
		CandidateEmail: "jane@example.com",
		JobTitle:       "Backend Engineer",
		InterviewTime:  time.Now(),
	})
	bus.WaitAsync()

	email.AssertExpectations(t)
}
