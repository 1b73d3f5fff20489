package services

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/velocityhr/scheduler/internal/clients/gcal"
)

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) CreateEvent(ctx context.Context, hrID int, spec gcal.EventSpec) (*gcal.Event, error) {
	args := m.Called(ctx, hrID, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.Event), args.Error(1)
}

func (m *mockCalendar) DeleteEvent(ctx context.Context, hrID int, eventID string) error {
	return m.Called(ctx, hrID, eventID).Error(0)
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate(ctx context.Context, hrID int) error {
	return m.Called(ctx, hrID).Error(0)
}

var fallbackLinkPattern = regexp.MustCompile(`^https://meet\.example\.com/[a-z0-9]{10,12}$`)

func Test_MeetingLink_WhenCalendarSucceeds_ReturnsRealLink(t *testing.T) {

	calendar := &mockCalendar{}
	calendar.On("CreateEvent", mock.Anything, 1, mock.Anything).
		Return(&gcal.Event{ID: "evt-1", MeetLink: "https://meet.google.com/abc-defg-hij"}, nil).Once()

	provider := NewMeetingLinkProvider(calendar, &mockInvalidator{}, "example.com", time.Second)
	link := provider.Get(context.Background(), 1, gcal.EventSpec{Summary: "Interview"})

	assert.Equal(t, MeetingProviderGoogle, link.Provider)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", link.URL)
	assert.Equal(t, "evt-1", link.EventID)
	calendar.AssertExpectations(t)
}

func Test_MeetingLink_WhenCalendarFails_ReturnsFallbackLink(t *testing.T) {

	calendar := &mockCalendar{}
	calendar.On("CreateEvent", mock.Anything, 1, mock.Anything).
		Return(nil, errors.New("quota exceeded")).Once()

	provider := NewMeetingLinkProvider(calendar, &mockInvalidator{}, "example.com", time.Second)
	link := provider.Get(context.Background(), 1, gcal.EventSpec{Summary: "Interview"})

	assert.Equal(t, MeetingProviderFallback, link.Provider)
	assert.Regexp(t, fallbackLinkPattern, link.URL)
	assert.True(t, strings.HasPrefix(link.EventID, "fallback-"))
}

func Test_MeetingLink_WhenNotConnected_ReturnsFallbackLink(t *testing.T) {

	calendar := &mockCalendar{}
	calendar.On("CreateEvent", mock.Anything, 2, mock.Anything).
		Return(nil, gcal.ErrNotConnected).Once()

	invalidator := &mockInvalidator{}
	provider := NewMeetingLinkProvider(calendar, invalidator, "example.com", time.Second)
	link := provider.Get(context.Background(), 2, gcal.EventSpec{})

	assert.Equal(t, MeetingProviderFallback, link.Provider)
	assert.Regexp(t, fallbackLinkPattern, link.URL)
	invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func Test_MeetingLink_WhenGrantRevoked_InvalidatesCredentials(t *testing.T) {

	calendar := &mockCalendar{}
	calendar.On("CreateEvent", mock.Anything, 3, mock.Anything).
		Return(nil, gcal.ErrInvalidGrant).Once()

	invalidator := &mockInvalidator{}
	invalidator.On("Invalidate", mock.Anything, 3).Return(nil).Once()

	provider := NewMeetingLinkProvider(calendar, invalidator, "example.com", time.Second)
	link := provider.Get(context.Background(), 3, gcal.EventSpec{})

	assert.Equal(t, MeetingProviderFallback, link.Provider)
	invalidator.AssertExpectations(t)
}

func Test_MeetingLink_Discard_SkipsSyntheticEventIDs(t *testing.T) {

	calendar := &mockCalendar{}
	provider := NewMeetingLinkProvider(calendar, &mockInvalidator{}, "example.com", time.Second)

	provider.Discard(context.Background(), 1, "")
	provider.Discard(context.Background(), 1, "fallback-1234567890")

	calendar.AssertNotCalled(t, "DeleteEvent", mock.Anything, mock.Anything, mock.Anything)
}

func Test_MeetingLink_Discard_DeletesRealEvents(t *testing.T) {

	calendar := &mockCalendar{}
	calendar.On("DeleteEvent", mock.Anything, 1, "evt-1").Return(nil).Once()

	provider := NewMeetingLinkProvider(calendar, &mockInvalidator{}, "example.com", time.Second)
	provider.Discard(context.Background(), 1, "evt-1")

	calendar.AssertExpectations(t)
}

func Test_RandomMeetCode_HasExpectedShape(t *testing.T) {

	codePattern := regexp.MustCompile(`^[a-z0-9]{10,12}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, codePattern, randomMeetCode())
	}
}
