package tests

import (
	"context"
	"fmt"
	"sync"

	"github.com/velocityhr/scheduler/internal/clients/gcal"
	"github.com/velocityhr/scheduler/internal/clients/resend"
)

type mockCalendar struct {
	mu      sync.Mutex
	err     error
	nextID  int
	deleted []string
}

func (m *mockCalendar) CreateEvent(ctx context.Context, hrID int, spec gcal.EventSpec) (*gcal.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	m.nextID++
	return &gcal.Event{
		ID:       fmt.Sprintf("evt-%d", m.nextID),
		MeetLink: fmt.Sprintf("https://meet.google.com/real-link-%d", m.nextID),
		Start:    spec.Start,
	}, nil
}

func (m *mockCalendar) DeleteEvent(ctx context.Context, hrID int, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, eventID)
	return nil
}

func (m *mockCalendar) failWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type mockEmailSender struct {
	mu   sync.Mutex
	sent []resend.Message
}

func (m *mockEmailSender) Send(ctx context.Context, message resend.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, message)
	return fmt.Sprintf("email-%d", len(m.sent)), nil
}

func (m *mockEmailSender) sentMessages() []resend.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]resend.Message{}, m.sent...)
}
