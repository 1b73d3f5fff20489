package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/velocityhr/scheduler/internal/clients/gcal"
	"github.com/velocityhr/scheduler/internal/logger"
	"github.com/velocityhr/scheduler/internal/metrics"
)

const (
	MeetingProviderGoogle   = "google"
	MeetingProviderFallback = "fallback"
)

const fallbackEventPrefix = "fallback-"

type calendarClient interface {
	CreateEvent(ctx context.Context, hrID int, spec gcal.EventSpec) (*gcal.Event, error)
	DeleteEvent(ctx context.Context, hrID int, eventID string) error
}

type credentialInvalidator interface {
	Invalidate(ctx context.Context, hrID int) error
}

type MeetingLink struct {
	URL      string
	EventID  string
	Provider string
}

// MeetingLinkProvider issues a meeting link for an interview: a real
// calendar event when the HR's integration works, a synthetic link shaped
// like a real one otherwise.
type MeetingLinkProvider struct {
	calendar       calendarClient
	credentials    credentialInvalidator
	fallbackDomain string
	requestTimeout time.Duration
}

func NewMeetingLinkProvider(calendar calendarClient, credentials credentialInvalidator,
	fallbackDomain string, requestTimeout time.Duration) *MeetingLinkProvider {

	if fallbackDomain == "" {
		fallbackDomain = "google.com"
	}
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	return &MeetingLinkProvider{
		calendar:       calendar,
		credentials:    credentials,
		fallbackDomain: fallbackDomain,
		requestTimeout: requestTimeout,
	}
}

// Get cannot fail. Any error on the real path, timeouts included, degrades to
// the fallback link; only the chosen provider differs, and it is logged and
// counted for auditing.
func (p *MeetingLinkProvider) Get(ctx context.Context, hrID int, spec gcal.EventSpec) MeetingLink {

	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	event, err := p.calendar.CreateEvent(callCtx, hrID, spec)
	if err == nil {
		metrics.MeetingLinksCounter.WithLabelValues(MeetingProviderGoogle).Inc()
		log.Infof("created calendar event %v for hr %v", event.ID, hrID)
		return MeetingLink{URL: event.MeetLink, EventID: event.ID, Provider: MeetingProviderGoogle}
	}

	switch {
	case errors.Is(err, gcal.ErrNotConnected):
		log.Infof("hr %v has no connected calendar, issuing fallback link", hrID)
	case errors.Is(err, gcal.ErrInvalidGrant):
		log.Warnf("hr %v calendar grant was revoked, invalidating stored credentials", hrID)
		if invErr := p.credentials.Invalidate(ctx, hrID); invErr != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to invalidate credentials for hr %v: %v", hrID, invErr)
		}
	default:
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCalendarApi).
			Errorf("failed to create calendar event for hr %v: %v", hrID, err)
	}

	return p.fallbackLink()
}

// Discard removes a superseded calendar event, best-effort. Synthetic event
// ids never reach the provider.
func (p *MeetingLinkProvider) Discard(ctx context.Context, hrID int, eventID string) {

	if eventID == "" || strings.HasPrefix(eventID, fallbackEventPrefix) {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	if err := p.calendar.DeleteEvent(callCtx, hrID, eventID); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCalendarApi).
			Errorf("failed to delete calendar event %v for hr %v: %v", eventID, hrID, err)
	}
}

func (p *MeetingLinkProvider) fallbackLink() MeetingLink {
	metrics.MeetingLinksCounter.WithLabelValues(MeetingProviderFallback).Inc()
	return MeetingLink{
		URL:      fmt.Sprintf("https://meet.%s/%s", p.fallbackDomain, randomMeetCode()),
		EventID:  fmt.Sprintf("%s%d", fallbackEventPrefix, time.Now().UnixNano()),
		Provider: MeetingProviderFallback,
	}
}

const meetCodeCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomMeetCode returns 10 to 12 lowercase alphanumeric characters, visually
// indistinguishable from a real conference code.
func randomMeetCode() string {
	buf := make([]byte, 13)
	_, _ = rand.Read(buf)

	length := 10 + int(buf[0])%3
	code := make([]byte, length)
	for i := 0; i < length; i++ {
		code[i] = meetCodeCharset[int(buf[i+1])%len(meetCodeCharset)]
	}
	return string(code)
}
