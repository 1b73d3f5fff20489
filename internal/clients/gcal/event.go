package gcal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const defaultDurationMinutes = 60

type EventSpec struct {
	Summary         string
	Description     string
	Start           time.Time
	DurationMinutes int
	AttendeeEmail   string
}

type Event struct {
	ID       string
	MeetLink string
	HTMLLink string
	Start    time.Time
	End      time.Time
}

type eventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type attendee struct {
	Email string `json:"email"`
}

type conferenceSolutionKey struct {
	Type string `json:"type"`
}

type createConferenceRequest struct {
	RequestID             string                `json:"requestId"`
	ConferenceSolutionKey conferenceSolutionKey `json:"conferenceSolutionKey"`
}

type conferenceData struct {
	CreateRequest createConferenceRequest `json:"createRequest"`
}

type insertEventRequest struct {
	Summary        string         `json:"summary"`
	Description    string         `json:"description,omitempty"`
	Start          eventDateTime  `json:"start"`
	End            eventDateTime  `json:"end"`
	Attendees      []attendee     `json:"attendees,omitempty"`
	ConferenceData conferenceData `json:"conferenceData"`
}

type insertEventResponse struct {
	ID          string        `json:"id"`
	HangoutLink string        `json:"hangoutLink"`
	HTMLLink    string        `json:"htmlLink"`
	Start       eventDateTime `json:"start"`
	End         eventDateTime `json:"end"`
}

// CreateEvent inserts a conferencing-enabled event on the HR's primary
// calendar and returns the generated meeting link. Rotated tokens are
// persisted before the insert, so a successful return implies the stored
// credentials are current.
func (c *Client) CreateEvent(ctx context.Context, hrID int, spec EventSpec) (*Event, error) {

	token, err := c.freshToken(ctx, hrID)
	if err != nil {
		return nil, err
	}

	duration := spec.DurationMinutes
	if duration <= 0 {
		duration = defaultDurationMinutes
	}

	payload := insertEventRequest{
		Summary:     spec.Summary,
		Description: spec.Description,
		Start:       toEventDateTime(spec.Start),
		End:         toEventDateTime(spec.Start.Add(time.Duration(duration) * time.Minute)),
		ConferenceData: conferenceData{
			CreateRequest: createConferenceRequest{
				RequestID:             fmt.Sprintf("meet-%d", time.Now().UnixNano()),
				ConferenceSolutionKey: conferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
	if spec.AttendeeEmail != "" {
		payload.Attendees = []attendee{{Email: spec.AttendeeEmail}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding event")
	}

	apiURL := c.baseURL + "/calendars/primary/events?conferenceDataVersion=1&sendUpdates=all"
	respBody, err := c.sendRequest(ctx, http.MethodPost, apiURL, token, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp insertEventResponse
	if err = json.Unmarshal(respBody, &resp); err != nil {
		return nil, errors.Wrap(err, "error decoding JSON response")
	}

	if resp.HangoutLink == "" {
		return nil, errors.New("event was created without a conference link")
	}

	event := &Event{
		ID:       resp.ID,
		MeetLink: resp.HangoutLink,
		HTMLLink: resp.HTMLLink,
	}
	event.Start, _ = time.Parse(time.RFC3339, resp.Start.DateTime)
	event.End, _ = time.Parse(time.RFC3339, resp.End.DateTime)

	return event, nil
}

// DeleteEvent removes a previously created event from the HR's calendar.
func (c *Client) DeleteEvent(ctx context.Context, hrID int, eventID string) error {

	token, err := c.freshToken(ctx, hrID)
	if err != nil {
		return err
	}

	apiURL := fmt.Sprintf("%s/calendars/primary/events/%s?sendUpdates=all", c.baseURL, url.PathEscape(eventID))
	_, err = c.sendRequest(ctx, http.MethodDelete, apiURL, token, nil)
	return err
}

func toEventDateTime(t time.Time) eventDateTime {
	return eventDateTime{
		DateTime: t.UTC().Format(time.RFC3339),
		TimeZone: "UTC",
	}
}
