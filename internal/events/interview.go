package events

import "time"

var InterviewScheduledTopic = "InterviewScheduledEvent"

type InterviewScheduled struct {
	ScheduleID     int
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	InterviewTime  time.Time
	MeetLink       string
	Notes          string
}

var InterviewUpdatedTopic = "InterviewUpdatedEvent"

// InterviewUpdated reuses the invitation template: candidates always get a
// fresh invitation after an update, whether or not the time changed.
type InterviewUpdated struct {
	ScheduleID     int
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	InterviewTime  time.Time
	MeetLink       string
	Notes          string
}

var InterviewCanceledTopic = "InterviewCanceledEvent"

type InterviewCanceled struct {
	ScheduleID     int
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	Reason         string
}
