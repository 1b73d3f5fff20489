package services

import (
	"context"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
	"github.com/velocityhr/scheduler/internal/clients/resend"
	"github.com/velocityhr/scheduler/internal/events"
	"github.com/velocityhr/scheduler/internal/logger"
	"github.com/velocityhr/scheduler/internal/metrics"
)

const (
	emailKindInvitation   = "invitation"
	emailKindUpdate       = "update"
	emailKindCancellation = "cancellation"
)

const interviewTimeLayout = "Monday, January 2, 2006 at 3:04 PM MST"

type emailClient interface {
	Send(ctx context.Context, message resend.Message) (string, error)
}

// Notifier turns interview lifecycle events into candidate emails. It lives
// in its own failure domain: a failed send is logged and counted, never
// reported back to the operation that triggered it.
type Notifier struct {
	email       emailClient
	fromAddress string
	sendTimeout time.Duration
}

func NewNotifier(bus EventBus.Bus, email emailClient, fromAddress string, sendTimeout time.Duration) (*Notifier, error) {

	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	n := &Notifier{
		email:       email,
		fromAddress: fromAddress,
		sendTimeout: sendTimeout,
	}

	if err := bus.SubscribeAsync(events.InterviewScheduledTopic, n.onInterviewScheduled, false); err != nil {
		return nil, err
	}
	if err := bus.SubscribeAsync(events.InterviewUpdatedTopic, n.onInterviewUpdated, false); err != nil {
		return nil, err
	}
	if err := bus.SubscribeAsync(events.InterviewCanceledTopic, n.onInterviewCanceled, false); err != nil {
		return nil, err
	}
	return n, nil
}

type invitationData struct {
	CandidateName string
	JobTitle      string
	When          string
	MeetLink      string
	Notes         string
	Updated       bool
}

type cancellationData struct {
	CandidateName string
	JobTitle      string
	Reason        string
}

var invitationHTML = htmltemplate.Must(htmltemplate.New("invitation").Parse(`<div style="font-family: sans-serif; max-width: 600px;">
  <h2>{{if .Updated}}Your interview has been updated{{else}}You're invited to an interview{{end}}</h2>
  <p>Hi {{.CandidateName}},</p>
  <p>{{if .Updated}}The details of your interview for the <strong>{{.JobTitle}}</strong> position have changed.{{else}}We'd like to invite you to an interview for the <strong>{{.JobTitle}}</strong> position.{{end}}</p>
  <p><strong>When:</strong> {{.When}}</p>
  <p><strong>Where:</strong> <a href="{{.MeetLink}}">{{.MeetLink}}</a></p>
  {{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
  <p>Good luck!</p>
</div>`))

var invitationText = texttemplate.Must(texttemplate.New("invitation").Parse(`Hi {{.CandidateName}},

{{if .Updated}}The details of your interview for the {{.JobTitle}} position have changed.{{else}}We'd like to invite you to an interview for the {{.JobTitle}} position.{{end}}

When: {{.When}}
Where: {{.MeetLink}}
{{if .Notes}}Notes: {{.Notes}}
{{end}}
Good luck!`))

var cancellationHTML = htmltemplate.Must(htmltemplate.New("cancellation").Parse(`<div style="font-family: sans-serif; max-width: 600px;">
  <h2>Your interview has been canceled</h2>
  <p>Hi {{.CandidateName}},</p>
  <p>Unfortunately, your interview for the <strong>{{.JobTitle}}</strong> position has been canceled.</p>
  {{if .Reason}}<p><strong>Reason:</strong> {{.Reason}}</p>{{end}}
  <p>We'll be in touch if anything changes.</p>
</div>`))

var cancellationText = texttemplate.Must(texttemplate.New("cancellation").Parse(`Hi {{.CandidateName}},

Unfortunately, your interview for the {{.JobTitle}} position has been canceled.
{{if .Reason}}Reason: {{.Reason}}
{{end}}
We'll be in touch if anything changes.`))

func (n *Notifier) onInterviewScheduled(event events.InterviewScheduled) {
	n.sendInvitation(emailKindInvitation, invitationData{
		CandidateName: event.CandidateName,
		JobTitle:      event.JobTitle,
		When:          event.InterviewTime.Format(interviewTimeLayout),
		MeetLink:      event.MeetLink,
		Notes:         event.Notes,
	}, event.CandidateEmail, "Interview invitation: "+event.JobTitle)
}

func (n *Notifier) onInterviewUpdated(event events.InterviewUpdated) {
	n.sendInvitation(emailKindUpdate, invitationData{
		CandidateName: event.CandidateName,
		JobTitle:      event.JobTitle,
		When:          event.InterviewTime.Format(interviewTimeLayout),
		MeetLink:      event.MeetLink,
		Notes:         event.Notes,
		Updated:       true,
	}, event.CandidateEmail, "Interview updated: "+event.JobTitle)
}

func (n *Notifier) onInterviewCanceled(event events.InterviewCanceled) {

	data := cancellationData{
		CandidateName: event.CandidateName,
		JobTitle:      event.JobTitle,
		Reason:        event.Reason,
	}

	var html, text strings.Builder
	if err := cancellationHTML.Execute(&html, data); err != nil {
		n.logSendError(emailKindCancellation, err)
		return
	}
	if err := cancellationText.Execute(&text, data); err != nil {
		n.logSendError(emailKindCancellation, err)
		return
	}

	n.send(emailKindCancellation, resend.Message{
		From:    n.fromAddress,
		To:      []string{event.CandidateEmail},
		Subject: "Interview canceled: " + event.JobTitle,
		HTML:    html.String(),
		Text:    text.String(),
	})
}

func (n *Notifier) sendInvitation(kind string, data invitationData, to string, subject string) {

	var html, text strings.Builder
	if err := invitationHTML.Execute(&html, data); err != nil {
		n.logSendError(kind, err)
		return
	}
	if err := invitationText.Execute(&text, data); err != nil {
		n.logSendError(kind, err)
		return
	}

	n.send(kind, resend.Message{
		From:    n.fromAddress,
		To:      []string{to},
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	})
}

func (n *Notifier) send(kind string, message resend.Message) {

	ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
	defer cancel()

	id, err := n.email.Send(ctx, message)
	if err != nil {
		n.logSendError(kind, err)
		return
	}

	metrics.EmailsCounter.WithLabelValues(kind, "sent").Inc()
	log.Infof("sent %v email %v to %v", kind, id, message.To)
}

func (n *Notifier) logSendError(kind string, err error) {
	metrics.EmailsCounter.WithLabelValues(kind, "failed").Inc()
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeEmailApi).
		Errorf("failed to send %v email: %v", kind, err)
}
