package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	MeetingLinksCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_meeting_links_total",
			Help: "Meeting links issued, labeled by provider (google or fallback).",
		},
		[]string{"provider"},
	)
	ScheduleOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_schedule_operations_total",
			Help: "Completed schedule operations by kind.",
		},
		[]string{"operation"},
	)
	EmailsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_emails_total",
			Help: "Candidate emails by kind and outcome.",
		},
		[]string{"kind", "result"},
	)
	ResumeAnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_resume_analysis_duration_seconds",
			Help:    "Duration of one asynchronous resume analysis.",
			Buckets: []float64{1, 5, 15, 60, 300},
		},
	)
)

func StartMetricsServer(addr string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(MeetingLinksCounter)
	prometheus.MustRegister(ScheduleOperationsCounter)
	prometheus.MustRegister(EmailsCounter)
	prometheus.MustRegister(ResumeAnalysisDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(addr, nil))
	}()
}
