package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"github.com/velocityhr/scheduler/internal/entities"
	"github.com/velocityhr/scheduler/internal/logger"
	"github.com/velocityhr/scheduler/internal/metrics"
)

type aiClient interface {
	GenerateResponse(ctx context.Context, text string) (string, error)
}

type applicantAnalysisRepository interface {
	GetByID(ctx context.Context, applicantID int) (*entities.Applicant, error)
	SetAnalysis(ctx context.Context, applicantID int, score float64, summary string) error
}

// ResumeAnalyzer scores applicants in the background. Enqueue returns
// immediately; the analysis runs detached from the submitting request and its
// failure never reaches the submitter. At most one analysis per applicant
// runs at a time, and recently analyzed applicants are not re-analyzed.
type ResumeAnalyzer struct {
	ai         aiClient
	applicants applicantAnalysisRepository
	inFlight   sync.Map
	done       *gocache.Cache
}

func NewResumeAnalyzer(ai aiClient, applicants applicantAnalysisRepository) *ResumeAnalyzer {
	return &ResumeAnalyzer{
		ai:         ai,
		applicants: applicants,
		done:       gocache.New(30*time.Minute, time.Hour),
	}
}

// Enqueue starts the analysis for an applicant unless one is already running
// or recently finished. Returns whether a new task was started.
func (r *ResumeAnalyzer) Enqueue(applicantID int) bool {

	if _, found := r.done.Get(strconv.Itoa(applicantID)); found {
		return false
	}
	if _, loaded := r.inFlight.LoadOrStore(applicantID, struct{}{}); loaded {
		return false
	}

	go r.analyze(applicantID)
	return true
}

func (r *ResumeAnalyzer) analyze(applicantID int) {
	defer r.inFlight.Delete(applicantID)

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applicant, err := r.applicants.GetByID(ctx, applicantID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to load applicant %v for analysis: %v", applicantID, err)
		return
	}

	reply, err := r.ai.GenerateResponse(ctx, buildAnalysisPrompt(applicant))
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Errorf("failed to analyze applicant %v: %v", applicantID, err)
		return
	}

	score, summary, err := parseAnalysisReply(reply)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Errorf("failed to parse analysis for applicant %v: %v", applicantID, err)
		return
	}

	if err = r.applicants.SetAnalysis(ctx, applicantID, score, summary); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to save analysis for applicant %v: %v", applicantID, err)
		return
	}

	_ = r.done.Add(strconv.Itoa(applicantID), "", gocache.DefaultExpiration)
	metrics.ResumeAnalysisDuration.Observe(time.Since(start).Seconds())
	log.Infof("analyzed applicant %v, score: %.1f", applicantID, score)
}

func buildAnalysisPrompt(applicant *entities.Applicant) string {

	var sb strings.Builder
	sb.WriteString("You are screening a job applicant. Reply with exactly two lines:\n")
	sb.WriteString("score: <number between 0 and 10>\n")
	sb.WriteString("summary: <one sentence on the candidate's fit>\n\n")
	fmt.Fprintf(&sb, "Name: %v\n", applicant.FullName)
	fmt.Fprintf(&sb, "Years of experience: %v\n", applicant.ExperienceYears)
	if applicant.DetailBox != "" {
		fmt.Fprintf(&sb, "Cover note: %v\n", applicant.DetailBox)
	}
	if applicant.ResumeURL != "" {
		fmt.Fprintf(&sb, "Resume: %v\n", applicant.ResumeURL)
	}
	return sb.String()
}

func parseAnalysisReply(reply string) (float64, string, error) {

	var score float64
	var summary string
	var scoreFound bool

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "score:"); ok {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return 0, "", fmt.Errorf("invalid score line: %v", line)
			}
			score, scoreFound = parsed, true
		} else if value, ok := strings.CutPrefix(line, "summary:"); ok {
			summary = strings.TrimSpace(value)
		}
	}

	if !scoreFound || summary == "" {
		return 0, "", fmt.Errorf("reply is missing score or summary")
	}
	if score < 0 || score > 10 {
		return 0, "", fmt.Errorf("score %v is out of range", score)
	}
	return score, summary, nil
}
