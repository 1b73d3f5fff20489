package tests

import (
	"os"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
	"github.com/velocityhr/scheduler/internal/config"
	"github.com/velocityhr/scheduler/internal/entities"
	"github.com/velocityhr/scheduler/internal/repositories"
	"github.com/velocityhr/scheduler/internal/services"
)

const (
	ownerHrID   = 1
	foreignHrID = 2
	jobID       = 3
	applicantID = 7
)

var dbCtx *repositories.DbContext

func upEnvironment() {

	os.Setenv("DB_CONNECTION_STRING", "testdatabase.db")
	cfg := config.Get()

	var err error
	dbCtx, err = repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("could not create db context: %s", err)
	}

	err = dbCtx.Migrate()
	if err != nil {
		log.Fatalf("could not migrate db: %s", err)
	}

	seed := []any{
		&entities.HR{ID: ownerHrID, Name: "Owner", Email: "owner@example.com"},
		&entities.HR{ID: foreignHrID, Name: "Other", Email: "other@example.com"},
		&entities.Job{ID: jobID, HrID: ownerHrID, Title: "Backend Engineer", IsActive: true},
		&entities.Applicant{
			ID:       applicantID,
			JobID:    jobID,
			FullName: "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "+1234567",
			Status:   entities.ApplicantReviewed,
		},
	}
	for _, record := range seed {
		if err = dbCtx.DB.Create(record).Error; err != nil {
			log.Fatalf("could not seed db: %s", err)
		}
	}
}

func downEnvironment() {
	_ = dbCtx.Close()
	_ = os.Remove("testdatabase.db")
}

func clearSchedules() {
	dbCtx.DB.Exec("DELETE FROM schedules WHERE TRUE")
	dbCtx.DB.Exec("UPDATE applicants SET status = 'reviewed' WHERE TRUE")
}

// newTestEnvironment wires a scheduler against the real repositories and
// sqlite, with only the external providers replaced.
func newTestEnvironment(calendar *mockCalendar, email *mockEmailSender) (*services.Scheduler, EventBus.Bus) {

	jobs := repositories.NewJobsRepository(dbCtx.DB)
	applicants := repositories.NewApplicantsRepository(dbCtx.DB)
	schedules := repositories.NewSchedulesRepository(dbCtx.DB)
	credentials := repositories.NewCredentialsRepository(dbCtx.DB)

	bus := EventBus.New()
	meetings := services.NewMeetingLinkProvider(calendar, credentials, "example.com", time.Second)

	if _, err := services.NewNotifier(bus, email, "HR <hr@example.com>", time.Second); err != nil {
		log.Fatalf("could not create notifier: %s", err)
	}

	return services.NewScheduler(bus, jobs, applicants, schedules, meetings), bus
}

func TestMain(m *testing.M) {

	err := os.Chdir("../") //project root to resolve correctly relative paths in code
	if err != nil {
		log.Fatal(err)
	}

	upEnvironment()

	code := m.Run()

	downEnvironment()

	os.Exit(code)
}
