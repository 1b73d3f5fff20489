package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
	"github.com/velocityhr/scheduler/internal/clients/gcal"
	"github.com/velocityhr/scheduler/internal/clients/gemini"
	"github.com/velocityhr/scheduler/internal/clients/resend"
	"github.com/velocityhr/scheduler/internal/config"
	"github.com/velocityhr/scheduler/internal/handlers"
	"github.com/velocityhr/scheduler/internal/logger"
	"github.com/velocityhr/scheduler/internal/metrics"
	"github.com/velocityhr/scheduler/internal/repositories"
	"github.com/velocityhr/scheduler/internal/services"
)

func newResumeAnalyzer(ctx context.Context, cfg *config.Config, applicants *repositories.Applicants) *services.ResumeAnalyzer {

	if cfg.AI.Key == "" {
		log.Info("AI key is not set, resume analysis disabled")
		return nil
	}

	aiClient, err := gemini.NewClient(ctx, cfg.AI.Key, gemini.Model(cfg.AI.Model))
	if err != nil {
		log.Fatalf("can't create AI client: %v", err)
	}
	if cfg.AI.MaxRequestsPerMinute > 0 {
		aiClient.SetMinuteRateLimit(cfg.AI.MaxRequestsPerMinute)
	}
	if cfg.AI.MaxRequestsPerDay > 0 {
		aiClient.SetDayRateLimit(cfg.AI.MaxRequestsPerDay)
	}

	return services.NewResumeAnalyzer(aiClient, applicants)
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Server.MetricsAddr)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	credentials := repositories.NewCredentialsRepository(dbContext.DB)
	jobs := repositories.NewJobsRepository(dbContext.DB)
	applicants := repositories.NewApplicantsRepository(dbContext.DB)
	schedules := repositories.NewSchedulesRepository(dbContext.DB)

	calendarClient := gcal.NewClient(credentials, cfg.Calendar.ClientID, cfg.Calendar.ClientSecret)
	if cfg.Calendar.MaxRequestsPerSecond > 0 {
		calendarClient.SetRateLimit(cfg.Calendar.MaxRequestsPerSecond)
	}

	emailClient := resend.NewClient(cfg.Email.APIKey)

	bus := EventBus.New()

	meetings := services.NewMeetingLinkProvider(calendarClient, credentials,
		cfg.Calendar.FallbackMeetDomain, cfg.Calendar.RequestTimeout)

	scheduler := services.NewScheduler(bus, jobs, applicants, schedules, meetings)

	_, err = services.NewNotifier(bus, emailClient, cfg.Email.FromAddress, cfg.Email.SendTimeout)
	if err != nil {
		log.Fatalf("can't create notifier: %v", err)
	}

	analyzer := newResumeAnalyzer(ctx, cfg, applicants)

	cleaner, err := services.NewJobsCleaner(jobs)
	if err != nil {
		log.Fatalf("can't create jobs cleaner: %v", err)
	}
	defer cleaner.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "scheduler",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	api := app.Group("/api")
	handlers.NewSchedulingHandler(scheduler).RegisterRoutes(api)
	handlers.NewApplicantsHandler(analyzer).RegisterRoutes(api)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Infof("server listening on %v", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	if err = app.Shutdown(); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	bus.WaitAsync()
	log.Info("Services stopped.")
}
