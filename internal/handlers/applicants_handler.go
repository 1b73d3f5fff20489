package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/velocityhr/scheduler/internal/services"
)

type ApplicantsHandler struct {
	analyzer *services.ResumeAnalyzer
}

func NewApplicantsHandler(analyzer *services.ResumeAnalyzer) *ApplicantsHandler {
	return &ApplicantsHandler{analyzer: analyzer}
}

func (h *ApplicantsHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/applicants/:id/analyze", h.analyze)
}

// analyze kicks off resume scoring in the background and returns immediately.
// The request never waits for, or learns about, the analysis outcome.
func (h *ApplicantsHandler) analyze(c *fiber.Ctx) error {

	if _, ok := hrIDFromRequest(c); !ok {
		return nil
	}

	applicantID, err := c.ParamsInt("id")
	if err != nil || applicantID <= 0 {
		return badRequest(c, "invalid applicant id")
	}

	if h.analyzer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "resume analysis is not configured",
		})
	}

	started := h.analyzer.Enqueue(applicantID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"applicant_id": applicantID,
		"started":      started,
	})
}
