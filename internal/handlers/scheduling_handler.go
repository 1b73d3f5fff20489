package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/velocityhr/scheduler/internal/entities"
	"github.com/velocityhr/scheduler/internal/services"
)

// HRHeader carries the already-authenticated HR identity. Token issuance and
// verification happen upstream; this service only consumes the result.
const HRHeader = "X-HR-ID"

type SchedulingHandler struct {
	scheduler *services.Scheduler
}

func NewSchedulingHandler(scheduler *services.Scheduler) *SchedulingHandler {
	return &SchedulingHandler{scheduler: scheduler}
}

func (h *SchedulingHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/schedules", h.create)
	router.Get("/schedules", h.list)
	router.Get("/schedules/:id", h.get)
	router.Patch("/schedules/:id", h.update)
	router.Patch("/schedules/:id/status", h.patchStatus)
	router.Delete("/schedules/:id", h.remove)
}

type createScheduleBody struct {
	JobID         int       `json:"job_id"`
	ApplicantID   int       `json:"applicant_id"`
	InterviewTime time.Time `json:"interview_time"`
	Notes         string    `json:"notes"`
}

type updateScheduleBody struct {
	InterviewTime *time.Time `json:"interview_time"`
	Notes         *string    `json:"notes"`
	Status        *string    `json:"status"`
}

type patchStatusBody struct {
	Status string `json:"status"`
}

type deleteScheduleBody struct {
	Reason string `json:"reason"`
}

type scheduleResponse struct {
	ID             int       `json:"id"`
	ApplicantID    int       `json:"applicant_id"`
	JobID          int       `json:"job_id"`
	InterviewTime  time.Time `json:"interview_time"`
	MeetLink       string    `json:"meet_link"`
	Notes          string    `json:"notes"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ApplicantName  string    `json:"applicant_name"`
	ApplicantEmail string    `json:"applicant_email"`
	ApplicantPhone string    `json:"applicant_phone"`
	JobTitle       string    `json:"job_title"`
}

func toScheduleResponse(details *entities.ScheduleDetails) scheduleResponse {
	return scheduleResponse{
		ID:             details.ID,
		ApplicantID:    details.ApplicantID,
		JobID:          details.JobID,
		InterviewTime:  details.InterviewTime,
		MeetLink:       details.MeetLink,
		Notes:          details.Notes,
		Status:         string(details.Status),
		CreatedAt:      details.CreatedAt,
		UpdatedAt:      details.UpdatedAt,
		ApplicantName:  details.ApplicantName,
		ApplicantEmail: details.ApplicantEmail,
		ApplicantPhone: details.ApplicantPhone,
		JobTitle:       details.JobTitle,
	}
}

func (h *SchedulingHandler) create(c *fiber.Ctx) error {

	hrID, ok := hrIDFromRequest(c)
	if !ok {
		return nil
	}

	var body createScheduleBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request payload")
	}

	details, err := h.scheduler.Create(c.Context(), hrID, services.CreateScheduleRequest{
		JobID:         body.JobID,
		ApplicantID:   body.ApplicantID,
		InterviewTime: body.InterviewTime,
		Notes:         body.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toScheduleResponse(details))
}

func (h *SchedulingHandler) get(c *fiber.Ctx) error {

	hrID, ok := hrIDFromRequest(c)
	if !ok {
		return nil
	}
	scheduleID, ok := scheduleIDFromRequest(c)
	if !ok {
		return nil
	}

	details, err := h.scheduler.Get(c.Context(), hrID, scheduleID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(toScheduleResponse(details))
}

func (h *SchedulingHandler) list(c *fiber.Ctx) error {

	hrID, ok := hrIDFromRequest(c)
	if !ok {
		return nil
	}

	details, err := h.scheduler.List(c.Context(), hrID)
	if err != nil {
		return mapServiceError(c, err)
	}

	responses := make([]scheduleResponse, len(details))
	for i := range details {
		responses[i] = toScheduleResponse(&details[i])
	}
	return c.JSON(responses)
}

func (h *SchedulingHandler) update(c *fiber.Ctx) error {

	hrID, ok := hrIDFromRequest(c)
	if !ok {
		return nil
	}
	scheduleID, ok := scheduleIDFromRequest(c)
	if !ok {
		return nil
	}

	var body updateScheduleBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request payload")
	}

	details, err := h.scheduler.Update(c.Context(), hrID, scheduleID, services.UpdateScheduleRequest{
		InterviewTime: body.InterviewTime,
		Notes:         body.Notes,
		Status:        body.Status,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(toScheduleResponse(details))
}

func (h *SchedulingHandler) patchStatus(c *fiber.Ctx) error {

	hrID, ok := hrIDFromRequest(c)
	if !ok {
		return nil
	}
	scheduleID, ok := scheduleIDFromRequest(c)
	if !ok {
		return nil
	}

	var body patchStatusBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request payload")
	}

	details, err := h.scheduler.PatchStatus(c.Context(), hrID, scheduleID, body.Status)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(toScheduleResponse(details))
}

func (h *SchedulingHandler) remove(c *fiber.Ctx) error {

	hrID, ok := hrIDFromRequest(c)
	if !ok {
		return nil
	}
	scheduleID, ok := scheduleIDFromRequest(c)
	if !ok {
		return nil
	}

	var body deleteScheduleBody
	_ = c.BodyParser(&body)

	applicantID, err := h.scheduler.Delete(c.Context(), hrID, scheduleID, body.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"applicant_id": applicantID})
}

// hrIDFromRequest reads the authenticated HR identity. On a missing or
// malformed header it writes the 401 response itself and reports ok=false.
func hrIDFromRequest(c *fiber.Ctx) (int, bool) {

	hrID, err := strconv.Atoi(c.Get(HRHeader))
	if err != nil || hrID <= 0 {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing or invalid " + HRHeader + " header",
		})
		return 0, false
	}
	return hrID, true
}

func scheduleIDFromRequest(c *fiber.Ctx) (int, bool) {

	scheduleID, err := c.ParamsInt("id")
	if err != nil || scheduleID <= 0 {
		_ = badRequest(c, "invalid schedule id")
		return 0, false
	}
	return scheduleID, true
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func mapServiceError(c *fiber.Ctx, err error) error {

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	}
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	log.Errorf("unhandled service error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
