package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/internal/repository"
	"github.com/spark-iq/spark-iq-api/internal/service"
	"github.com/spark-iq/spark-iq-api/internal/utils"
)

// SubmissionHandler manages the submit / resubmit / remove endpoints.
type SubmissionHandler struct {
	service   service.SubmissionService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance. The dashboard
// service may be nil; it is only used for cache invalidation.
func NewSubmissionHandler(svc service.SubmissionService, dashboard service.DashboardService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   svc,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the student-facing routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.listMine)
	router.Post("", h.submit)
	router.Put("/:id", h.resubmit)
	router.Delete("/:id", h.remove)
}

// RegisterEducator attaches the educator-facing routes.
func (h *SubmissionHandler) RegisterEducator(router fiber.Router) {
	router.Get("/assignments/:id/submissions", h.listForAssignment)
	router.Delete("/submissions/:id", h.adminRemove)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	submissions, err := h.service.ListByStudent(c.UserContext(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.StudentID = studentID

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.Submit(c.UserContext(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	h.invalidateDashboard(c, studentID)

	if result.Warning != "" {
		return utils.SendSuccessWithWarning(c, fiber.StatusCreated, "submission created", result.Warning, result.Submission)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", result.Submission)
}

func (h *SubmissionHandler) resubmit(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ResubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.StudentID = studentID
	if strings.EqualFold(c.FormValue("confirm_regrade"), "true") {
		payload.ConfirmRegrade = true
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.Resubmit(c.UserContext(), id, payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	h.invalidateDashboard(c, studentID)

	if result.Warning != "" {
		return utils.SendSuccessWithWarning(c, fiber.StatusOK, "submission replaced", result.Warning, result.Submission)
	}
	return utils.SendSuccess(c, "submission replaced", result.Submission)
}

func (h *SubmissionHandler) remove(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Remove(c.UserContext(), id, studentID); err != nil {
		return h.handleError(c, err)
	}

	h.invalidateDashboard(c, studentID)

	return utils.SendSuccess(c, "submission removed", nil)
}

func (h *SubmissionHandler) listForAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListByAssignment(c.UserContext(), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) adminRemove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.AdminRemove(c.UserContext(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission removed", nil)
}

func (h *SubmissionHandler) invalidateDashboard(c *fiber.Ctx, studentID uint) {
	if h.dashboard != nil {
		h.dashboard.InvalidateStudent(c.UserContext(), studentID)
	}
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentNotPublished):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "assignment is not open for submissions")
	case errors.Is(err, service.ErrSubmissionExists):
		return utils.SendError(c, fiber.StatusConflict, "a submission already exists; resubmit instead")
	case errors.Is(err, service.ErrSubmissionGraded):
		return utils.SendError(c, fiber.StatusConflict, "graded submissions cannot be removed")
	case errors.Is(err, service.ErrRegradeConfirmationRequired):
		return utils.SendError(c, fiber.StatusConflict, "resubmitting graded work requires confirm_regrade")
	case errors.Is(err, service.ErrNotSubmissionOwner):
		return utils.SendError(c, fiber.StatusForbidden, "submission belongs to another student")
	case errors.Is(err, service.ErrUploadFailed):
		return utils.SendError(c, fiber.StatusBadGateway, "file upload failed")
	case errors.Is(err, repository.ErrVersionConflict):
		return utils.SendError(c, fiber.StatusConflict, "submission was modified concurrently; retry")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
