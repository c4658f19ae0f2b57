package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/internal/service"
	"github.com/spark-iq/spark-iq-api/internal/utils"
)

// MeetingHandler mints video meeting rooms.
type MeetingHandler struct {
	service service.MeetingService
	logger  zerolog.Logger
}

// NewMeetingHandler builds a meeting handler instance.
func NewMeetingHandler(svc service.MeetingService, logger zerolog.Logger) *MeetingHandler {
	return &MeetingHandler{
		service: svc,
		logger:  logger.With().Str("component", "meeting_handler").Logger(),
	}
}

// Register attaches the meeting routes.
func (h *MeetingHandler) Register(router fiber.Router) {
	router.Post("", h.create)
}

func (h *MeetingHandler) create(c *fiber.Ctx) error {
	var payload dto.MeetingCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	room, err := h.service.CreateRoom(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create meeting room")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "meeting room created", room)
}
