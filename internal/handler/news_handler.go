package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/spark-iq/spark-iq-api/internal/dto"
	"github.com/spark-iq/spark-iq-api/internal/service"
	"github.com/spark-iq/spark-iq-api/internal/utils"
)

// NewsHandler serves the education news feed.
type NewsHandler struct {
	service service.NewsService
	logger  zerolog.Logger
}

// NewNewsHandler builds a news handler instance.
func NewNewsHandler(svc service.NewsService, logger zerolog.Logger) *NewsHandler {
	return &NewsHandler{
		service: svc,
		logger:  logger.With().Str("component", "news_handler").Logger(),
	}
}

// Register attaches the news routes.
func (h *NewsHandler) Register(router fiber.Router) {
	router.Get("", h.search)
}

func (h *NewsHandler) search(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	articles, err := h.service.Search(c.UserContext(), dto.NewsQuery{
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("news search failed")
		return utils.SendError(c, fiber.StatusBadGateway, "news provider unavailable")
	}

	return utils.SendSuccess(c, "news retrieved", articles)
}
