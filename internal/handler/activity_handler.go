package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leadership-assessment-api/internal/dto"
	"github.com/noah-isme/leadership-assessment-api/internal/service"
	"github.com/noah-isme/leadership-assessment-api/internal/utils"
)

// ActivityHandler exposes the audit trail to administrators.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid page", nil)
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid page size", nil)
	}
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	subjectID, err := parseQueryInt(c, "subject_id")
	if err != nil || subjectID < 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid subject id", nil)
	}

	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil || actorID < 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid actor id", nil)
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		SubjectID:  uint(subjectID),
		ActorID:    uint(actorID),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}

	if raw := strings.TrimSpace(c.Query("anonymous")); raw != "" {
		anonymous, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, "invalid anonymous flag", nil)
		}
		req.Anonymous = &anonymous
	}
	if req.Since, err = parseQueryTime(c, "since"); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid since", nil)
	}
	if req.Until, err = parseQueryTime(c, "until"); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid until", nil)
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	return utils.OK(c, response.Items, "activity logs", response.Pagination)
}
