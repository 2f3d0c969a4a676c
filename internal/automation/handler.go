package automation

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/scenewatch/vision-backend/internal/dto"
	"github.com/scenewatch/vision-backend/internal/shared"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetConfig)
	g.POST("/rules", h.CreateRule)
	g.DELETE("/rules/:id", h.DeleteRule)
}

func configToResponse(cfg Config) dto.ConfigResponse {
	resp := dto.ConfigResponse{
		Actions: make([]dto.ActionResponse, len(cfg.Actions)),
		Rules:   make([]dto.RuleResponse, len(cfg.Rules)),
	}
	for i, a := range cfg.Actions {
		resp.Actions[i] = dto.ActionResponse{
			ID:          a.ID,
			Label:       a.Label,
			Description: a.Description,
		}
	}
	for i, r := range cfg.Rules {
		resp.Rules[i] = dto.RuleResponse{
			ID:            r.ID,
			ConditionText: r.ConditionText,
			ActionID:      r.ActionID,
		}
	}
	return resp
}

// GetConfig returns the current automation config (actions + rules). The
// frontend uses it to populate the action dropdown and the rules list.
func (h *Handler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, configToResponse(h.store.Snapshot()))
}

// CreateRule adds a rule binding a free-text condition to an existing action.
func (h *Handler) CreateRule(c echo.Context) error {
	var req dto.CreateRuleRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	if strings.TrimSpace(req.ConditionText) == "" {
		return shared.BadRequest("missing_condition_text", "condition_text must be a non-empty string")
	}
	if strings.TrimSpace(req.ActionID) == "" {
		return shared.BadRequest("missing_action_id", "action_id must be a non-empty string")
	}

	rule, err := h.store.CreateRule(c.Request().Context(), req.ConditionText, req.ActionID)
	if errors.Is(err, ErrUnknownAction) {
		return shared.BadRequest("unknown_action", "unknown action_id '"+strings.TrimSpace(req.ActionID)+"'")
	}
	if err != nil {
		h.logger.Error("failed to create rule", "error", err)
		return shared.InternalError("create_failed", "failed to create rule")
	}

	return c.JSON(http.StatusCreated, dto.RuleResponse{
		ID:            rule.ID,
		ConditionText: rule.ConditionText,
		ActionID:      rule.ActionID,
	})
}

// DeleteRule removes a rule by id.
func (h *Handler) DeleteRule(c echo.Context) error {
	id := c.Param("id")

	err := h.store.DeleteRule(c.Request().Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound("rule_not_found", "no rule found with id '"+id+"'")
	}
	if err != nil {
		h.logger.Error("failed to delete rule", "error", err, "rule_id", id)
		return shared.InternalError("delete_failed", "failed to delete rule")
	}

	return c.JSON(http.StatusOK, dto.DeleteRuleResponse{
		Status: "deleted",
		RuleID: id,
	})
}
