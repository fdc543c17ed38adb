package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkravets/team-dashboard/pkg/logger"
)

func (h *Handler) CreateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Name      string `json:"name" validate:"required"`
		CreatorID int64  `json:"creator_id" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	team, err := h.teams.Create(e.Request().Context(), req.Name, req.CreatorID)
	if err != nil {
		l.Error("failed to create team", zap.String("team_name", req.Name), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, team)
}

func (h *Handler) ListTeams(e echo.Context) error {
	teams, err := h.teams.List(e.Request().Context())
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, teams)
}

func (h *Handler) GetTeam(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	team, err := h.teams.Get(e.Request().Context(), id)
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, team)
}

func (h *Handler) UpdateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	var req struct {
		Name string `json:"name" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	team, err := h.teams.Update(e.Request().Context(), id, req.Name)
	if err != nil {
		l.Error("failed to update team", zap.Int64("team_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, team)
}

func (h *Handler) DeleteTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if err := h.teams.Delete(e.Request().Context(), id); err != nil {
		l.Error("failed to delete team", zap.Int64("team_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) GetTeamMembers(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	members, err := h.teams.Members(e.Request().Context(), id)
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, members)
}

func (h *Handler) GetUserTeams(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	teams, err := h.teams.UserTeams(e.Request().Context(), id)
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, teams)
}
