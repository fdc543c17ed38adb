package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkravets/team-dashboard/pkg/logger"
)

func (h *Handler) AddMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		TeamID      int64 `json:"team_id" validate:"required"`
		UserID      int64 `json:"user_id" validate:"required"`
		IsModerator bool  `json:"is_moderator"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	member, err := h.members.Add(e.Request().Context(), req.TeamID, req.UserID, req.IsModerator)
	if err != nil {
		l.Error("failed to add team member",
			zap.Int64("team_id", req.TeamID),
			zap.Int64("user_id", req.UserID),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, member)
}

func (h *Handler) ListAllMembers(e echo.Context) error {
	members, err := h.members.ListAll(e.Request().Context())
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, members)
}

func (h *Handler) GetMember(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	member, err := h.members.Get(e.Request().Context(), id)
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, member)
}

func (h *Handler) UpdateMemberRole(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	teamID, serr := pathID(e, "team_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	userID, serr := pathID(e, "user_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	actorID, serr := actingUser(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	var req struct {
		IsModerator bool `json:"is_moderator"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	member, err := h.members.UpdateRole(e.Request().Context(), teamID, userID, actorID, req.IsModerator)
	if err != nil {
		l.Error("failed to update member role",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Int64("actor_id", actorID),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, member)
}

func (h *Handler) RemoveMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	teamID, serr := pathID(e, "team_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	userID, serr := pathID(e, "user_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	actorID, serr := actingUser(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	if err := h.members.Remove(e.Request().Context(), teamID, userID, actorID); err != nil {
		l.Error("failed to remove team member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Int64("actor_id", actorID),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}
