package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkravets/team-dashboard/internal/service"
	"github.com/mkravets/team-dashboard/pkg/logger"
)

func (h *Handler) CreateUser(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Username string  `json:"username" validate:"required"`
		Email    string  `json:"email" validate:"required,email"`
		Password string  `json:"password" validate:"required"`
		FullName *string `json:"full_name"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	user, err := h.users.Create(e.Request().Context(), &service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		l.Error("failed to create user", zap.String("username", req.Username), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, user)
}

func (h *Handler) ListUsers(e echo.Context) error {
	users, err := h.users.List(e.Request().Context())
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	user, err := h.users.Get(e.Request().Context(), id)
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUser(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Password *string `json:"password"`
		FullName *string `json:"full_name"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	user, err := h.users.Update(e.Request().Context(), id, &service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		l.Error("failed to update user", zap.Int64("user_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if err := h.users.Delete(e.Request().Context(), id); err != nil {
		l.Error("failed to delete user", zap.Int64("user_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}
