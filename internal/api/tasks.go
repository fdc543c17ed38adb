package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkravets/team-dashboard/internal/service"
	"github.com/mkravets/team-dashboard/pkg/logger"
)

func (h *Handler) CreateTask(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Title       string     `json:"title" validate:"required"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		DueDate     *time.Time `json:"due_date"`
		OwnerID     int64      `json:"owner_id" validate:"required"`
		TeamID      *int64     `json:"team_id"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	task, err := h.tasks.Create(e.Request().Context(), &service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		OwnerID:     req.OwnerID,
		TeamID:      req.TeamID,
	})
	if err != nil {
		l.Error("failed to create task", zap.String("title", req.Title), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(e echo.Context) error {
	tasks, err := h.tasks.List(e.Request().Context())
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	task, err := h.tasks.Get(e.Request().Context(), id)
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		DueDate     *time.Time `json:"due_date"`
		OwnerID     *int64     `json:"owner_id"`
		TeamID      *int64     `json:"team_id"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	task, err := h.tasks.Update(e.Request().Context(), id, &service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		OwnerID:     req.OwnerID,
		TeamID:      req.TeamID,
	})
	if err != nil {
		l.Error("failed to update task", zap.Int64("task_id", id), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if err := h.tasks.Delete(e.Request().Context(), id); err != nil {
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) GetUserTasks(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	tasks, err := h.tasks.ListByUser(e.Request().Context(), id)
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTeamTasks(e echo.Context) error {
	id, serr := pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	tasks, err := h.tasks.ListByTeam(e.Request().Context(), id)
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTasksByStatus(e echo.Context) error {
	tasks, err := h.tasks.ListByStatus(e.Request().Context(), e.Param("status"))
	if err != nil {
		return h.transportError(e, err)
	}
	return e.JSON(http.StatusOK, tasks)
}
