package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mkravets/team-dashboard/internal/service"
)

// HeaderActingUser carries the id of the user performing a
// moderator-gated mutation. It stands in for whatever authentication
// scheme fronts this service; the core only needs the id.
const HeaderActingUser = "X-Acting-User"

type Handler struct {
	users   *service.UserService
	teams   *service.TeamService
	members *service.MemberService
	tasks   *service.TaskService

	healthChecker HealthChecker

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithUserService(users *service.UserService) *Handler {
	h.users = users
	return h
}

func (h *Handler) WithTeamService(teams *service.TeamService) *Handler {
	h.teams = teams
	return h
}

func (h *Handler) WithMemberService(members *service.MemberService) *Handler {
	h.members = members
	return h
}

func (h *Handler) WithTaskService(tasks *service.TaskService) *Handler {
	h.tasks = tasks
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if h.healthChecker != nil {
		e.GET("/health", h.healthChecker.HealthCheck())
	}

	e.POST("/users", h.CreateUser)
	e.GET("/users", h.ListUsers)
	e.GET("/users/:id", h.GetUser)
	e.PUT("/users/:id", h.UpdateUser)
	e.DELETE("/users/:id", h.DeleteUser)

	e.POST("/teams", h.CreateTeam)
	e.GET("/teams", h.ListTeams)
	e.GET("/teams/user/:id", h.GetUserTeams)
	e.GET("/teams/:id", h.GetTeam)
	e.PUT("/teams/:id", h.UpdateTeam)
	e.DELETE("/teams/:id", h.DeleteTeam)
	e.GET("/teams/:id/members", h.GetTeamMembers)

	e.POST("/team-members", h.AddMember)
	e.GET("/team-members", h.ListAllMembers)
	e.GET("/team-members/:id", h.GetMember)
	e.PUT("/team-members/teams/:team_id/members/:user_id/role", h.UpdateMemberRole)
	e.DELETE("/team-members/teams/:team_id/members/:user_id", h.RemoveMember)

	e.POST("/tasks", h.CreateTask)
	e.GET("/tasks", h.ListTasks)
	e.GET("/tasks/user/:id", h.GetUserTasks)
	e.GET("/tasks/team/:id", h.GetTeamTasks)
	e.GET("/tasks/status/:status", h.GetTasksByStatus)
	e.GET("/tasks/:id", h.GetTask)
	e.PUT("/tasks/:id", h.UpdateTask)
	e.DELETE("/tasks/:id", h.DeleteTask)
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeValidation, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeValidation, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

func pathID(e echo.Context, name string) (int64, *service.Error) {
	id, err := strconv.ParseInt(e.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewError(service.ErrorCodeValidation, "invalid "+name+" path parameter")
	}
	return id, nil
}

func actingUser(e echo.Context) (int64, *service.Error) {
	raw := e.Request().Header.Get(HeaderActingUser)
	if raw == "" {
		return 0, service.NewError(service.ErrorCodeValidation, HeaderActingUser+" header is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewError(service.ErrorCodeValidation, "invalid "+HeaderActingUser+" header")
	}
	return id, nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	switch err.Code {
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeConflict:
		return e.JSON(http.StatusBadRequest, response)
	case service.ErrorCodeForbidden:
		return e.JSON(http.StatusForbidden, response)
	case service.ErrorCodeValidation:
		return e.JSON(http.StatusUnprocessableEntity, response)
	default:
		return e.JSON(http.StatusInternalServerError, response)
	}
}
