package main

import (
	"context"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkravets/team-dashboard/internal/api"
	"github.com/mkravets/team-dashboard/internal/config"
	"github.com/mkravets/team-dashboard/internal/db"
	"github.com/mkravets/team-dashboard/internal/repository"
	"github.com/mkravets/team-dashboard/internal/service"
	"github.com/mkravets/team-dashboard/pkg/logger"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting application")

	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	if err = db.InitSchema(context.Background(), pool); err != nil {
		log.Fatal("failed to initialize schema", zap.Error(err))
	}

	log.Info("database connection established")

	transactor := db.NewPgxTransactor(pool)

	userRepo := repository.NewPgxUserRepository(pool)
	teamRepo := repository.NewPgxTeamRepository(pool)
	memberRepo := repository.NewPgxMemberRepository(pool)
	taskRepo := repository.NewPgxTaskRepository(pool)

	users := service.NewUserService(transactor).
		WithUserRepo(userRepo).
		WithMemberRepo(memberRepo).
		WithTaskRepo(taskRepo)
	teams := service.NewTeamService(transactor).
		WithUserRepo(userRepo).
		WithTeamRepo(teamRepo).
		WithMemberRepo(memberRepo).
		WithTaskRepo(taskRepo)
	members := service.NewMemberService(transactor).
		WithUserRepo(userRepo).
		WithTeamRepo(teamRepo).
		WithMemberRepo(memberRepo)
	tasks := service.NewTaskService(transactor).
		WithUserRepo(userRepo).
		WithTeamRepo(teamRepo).
		WithTaskRepo(taskRepo)

	healthChecker := api.MustNewHealthChecker(health.Config{
		Name:      "postgres",
		Timeout:   2 * time.Second,
		SkipOnErr: false,
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})

	e := echo.New()

	handler := api.NewHandler(log).
		WithHealthChecker(healthChecker).
		WithUserService(users).
		WithTeamService(teams).
		WithMemberService(members).
		WithTaskService(tasks)

	handler.RegisterRoutes(e)

	log.Info("server starting", zap.String("addr", cfg.ServerAddr()))
	if err = e.Start(cfg.ServerAddr()); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
