package main

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-core/internal/bridge"
	"github.com/noah-isme/timetable-core/internal/handler"
	"github.com/noah-isme/timetable-core/internal/scheduler"
	"github.com/noah-isme/timetable-core/internal/service"
	"github.com/noah-isme/timetable-core/pkg/config"
	"github.com/noah-isme/timetable-core/pkg/database"
	"github.com/noah-isme/timetable-core/pkg/logger"
	"github.com/noah-isme/timetable-core/pkg/middleware/cors"
	"github.com/noah-isme/timetable-core/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	metrics := scheduler.NewMetrics(registry)

	repo := bridge.NewRepository(db)
	lookup := bridge.NewSQLLookup(db)
	bridgeSvc := bridge.NewService(repo, lookup, lookup, lookup, repo, zapLogger)

	defaults := scheduler.DefaultConstraints()
	defaults.MaxConsecutiveBlocks = cfg.Scheduler.DefaultMaxConsecutiveBlocks
	defaults.MinGapMinutes = cfg.Scheduler.DefaultMinGapMinutes
	defaults.ReserveBreakMinutes = cfg.Scheduler.DefaultReserveBreakMinutes
	defaults.MaxDailyHoursPerProgram = cfg.Scheduler.DefaultMaxDailyHours
	defaults.BalanceWeight = cfg.Scheduler.DefaultBalanceWeight

	tuning := scheduler.Options{
		Grasp: scheduler.GraspOptions{
			Iterations: cfg.Scheduler.GraspIterations,
			RCLSize:    cfg.Scheduler.GraspRCLSize,
			Seed:       cfg.Scheduler.GraspRandomSeed,
		},
		Genetic: scheduler.GeneticOptions{
			PopulationSize: cfg.Scheduler.GeneticPopulationSize,
			Generations:    cfg.Scheduler.GeneticGenerations,
			Seed:           cfg.Scheduler.GraspRandomSeed,
		},
		ExactPass: scheduler.ExactPassOptions{
			MaxCandidatesPerCourse: cfg.Scheduler.ExactMaxCandidatesPerCourse,
			TimeBudgetSeconds:      cfg.Scheduler.ExactTimeBudget.Seconds(),
		},
	}

	scheduleSvc := service.NewScheduleService(bridgeSvc, metrics, zapLogger, defaults, tuning)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(zapLogger))
	router.Use(cors.New(cfg.CORSAllowedOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group(cfg.APIPrefix)
	{
		schedules := api.Group("/schedules")
		schedules.POST("/generate", scheduleHandler.Generate)
		schedules.POST("/save", scheduleHandler.Save)
		schedules.GET("/overview", scheduleHandler.Overview)
	}

	port := cfg.Port
	if port <= 0 {
		port = 8080
	}
	addr := ":" + strconv.Itoa(port)
	zapLogger.Info("starting api-gateway", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
