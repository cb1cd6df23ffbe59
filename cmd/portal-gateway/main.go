package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/trotyl/uestc-sdk-go/api/swagger"
	"github.com/trotyl/uestc-sdk-go/internal/handler"
	"github.com/trotyl/uestc-sdk-go/internal/middleware"
	"github.com/trotyl/uestc-sdk-go/internal/portal"
	"github.com/trotyl/uestc-sdk-go/internal/repository"
	"github.com/trotyl/uestc-sdk-go/internal/semester"
	"github.com/trotyl/uestc-sdk-go/internal/service"
	"github.com/trotyl/uestc-sdk-go/pkg/cache"
	"github.com/trotyl/uestc-sdk-go/pkg/config"
	"github.com/trotyl/uestc-sdk-go/pkg/logger"
	corsmiddleware "github.com/trotyl/uestc-sdk-go/pkg/middleware/cors"
	reqidmiddleware "github.com/trotyl/uestc-sdk-go/pkg/middleware/requestid"
)

// @title UESTC Portal Gateway
// @version 0.1.0
// @description Course and people search against the UESTC portal with record cache fallback
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	codec := semester.New(semester.Config{
		BaselineYear:     cfg.Portal.BaselineYear,
		SemestersPerYear: cfg.Portal.SemestersPerYear,
		ProgramYears:     cfg.Portal.ProgramYears,
	})
	records := repository.NewRecordCache()
	metrics := service.NewMetricsService(records.Len)

	redisClient, err := cache.NewSnapshotClient(cfg.Snapshot, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("snapshot cache unavailable, continuing without it", "error", err)
		redisClient = nil
	}
	snapshotRepo := repository.NewCacheRepository(redisClient, logr)
	defer snapshotRepo.Close() //nolint:errcheck
	snapshots := service.NewCacheService(snapshotRepo, metrics, cfg.Snapshot.TTL, logr, redisClient != nil)

	portalClient := portal.NewClient(cfg.Portal, nil, logr)
	fetcher := service.NewSnapshotFetcher(portalClient, snapshots, metrics, cfg.Snapshot.TTL, logr)

	sessions := service.NewSessionService(portalClient, records, nil, logr, service.SessionConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	search := service.NewSearchService(fetcher, service.NewSeeker(records), records, sessions, metrics, logr)

	sessionHandler := handler.NewSessionHandler(sessions)
	searchHandler := handler.NewSearchHandler(search)
	semesterHandler := handler.NewSemesterHandler(codec, sessions)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/session", sessionHandler.Register)
	api.GET("/semesters/parse", semesterHandler.Parse)
	api.GET("/semesters/:id", semesterHandler.Decode)
	api.GET("/weekdays", semesterHandler.Weekdays)
	api.GET("/weekdays/parse", semesterHandler.Weekday)

	protected := api.Group("")
	protected.Use(middleware.JWT(sessions))
	protected.GET("/session", sessionHandler.Current)
	protected.DELETE("/session", sessionHandler.Logout)
	protected.GET("/courses", searchHandler.Courses)
	protected.GET("/people", searchHandler.People)
	protected.GET("/semesters/resolve", semesterHandler.Resolve)
	protected.GET("/users/:id/semesters", semesterHandler.UserSemesters)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "portal", cfg.Portal.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
