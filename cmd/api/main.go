package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/nastava-api/api/swagger"
	"github.com/noah-isme/nastava-api/internal/handler"
	"github.com/noah-isme/nastava-api/internal/middleware"
	"github.com/noah-isme/nastava-api/internal/models"
	"github.com/noah-isme/nastava-api/internal/repository"
	"github.com/noah-isme/nastava-api/internal/service"
	"github.com/noah-isme/nastava-api/pkg/cache"
	"github.com/noah-isme/nastava-api/pkg/config"
	"github.com/noah-isme/nastava-api/pkg/database"
	"github.com/noah-isme/nastava-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/nastava-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/nastava-api/pkg/middleware/requestid"
)

// @title Nastava API
// @version 1.0.0
// @description Academic administration: professors, subjects, rooms, terms, study programs, courses, teaching plans (PRN), teacher load and the weekly schedule.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis, cfg.Cache.Enabled)
	if err != nil {
		logr.Warn("redis unavailable, teacher-load cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newRouter(cfg, logr, db, repository.NewCacheRepository(redisClient, logr), redisClient != nil)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, cacheRepo *repository.CacheRepository, cacheEnabled bool) *gin.Engine {
	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	termRepo := repository.NewTermRepository(db)
	programRepo := repository.NewProgramRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	entryRepo := repository.NewScheduleEntryRepository(db)
	prnRepo := repository.NewPRNRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TeacherLoadTTL, logr, cacheEnabled)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	professorSvc := service.NewProfessorService(professorRepo, cacheSvc, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	termSvc := service.NewTermService(termRepo, validate, logr)
	programSvc := service.NewProgramService(programRepo, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	entrySvc := service.NewScheduleEntryService(entryRepo, courseRepo, validate, logr, metrics, cfg.Schedule.Serializable)
	prnSvc := service.NewPRNService(prnRepo, programRepo, professorRepo, cacheSvc, metrics, validate, logr, cfg.TeachingLoad.TeachingWeeks)
	loadSvc := service.NewTeacherLoadService(prnRepo, programRepo, cacheSvc, logr, cfg.TeachingLoad.TeachingWeeks, cfg.TeachingLoad.WeeklyNorm, cfg.Cache.TeacherLoadTTL)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	professorHandler := handler.NewProfessorHandler(professorSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	termHandler := handler.NewTermHandler(termSvc)
	programHandler := handler.NewProgramHandler(programSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	entryHandler := handler.NewScheduleEntryHandler(entrySvc)
	planHandler := handler.NewPlanHandler(prnSvc)
	loadHandler := handler.NewTeacherLoadHandler(loadSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metrics))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
	}

	requireAuth := middleware.JWT(authSvc)
	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", requireAuth, authHandler.Me)

	users := api.Group("/users", requireAuth, middleware.RequireRoles(models.RoleAdmin))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	crud := func(path string, list, get, create, update, remove gin.HandlerFunc) *gin.RouterGroup {
		group := api.Group(path)
		group.GET("", list)
		group.GET("/:id", get)
		group.POST("", requireAuth, create)
		group.PUT("/:id", requireAuth, update)
		group.DELETE("/:id", requireAuth, remove)
		return group
	}

	crud("/professors", professorHandler.List, professorHandler.Get, professorHandler.Create, professorHandler.Update, professorHandler.Delete)
	crud("/subjects", subjectHandler.List, subjectHandler.Get, subjectHandler.Create, subjectHandler.Update, subjectHandler.Delete)
	crud("/rooms", roomHandler.List, roomHandler.Get, roomHandler.Create, roomHandler.Update, roomHandler.Delete)
	crud("/courses", courseHandler.List, courseHandler.Get, courseHandler.Create, courseHandler.Update, courseHandler.Delete)

	cycles := crud("/cycles", termHandler.ListCycles, termHandler.GetCycle, termHandler.CreateCycle, termHandler.UpdateCycle, termHandler.DeleteCycle)
	cycles.GET("/:id/terms", termHandler.ListTerms)
	cycles.POST("/:id/terms", requireAuth, termHandler.CreateTerm)
	terms := api.Group("/terms")
	terms.GET("/:id", termHandler.GetTerm)
	terms.PUT("/:id", requireAuth, termHandler.UpdateTerm)
	terms.DELETE("/:id", requireAuth, termHandler.DeleteTerm)

	programs := crud("/programs", programHandler.List, programHandler.Get, programHandler.Create, programHandler.Update, programHandler.Delete)
	programs.GET("/:id/years", programHandler.ListYears)
	programs.POST("/:id/years", requireAuth, programHandler.AddYear)
	programs.DELETE("/:id/years/:year", requireAuth, programHandler.DeleteYear)
	programs.GET("/:id/subjects", programHandler.ListSubjects)
	programs.POST("/:id/subjects", requireAuth, programHandler.LinkSubject)
	programs.DELETE("/:id/subjects/:subjectId", requireAuth, programHandler.UnlinkSubject)

	entries := api.Group("/entries")
	entries.GET("", entryHandler.List)
	entries.GET("/:id", entryHandler.Get)
	entries.POST("/check", entryHandler.Check)
	entries.POST("", requireAuth, middleware.Audit(userRepo, logr, models.AuditActionScheduleCreate, "schedule_entries"), entryHandler.Create)
	entries.DELETE("/:id", requireAuth, middleware.Audit(userRepo, logr, models.AuditActionScheduleDelete, "schedule_entries"), entryHandler.Delete)

	api.GET("/plan", planHandler.Get)
	api.GET("/plan/export", planHandler.Export)
	rows := api.Group("/rows", requireAuth)
	rows.PUT("/:id", middleware.Audit(userRepo, logr, models.AuditActionPlanRowUpdate, "prn_rows"), planHandler.UpdateRow)
	rows.POST("/add-teacher", middleware.Audit(userRepo, logr, models.AuditActionPlanRowUpdate, "prn_rows"), planHandler.AddTeacher)

	load := api.Group("/teacher-load")
	load.GET("", loadHandler.Rows)
	load.GET("/buckets", loadHandler.Buckets)
	load.GET("/report", loadHandler.Report)
	load.GET("/export", loadHandler.Export)

	return r
}
