package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/bekzodm/levelcheck/config"
	"github.com/bekzodm/levelcheck/database"
	_ "github.com/bekzodm/levelcheck/docs" // Swagger docs
	"github.com/bekzodm/levelcheck/internal/cache"
	adminctrl "github.com/bekzodm/levelcheck/internal/controller/admin"
	userctrl "github.com/bekzodm/levelcheck/internal/controller/user"
	"github.com/bekzodm/levelcheck/internal/event"
	"github.com/bekzodm/levelcheck/internal/logger"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
	"github.com/bekzodm/levelcheck/internal/service"
)

// @title Levelcheck Placement Test API
// @version 1.0
// @description Chat-driven placement tests: attempts, answers, scoring, levels and points.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			cache.New,
			event.NewPublisher,
		),

		fx.Provide(
			repository.NewTestRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
			repository.NewPointsRepository,
			repository.NewUserRepository,
		),

		fx.Provide(
			service.NewScoringPolicy,
			service.NewPointsPolicy,
			service.NewAttemptService,
			service.NewSequencerService,
			service.NewAnswerService,
			service.NewScoringService,
			service.NewPointsService,
			service.NewSessionService,
			service.NewCatalogService,
			service.NewAdminTestService,
			service.NewUserService,
		),

		fx.Provide(
			userctrl.NewSessionController,
			userctrl.NewCatalogController,
			userctrl.NewUserController,
			adminctrl.NewAdminTestController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	sessionCtrl *userctrl.SessionController,
	catalogCtrl *userctrl.CatalogController,
	userCtrl *userctrl.UserController,
	adminTestCtrl *adminctrl.AdminTestController,
) {
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		testsAdminGroup := adminAPIGroup.Group("/tests")
		testsAdminGroup.POST("", adminTestCtrl.CreateTest)
		testsAdminGroup.PATCH("/:test_id/active", adminTestCtrl.SetTestActive)
	}

	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.GET("/tests", catalogCtrl.ListTests)
		userAPIGroup.GET("/tests/:test_id", catalogCtrl.GetTest)

		userAPIGroup.POST("/tests/:test_id/attempts", sessionCtrl.StartAttempt)
		userAPIGroup.GET("/tests/:test_id/my-attempts", sessionCtrl.GetUserAttempts)
		userAPIGroup.POST("/attempts/:attempt_id/answers", sessionCtrl.SubmitAnswer)
		userAPIGroup.GET("/attempts/:attempt_id/next", sessionCtrl.NextQuestion)
		userAPIGroup.GET("/attempts/:attempt_id", sessionCtrl.GetAttemptSummary)
		userAPIGroup.GET("/attempts/:attempt_id/report", sessionCtrl.GetAttemptReport)

		userAPIGroup.POST("/users", userCtrl.Register)
		userAPIGroup.PUT("/users/:tg_id/phone", userCtrl.SavePhone)
		userAPIGroup.GET("/users/:user_id", userCtrl.GetProfile)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Placement test API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Test{},
		&model.Question{},
		&model.Option{},
		&model.User{},
		&model.Attempt{},
		&model.Answer{},
		&model.PointsEntry{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
