package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/apiserver/handler"
	"github.com/enrollflow/enrollflow/internal/apiserver/middleware"
	"github.com/enrollflow/enrollflow/internal/audit"
	"github.com/enrollflow/enrollflow/internal/auth/jwt"
	"github.com/enrollflow/enrollflow/internal/common/config"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/enrollflow/enrollflow/internal/intake"
	"github.com/enrollflow/enrollflow/internal/pipeline"
	"github.com/enrollflow/enrollflow/pkg/logger"
	"github.com/enrollflow/enrollflow/pkg/metrics"
	"github.com/enrollflow/enrollflow/pkg/version"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "EnrollFlow API Server",
		Long:  `EnrollFlow API Server provides the admissions CRM API: tenants, users, agents, the pipeline board and public lead intake`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()
	zapLogger.Info("loaded configuration", zap.String("path", cfgPath))

	if cfg.I18n.Path != "" {
		if err := i18n.InitTranslator(cfg.I18n.Path); err != nil {
			zapLogger.Warn("failed to load translations, falling back to message ids",
				zap.String("path", cfg.I18n.Path), zap.Error(err))
		}
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	if cfg.SuperAdmin.Email != "" && cfg.SuperAdmin.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperAdmin.Password), bcrypt.DefaultCost)
		if err != nil {
			zapLogger.Fatal("Failed to hash super admin password", zap.Error(err))
		}
		if err := database.EnsureSuperAdmin(context.Background(), db, cfg.SuperAdmin.Email, string(hashed)); err != nil {
			zapLogger.Fatal("Failed to ensure super admin account", zap.Error(err))
		}
	}

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("Failed to initialize JWT service", zap.Error(err))
	}

	limiter, err := intake.NewLimiter(&cfg.Intake.RateLimit)
	if err != nil {
		zapLogger.Fatal("Failed to initialize intake rate limiter", zap.Error(err))
	}
	defer func() {
		_ = limiter.Close()
	}()

	auditor := audit.NewRecorder(db, zapLogger)
	engine := pipeline.NewEngine(db, auditor, zapLogger)
	intakeSvc := intake.NewService(db, engine, limiter, zapLogger)
	m := metrics.New(cfg.Metrics)

	h := handler.NewHandler(db, engine, intakeSvc, jwtService, auditor, m, zapLogger)

	router := gin.Default()
	router.Use(i18n.LanguageMiddleware())
	if cfg.Metrics.Enabled {
		router.Use(m.Middleware())
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	registerRoutes(router, h, jwtService)

	port := cfg.Port
	if port == 0 {
		port = 5234
	}
	zapLogger.Info("starting apiserver",
		zap.String("version", version.Get()),
		zap.Int("port", port))
	if err := router.Run(fmt.Sprintf(":%d", port)); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}

func registerRoutes(router *gin.Engine, h *handler.Handler, jwtService *jwt.Service) {
	router.GET("/health_check", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public surfaces: login and the unauthenticated intake forms
	router.POST("/api/auth/login", h.Login)
	public := router.Group("/api/public")
	{
		public.POST("/forms/:slug", h.SubmitUniversityForm)
		public.POST("/agents/:slug", h.SubmitAgentForm)
	}

	api := router.Group("/api", middleware.JWTAuthMiddleware(jwtService))
	{
		api.POST("/auth/change-password", h.ChangePassword)
		api.GET("/auth/me", h.Me)

		tenants := api.Group("/tenants", handler.SuperAdminMiddleware())
		{
			tenants.GET("", h.ListTenants)
			tenants.POST("", h.CreateTenant)
			tenants.GET("/:slug", h.GetTenant)
			tenants.PUT("/:slug", h.UpdateTenant)
		}

		users := api.Group("/users", handler.AdminMiddleware())
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.PUT("/:id/role", h.ChangeRole)
		}

		agents := api.Group("/agents", handler.AdminMiddleware())
		{
			agents.GET("", h.ListAgents)
			agents.PUT("/:id", h.UpdateAgent)
			agents.POST("/:id/rotate-slug", h.RotateAgentSlug)
		}

		pipelineGroup := api.Group("/pipeline")
		{
			pipelineGroup.GET("/stages", h.ListStages)
			pipelineGroup.PUT("/stages", handler.AdminMiddleware(), h.SaveStages)

			pipelineGroup.GET("/leads", h.ListLeads)
			pipelineGroup.POST("/leads", h.CreateLead)
			pipelineGroup.GET("/leads/:id", h.GetLead)
			pipelineGroup.PUT("/leads/:id/stage", h.MoveLead)
			pipelineGroup.PUT("/leads/:id/agent", h.AssignAgent)
			pipelineGroup.PUT("/leads/:id/score", h.ScoreLead)
		}

		api.GET("/audit", handler.AdminMiddleware(), h.ListAuditLogs)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
