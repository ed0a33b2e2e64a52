package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitmaster/habitmaster/ai"
	"github.com/habitmaster/habitmaster/config"
	"github.com/habitmaster/habitmaster/controllers"
	"github.com/habitmaster/habitmaster/middleware"
	"github.com/habitmaster/habitmaster/sheets"
	"github.com/habitmaster/habitmaster/utils"
)

// Deps carries the shared service instances the controllers need.
type Deps struct {
	DB        *gorm.DB
	AI        *ai.Client
	Sheets    *sheets.Client
	Syncer    *sheets.Syncer
	SyncMgr   *sheets.Manager
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	ginLogPath := cfg.GinPath
	// Use application log level as reference
	gl, err := utils.NewRollingFileLogger(ginLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	db := deps.DB
	authController := controllers.NewAuthController(db)
	habitController := controllers.NewHabitController(db, deps.Syncer, deps.SyncMgr)
	metricController := controllers.NewMetricController(db)
	statsController := controllers.NewStatsController(db)
	questController := controllers.NewQuestController(db, deps.AI)
	coachController := controllers.NewCoachController(db, deps.AI)
	sheetsController := controllers.NewSheetsController(db, deps.Sheets, deps.Syncer, deps.SyncMgr)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/google/login", authController.GoogleRedirect)
	authGroup.GET("/google/callback", authController.GoogleCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// OAuth callback lands here without a bearer token; the state value
	// carries the user binding.
	api.GET("/sheets/connect/callback", authController.SheetsConnectCallback)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/habits", habitController.List)
	protected.POST("/habits", habitController.Create)
	protected.DELETE("/habits/:id", habitController.Delete)
	protected.POST("/habits/:id/toggle", habitController.Toggle)
	protected.GET("/streak", habitController.GetStreak)
	protected.GET("/snapshot", habitController.GetSnapshot)
	protected.GET("/export.csv", habitController.ExportCSV)
	protected.GET("/dashboard", habitController.Dashboard)

	protected.GET("/metrics", metricController.List)
	protected.PUT("/metrics", metricController.Upsert)

	protected.GET("/stats", statsController.GetStats)

	protected.POST("/quests/analyze", questController.Analyze)
	protected.POST("/quests/plan", questController.GeneratePlan)
	protected.POST("/hero/plan", questController.HeroPlan)

	protected.POST("/coach/chat", coachController.Chat)

	protected.GET("/sheets/connect", authController.SheetsConnect)
	protected.POST("/sheets", sheetsController.Create)
	protected.POST("/sheets/sync", sheetsController.Sync)
	protected.GET("/sheets/status", sheetsController.Status)
	protected.DELETE("/sheets", sheetsController.Disconnect)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
