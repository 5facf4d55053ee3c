package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/family-chores-api/internal/auth"
	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/handlers"
	"github.com/yukikurage/family-chores-api/internal/metrics"
	"github.com/yukikurage/family-chores-api/internal/middleware"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/repository"
	"github.com/yukikurage/family-chores-api/internal/services"
	"gorm.io/gorm"
)

// Dependencies are the process-wide pieces the router is built from
type Dependencies struct {
	DB                *gorm.DB
	SessionStore      sessions.Store
	Tokens            *auth.TokenService
	Mailer            services.Mailer
	Log               *logrus.Logger
	Timezone          *time.Location
	AuthRatePerMinute int
}

// New wires repositories, services and handlers onto a gin engine
func New(deps Dependencies) *gin.Engine {
	// Repositories
	familyRepo := repository.NewFamilyRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)
	giftRepo := repository.NewGiftRepository(deps.DB)
	ledgerRepo := repository.NewLedgerRepository(deps.DB)

	// Services
	authService := services.NewAuthService(userRepo)
	familyService := services.NewFamilyService(familyRepo, userRepo, deps.Mailer, deps.Log)
	taskService := services.NewTaskService(taskRepo)
	giftService := services.NewGiftService(giftRepo)
	ledgerService := services.NewLedgerService(ledgerRepo, taskRepo, giftRepo, deps.Timezone, deps.Log)
	statsService := services.NewStatsService(ledgerRepo, userRepo)
	subscriptionService := services.NewSubscriptionService(familyRepo, deps.Log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, familyService, deps.Tokens)
	taskHandler := handlers.NewTaskHandler(taskService)
	giftHandler := handlers.NewGiftHandler(giftService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	familyHandler := handlers.NewFamilyHandler(familyService)
	statsHandler := handlers.NewStatsHandler(statsService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		middleware.Metrics(),
		sessions.Sessions(constants.SessionCookieName, deps.SessionStore),
	)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Family Chores API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireAuth := middleware.RequireAuth(userRepo, deps.Tokens)
	limiter := middleware.NewRateLimiter(deps.AuthRatePerMinute, deps.Log)

	api := r.Group("/api")
	{
		// Auth routes (public unless noted)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", limiter.Middleware(), authHandler.Register)
			authRoutes.POST("/login", limiter.Middleware(), authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.POST("/invite/accept", limiter.Middleware(), authHandler.AcceptInvite)
			authRoutes.POST("/password/forgot", limiter.Middleware(), authHandler.ForgotPassword)
			authRoutes.POST("/password/reset", limiter.Middleware(), authHandler.ResetPassword)
			authRoutes.GET("/me", requireAuth, authHandler.GetCurrentUser)
			authRoutes.PUT("/password", requireAuth, authHandler.ChangePassword)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", middleware.RequireGuardian(), taskHandler.Create)
			tasks.PUT("/order", middleware.RequireGuardian(), taskHandler.Reorder)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PUT("/:id", middleware.RequireGuardian(), taskHandler.Update)
			tasks.DELETE("/:id", middleware.RequireGuardian(), taskHandler.Delete)
			tasks.POST("/:id/complete", ledgerHandler.CompleteTask)
		}

		// Gift routes (protected)
		gifts := api.Group("/gifts")
		gifts.Use(requireAuth)
		{
			gifts.GET("", giftHandler.List)
			gifts.POST("", middleware.RequireGuardian(), giftHandler.Create)
			gifts.PUT("/order", middleware.RequireGuardian(), giftHandler.Reorder)
			gifts.GET("/:id", giftHandler.Get)
			gifts.PUT("/:id", middleware.RequireGuardian(), giftHandler.Update)
			gifts.DELETE("/:id", middleware.RequireGuardian(), giftHandler.Delete)
			gifts.POST("/:id/redeem", middleware.RequireRole(models.RoleChild), ledgerHandler.RequestGift)
		}

		// Ledger routes (protected)
		ledger := api.Group("")
		ledger.Use(requireAuth)
		{
			ledger.GET("/completions", ledgerHandler.ListCompletions)
			ledger.PUT("/completions/:id/status", middleware.RequireGuardian(), ledgerHandler.SetCompletionStatus)
			ledger.GET("/redemptions", ledgerHandler.ListRedemptions)
			ledger.PUT("/redemptions/:id/status", middleware.RequireGuardian(), ledgerHandler.SetRedemptionStatus)
			ledger.GET("/stats", middleware.RequireGuardian(), statsHandler.GetStats)
			ledger.GET("/subscription", subscriptionHandler.GetSubscription)
			ledger.POST("/subscription", middleware.RequireAdmin(), subscriptionHandler.Activate)
		}

		// Family routes (protected)
		family := api.Group("/family")
		family.Use(requireAuth)
		{
			family.GET("", familyHandler.GetFamily)
			family.PUT("", middleware.RequireAdmin(), familyHandler.RenameFamily)
			family.POST("/join", familyHandler.JoinFamily)
			family.POST("/invite-code", middleware.RequireAdmin(), familyHandler.RegenerateInviteCode)
			family.GET("/members", middleware.RequireGuardian(), familyHandler.ListMembers)
			family.POST("/members", middleware.RequireAdmin(), familyHandler.InviteMember)
			family.GET("/members/:id", familyHandler.GetMember)
			family.PUT("/members/:id", familyHandler.UpdateMember)
			family.DELETE("/members/:id", middleware.RequireAdmin(), familyHandler.DeleteMember)
		}
	}

	return r
}
