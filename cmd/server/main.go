package main

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/family-chores-api/internal/auth"
	"github.com/yukikurage/family-chores-api/internal/config"
	"github.com/yukikurage/family-chores-api/internal/database"
	"github.com/yukikurage/family-chores-api/internal/logging"
	"github.com/yukikurage/family-chores-api/internal/router"
	"github.com/yukikurage/family-chores-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid APP_TIMEZONE %q: %v", cfg.Timezone, err)
	}

	// Connect to database
	if err := database.Connect(cfg, log); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(database.GetDB(), log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}

	mailer, err := services.NewEmailService(context.Background(), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, log)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	r := router.New(router.Dependencies{
		DB:                database.GetDB(),
		SessionStore:      store,
		Tokens:            auth.NewTokenService(cfg.JWTSecret, "family-chores-api", cfg.JWTTTL),
		Mailer:            mailer,
		Log:               log,
		Timezone:          loc,
		AuthRatePerMinute: cfg.AuthRatePerMinute,
	})

	// Start server
	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("Server starting")
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newSessionStore builds the Redis session store, or a cookie store when
// SESSION_STORE=cookie (single instance and local development).
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.SessionStore == "cookie" {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	} else {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,                        // Redis pool size
			"tcp",                     // network type
			redisAddr,                 // Redis address from config
			"",                        // password (empty = no password)
			[]byte(cfg.SessionSecret), // authentication key
		)
		if err != nil {
			return nil, err
		}
		store = rs
	}

	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
