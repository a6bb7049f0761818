package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arrajeevchandar/messhall/internal/attendance"
	"github.com/arrajeevchandar/messhall/internal/auth"
	"github.com/arrajeevchandar/messhall/internal/cloudinary"
	"github.com/arrajeevchandar/messhall/internal/config"
	"github.com/arrajeevchandar/messhall/internal/handler"
	"github.com/arrajeevchandar/messhall/internal/httpmiddleware"
	"github.com/arrajeevchandar/messhall/internal/mealclock"
	"github.com/arrajeevchandar/messhall/internal/menu"
	"github.com/arrajeevchandar/messhall/internal/queue"
	"github.com/arrajeevchandar/messhall/internal/roster"
	"github.com/arrajeevchandar/messhall/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(db.Client); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	clock, err := mealclock.NewSystemClock(cfg.MealTimezone)
	if err != nil {
		return err
	}
	policy, err := mealclock.PolicyFromStrings(cfg.LunchCutoff, cfg.DinnerCutoff, cfg.ReportVisibleFrom)
	if err != nil {
		return err
	}
	mode, err := attendance.ParseWriteMode(cfg.SubmitMode)
	if err != nil {
		return err
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "messhall:emails")
	}

	records := attendance.NewRepository(db.Client)
	members := roster.NewRepository(db.Client)
	menus := menu.NewRepository(db.Client)
	submissions := attendance.NewService(records, clock, policy, mode)
	reports := attendance.NewReporter(records, members, clock, policy)
	otp := auth.NewOTPStore(redisClient.Client, cfg.OTPTTL)

	// Cloudinary client (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	h := handler.New(cfg, clock, policy, submissions, reports, members, menus, otp, q, cdnClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	v1 := r.Group("/v1")
	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)
	v1.POST("/auth/otp/request", h.RequestOTP)
	v1.POST("/auth/otp/verify", h.VerifyOTP)
	v1.POST("/auth/passkey", h.PasskeyLogin)
	v1.GET("/menu", h.ListMenu)
	v1.GET("/menu/:day", h.GetMenuDay)

	authed := v1.Group("", auth.MemberAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
	authed.POST("/lunch", h.SubmitMeal(mealclock.Lunch))
	authed.GET("/lunch", h.GetOwnMeal(mealclock.Lunch))
	authed.POST("/dinner", h.SubmitMeal(mealclock.Dinner))
	authed.GET("/dinner", h.GetOwnMeal(mealclock.Dinner))

	admin := authed.Group("/admin", auth.AdminOnly())
	admin.GET("/lunch-report", h.MealReport(mealclock.Lunch))
	admin.GET("/dinner-report", h.MealReport(mealclock.Dinner))
	admin.GET("/passkey", h.Passkey)
	admin.GET("/members", h.ListMembers)
	admin.POST("/members", h.CreateMember)
	admin.PATCH("/members/:id/active", h.SetMemberActive)
	admin.PUT("/menu/:day", h.PutMenuDay)
	admin.POST("/menu/upload", h.UploadMenuImage)

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
