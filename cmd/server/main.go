// @title Recruiting Admin Dashboard API
// @version 1.0
// @description Backend API for the job board admin dashboard
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.email support@example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tchasinga/adminjobposter/config"
	_ "github.com/tchasinga/adminjobposter/docs"
	"github.com/tchasinga/adminjobposter/internal/changefeed"
	"github.com/tchasinga/adminjobposter/internal/database"
	"github.com/tchasinga/adminjobposter/internal/handlers"
	"github.com/tchasinga/adminjobposter/internal/limits"
	"github.com/tchasinga/adminjobposter/internal/middleware"
	"github.com/tchasinga/adminjobposter/internal/redisclient"
	"github.com/tchasinga/adminjobposter/internal/repository"
	"github.com/tchasinga/adminjobposter/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer func() {
		if err := mongodb.Disconnect(context.Background()); err != nil {
			log.Println("MongoDB disconnect:", err)
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongodb.Database)
	applicantRepo := repository.NewApplicantRepository(mongodb.Database)
	jobRepo := repository.NewJobRepository(mongodb.Database)
	statsRepo := repository.NewStatisticsRepository(mongodb.Database)

	for name, ensure := range map[string]func(context.Context) error{
		"users":      userRepo.EnsureIndexes,
		"applicants": applicantRepo.EnsureIndexes,
		"jobs":       jobRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatalf("Failed to create %s indexes: %v", name, err)
		}
	}

	// Redis backs the sign-in limiter and the cross-instance change feed.
	var rdb *redis.Client
	feed := changefeed.NewBroker()
	if cfg.RedisURL != "" {
		rdb = redisclient.New(cfg.RedisURL)
		defer rdb.Close()
		if err := redisclient.Ping(ctx, rdb); err != nil {
			log.Fatal("Failed to connect to Redis: ", err)
		}
		feed = changefeed.NewRedisBroker(rdb, changefeed.DefaultChannel)
		go func() {
			if err := feed.Run(ctx); err != nil {
				log.Println("changefeed relay stopped:", err)
			}
		}()
	} else {
		log.Println("REDIS_URL not set: sign-in rate limiting disabled, change feed is local only")
	}
	signinLimiter := limits.NewRateLimiter(rdb, "signin", cfg.SigninRateLimit, cfg.SigninRateWindow)

	// Initialize services
	dashboardService := services.NewDashboardService(statsRepo, cfg.ChartLocation)
	applicantSearch := services.NewApplicantSearch(applicantRepo)
	googleIdentity := services.NewGoogleIdentity(cfg)
	services.StartJobChangeWatcher(ctx, cfg.JobWatchInterval, jobRepo, feed, changefeed.TopicJobs)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userRepo, signinLimiter, googleIdentity)
	applicantHandler := handlers.NewApplicantHandler(applicantRepo, applicantSearch)
	jobHandler := handlers.NewJobHandler(jobRepo, feed)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal("Failed to register metrics: ", err)
	}

	// Initialize Gin
	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg))
	r.Use(metrics.Middleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	public := r.Group("/api")
	{
		public.GET("/health", func(c *gin.Context) {
			status, dbState := http.StatusOK, "connected"
			if err := mongodb.Ping(c.Request.Context()); err != nil {
				status, dbState = http.StatusServiceUnavailable, "unreachable"
			}
			c.JSON(status, gin.H{
				"status":   http.StatusText(status),
				"database": dbState,
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/signin", authHandler.Signin)
			auth.POST("/google", authHandler.GoogleAuth)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		public.POST("/applicants", applicantHandler.CreateApplicant)
		public.GET("/jobs", jobHandler.ListJobs)
		public.GET("/jobs/:id", jobHandler.GetJob)
	}

	// Signed-in routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/auth/me", authHandler.Me)
	}

	// Admin routes
	admin := r.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.RequireAdmin())
	{
		admin.GET("/dashboard/applicants-chart", dashboardHandler.ApplicantsChart)
		admin.GET("/dashboard/jobs-chart", dashboardHandler.JobsChart)
		admin.GET("/dashboard/stats", dashboardHandler.Stats)

		admin.GET("/applicants", applicantHandler.ListApplicants)
		admin.GET("/applicants/board", applicantHandler.Board)
		admin.GET("/applicants/suggest", applicantHandler.Suggest)
		admin.GET("/applicants/export", applicantHandler.Export)
		admin.GET("/applicants/:id", applicantHandler.GetApplicant)
		admin.PUT("/applicants/:id/status", applicantHandler.UpdateStatus)

		admin.POST("/jobs", jobHandler.CreateJob)
		admin.PUT("/jobs/:id", jobHandler.UpdateJob)
		admin.DELETE("/jobs/:id", jobHandler.DeleteJob)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server shutdown:", err)
	}
}
