package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"proposal-market/internal/auth"
	"proposal-market/internal/config"
	"proposal-market/internal/database"
	"proposal-market/internal/handlers"
	"proposal-market/internal/models"
	"proposal-market/internal/repository"
	"proposal-market/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Initialize services
	auditService := services.NewAuditService(repo)
	authService := services.NewAuthService(repo)
	userService := services.NewUserService(repo)
	proposalService := services.NewProposalService(repo, auditService)
	submissionService := services.NewSubmissionService(repo, auditService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	adminHandler := handlers.NewAdminHandler(proposalService, auditService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := strings.Split(cfg.App.CORSOrigins, ",")
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/api/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.Me)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// NDA template
		api.GET("/nda/template", submissionHandler.GetNdaTemplate)

		// Buyer directory for allow-list selection
		api.GET("/buyers", authHandler.ListBuyers)

		// Proposal endpoints
		api.POST("/proposals", proposalHandler.Create)
		api.GET("/proposals", proposalHandler.List)
		api.GET("/proposals/:id", proposalHandler.Get)
		api.PUT("/proposals/:id", proposalHandler.Update)
		api.DELETE("/proposals/:id", proposalHandler.Delete)
		api.POST("/proposals/:id/submit", proposalHandler.SubmitForReview)
		api.POST("/proposals/:id/publish", proposalHandler.Publish)
		api.POST("/proposals/:id/send", proposalHandler.SendToBuyers)
		api.POST("/proposals/:id/archive", proposalHandler.Archive)
		api.POST("/proposals/:id/delete-request", proposalHandler.RequestDelete)
		api.POST("/proposals/:id/interest", submissionHandler.ExpressProposalInterest)

		// Submission endpoints
		api.GET("/submissions", submissionHandler.List)
		api.GET("/submissions/analytics", submissionHandler.SellerAnalytics)
		api.GET("/submissions/:id", submissionHandler.Get)
		api.POST("/submissions/:id/view", submissionHandler.RecordView)
		api.POST("/submissions/:id/download", submissionHandler.RecordDownload)
		api.POST("/submissions/:id/interest", submissionHandler.ExpressInterest)
		api.POST("/submissions/:id/nda", submissionHandler.SignNda)
		api.POST("/submissions/:id/contact-request", submissionHandler.RequestContactExchange)
		api.POST("/submissions/:id/contact-approve", submissionHandler.ApproveContactExchange)
		api.POST("/submissions/:id/close", submissionHandler.Close)
		api.GET("/submissions/:id/comments", submissionHandler.ListComments)
		api.POST("/submissions/:id/comments", submissionHandler.AddComment)
		api.POST("/submissions/:id/comments/:commentId/reply", submissionHandler.ReplyToComment)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.RequireRole(models.RoleAdmin))
	{
		admin.GET("/proposals/pending", adminHandler.ListReviewQueue)
		admin.POST("/proposals/:id/approve", adminHandler.Approve)
		admin.POST("/proposals/:id/reject", adminHandler.Reject)
		admin.GET("/proposals/delete-requests", adminHandler.ListDeleteRequests)
		admin.POST("/proposals/:id/delete-approve", adminHandler.ApproveDelete)
		admin.GET("/audit", adminHandler.ListAuditLog)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
