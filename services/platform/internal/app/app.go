package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanvault/pkg/config"
	"fanvault/pkg/jwt"
	"fanvault/pkg/logger"
	"fanvault/pkg/metrics"
	"fanvault/pkg/middleware"
	"fanvault/pkg/queue"
	"fanvault/pkg/s3"
	platformHTTP "fanvault/services/platform/internal/controller/http"
	"fanvault/services/platform/internal/entitlement"
	"fanvault/services/platform/internal/notifier"
	"fanvault/services/platform/internal/repo"
	"fanvault/services/platform/internal/repo/persistent"
	"fanvault/services/platform/internal/usecase"
	"fanvault/services/platform/internal/wallet"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "fanvault/services/platform/docs" // Swagger docs
)

// Dependencies are the collaborators the HTTP layer is built from. Only
// Store is required.
type Dependencies struct {
	Store     repo.Store
	Media     usecase.MediaStore
	Publisher usecase.EventPublisher
	Verifier  usecase.SignatureVerifier
	Activity  usecase.ActivityFeed
}

type Handlers struct {
	Auth         *platformHTTP.AuthHandler
	Creator      *platformHTTP.CreatorHandler
	Post         *platformHTTP.PostHandler
	Subscription *platformHTTP.SubscriptionHandler
	Comment      *platformHTTP.CommentHandler
	Conversation *platformHTTP.ConversationHandler
}

func NewHandlers(deps Dependencies, jwtService *jwt.Service, log *logger.Logger) *Handlers {
	evaluator := entitlement.NewEvaluator(deps.Store)

	authUseCase := usecase.NewAuthUseCase(deps.Store, jwtService, deps.Verifier, log.With("auth"))
	creatorUseCase := usecase.NewCreatorUseCase(deps.Store, log.With("creators"), usecase.WithActivityFeed(deps.Activity))
	contentUseCase := usecase.NewContentUseCase(deps.Store, evaluator, deps.Media, log.With("content"))
	membershipUseCase := usecase.NewMembershipUseCase(deps.Store, deps.Publisher, log.With("membership"))
	commentUseCase := usecase.NewCommentUseCase(deps.Store, evaluator, log.With("comments"))
	messagingUseCase := usecase.NewMessagingUseCase(deps.Store, deps.Publisher, log.With("messaging"))

	return &Handlers{
		Auth:         platformHTTP.NewAuthHandler(authUseCase, log),
		Creator:      platformHTTP.NewCreatorHandler(creatorUseCase, contentUseCase, log),
		Post:         platformHTTP.NewPostHandler(contentUseCase, membershipUseCase, log),
		Subscription: platformHTTP.NewSubscriptionHandler(membershipUseCase, log),
		Comment:      platformHTTP.NewCommentHandler(commentUseCase, log),
		Conversation: platformHTTP.NewConversationHandler(messagingUseCase, log),
	}
}

// NewRouter mounts every route. Reads run with optional auth so anonymous
// callers get redacted views; writes require a token.
func NewRouter(h *Handlers, jwtService *jwt.Service, redisClient *redis.Client, rateLimit int, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/metrics", metrics.Handler())

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, rateLimit, time.Minute))

	auth := middleware.RequireAuth()

	{
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/me", auth, h.Auth.Me)
		api.POST("/auth/wallet/nonce", auth, h.Auth.WalletNonce)
		api.POST("/auth/wallet/verify", auth, h.Auth.WalletVerify)
	}

	{
		api.POST("/creators", auth, h.Creator.BecomeCreator)
		api.GET("/creators", h.Creator.ListCreators)
		api.PATCH("/creators/me", auth, h.Creator.UpdateMe)
		api.GET("/creators/me/earnings", auth, h.Creator.GetEarnings)
		api.GET("/creators/me/activity", auth, h.Creator.GetActivity)
		api.GET("/creators/:handle", h.Creator.GetCreator)
		api.GET("/creators/:handle/posts", h.Creator.GetCreatorPosts)
	}

	{
		api.GET("/posts", h.Post.ListPosts)
		api.GET("/posts/:id", h.Post.GetPost)
		api.POST("/posts", auth, h.Post.CreatePost)
		api.PATCH("/posts/:id", auth, h.Post.UpdatePost)
		api.DELETE("/posts/:id", auth, h.Post.DeletePost)
		api.POST("/posts/:id/like", auth, h.Post.LikePost)
		api.POST("/posts/:id/unlock", auth, h.Post.UnlockPost)
	}

	{
		api.GET("/subscriptions/status/:creator_id", auth, h.Subscription.Status)
		api.POST("/subscriptions", auth, h.Subscription.Subscribe)
		api.GET("/subscriptions/me", auth, h.Subscription.ListMine)
		api.POST("/subscriptions/:id/renew", auth, h.Subscription.Renew)
		api.POST("/subscriptions/:id/cancel", auth, h.Subscription.Cancel)
		api.POST("/tips", auth, h.Subscription.Tip)
	}

	{
		api.GET("/posts/:id/comments", h.Comment.ListComments)
		api.POST("/posts/:id/comments", auth, h.Comment.CreateComment)
		api.POST("/comments/:id/vote", auth, h.Comment.VoteComment)
		api.POST("/comments/:id/hide", auth, h.Comment.HideComment)
		api.DELETE("/comments/:id", auth, h.Comment.DeleteComment)
	}

	{
		api.GET("/conversations", auth, h.Conversation.ListConversations)
		api.POST("/conversations", auth, h.Conversation.StartConversation)
		api.GET("/conversations/:id/messages", auth, h.Conversation.ListMessages)
		api.POST("/conversations/:id/messages", auth, h.Conversation.SendMessage)
	}

	return r
}

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, s3Client *s3.Client, queueClient *queue.Client, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	deps := Dependencies{
		Store:    persistent.NewStore(db),
		Verifier: wallet.NewEd25519Verifier(),
	}
	// Assigned only when set so the interfaces stay nil otherwise.
	if s3Client != nil {
		deps.Media = s3Client
	}
	if queueClient != nil {
		deps.Publisher = queueClient
	}
	if redisClient != nil {
		deps.Activity = notifier.NewFeed(redisClient, notifier.DefaultFeedSize)
	}

	handlers := NewHandlers(deps, jwtService, log)
	r := NewRouter(handlers, jwtService, redisClient, cfg.RateLimitPerMinute, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Platform service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down platform service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		queueClient.Close()
	}

	log.Info("Platform service exited")
}
