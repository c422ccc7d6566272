package server

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"wcircle.app/watchcircle/internal/config"
	"wcircle.app/watchcircle/internal/handler"
	"wcircle.app/watchcircle/internal/metadata"
	"wcircle.app/watchcircle/internal/middleware"
	"wcircle.app/watchcircle/internal/repository"
	"wcircle.app/watchcircle/internal/service"
	"wcircle.app/watchcircle/pkg/storage"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	statusRepo := repository.NewWatchStatusRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("⚠️ Cloudinary not configured, avatar uploads disabled: %v", err)
		imageStorage = nil
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := service.NewMeiliSearchService(meiliClient)

	tmdb := metadata.NewTMDBProvider(cfg.TMDBBaseURL, cfg.TMDBAPIKey, cfg.TMDBRegion)

	var stateStore service.DisplayStateStore
	if redisClient != nil {
		stateStore = service.NewRedisStateStore(redisClient)
	} else {
		stateStore = service.NewMemoryStateStore()
	}

	// Services
	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	authSvc := service.NewAuthService(userRepo, searchSvc, cfg.JWTSecret)
	profileSvc := service.NewProfileService(userRepo, followRepo, imageStorage, searchSvc)
	followSvc := service.NewFollowService(followRepo, userRepo, ratingRepo, notificationSvc, stateStore)
	suggestionSvc := service.NewSuggestionService(userRepo, followRepo, ratingRepo, searchSvc, redisClient)
	interactionSvc := service.NewInteractionService(
		ratingRepo, statusRepo, likeRepo, commentRepo, activityRepo,
		notificationSvc, stateStore, redisClient,
	)
	enricher := service.NewSocialEnricher(
		followRepo, statusRepo, ratingRepo, userRepo, settingRepo,
		tmdb, redisClient, cfg.EnrichTimeout,
	)
	feedSvc := service.NewFeedService(
		activityRepo, followRepo, commentRepo, likeRepo,
		enricher, suggestionSvc, redisClient, cfg.FeedPageSize,
	)
	adminSvc := service.NewAdminService(settingRepo, redisClient)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	feedHandler := handler.NewFeedHandler(feedSvc)
	followHandler := handler.NewFollowHandler(followSvc, suggestionSvc)
	interactionHandler := handler.NewInteractionHandler(interactionSvc, enricher)
	profileHandler := handler.NewProfileHandler(profileSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)
	adminHandler := handler.NewAdminHandler(adminSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/streaming-allowlist", adminHandler.GetStreamingAllowlist)
			adminGroup.PUT("/streaming-allowlist", adminHandler.SetStreamingAllowlist)
		}

		// Feed
		protected.GET("/feed", feedHandler.GetFeed)

		// Follow graph
		protected.POST("/users/:id/follow", followHandler.Follow)
		protected.DELETE("/users/:id/follow", followHandler.Unfollow)
		protected.GET("/follow-requests", followHandler.ListRequests)
		protected.POST("/follow-requests/:follower_id/accept", followHandler.AcceptRequest)

		// Follow suggestions
		protected.GET("/suggestions", followHandler.GetSuggestions)
		protected.POST("/suggestions/:id/dismiss", followHandler.DismissSuggestion)

		// Media interactions
		protected.PUT("/media/:media_id/rating", interactionHandler.Rate)
		protected.PUT("/media/:media_id/status", interactionHandler.SetStatus)
		protected.GET("/media/:media_id/social", interactionHandler.GetSocialContext)

		// Activity interactions
		protected.POST("/activities/:id/like", interactionHandler.LikeActivity)
		protected.POST("/activities/:id/comments", interactionHandler.CommentActivity)
		protected.GET("/activities/:id/comments", interactionHandler.ListComments)

		// Profile routes
		protected.GET("/profile/me", profileHandler.GetMe)
		protected.GET("/profile/:username", profileHandler.GetByUsername)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
