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
	"github.com/socialapp/socialapp/internal/config"
	"github.com/socialapp/socialapp/internal/handlers"
	"github.com/socialapp/socialapp/internal/middleware"
	"github.com/socialapp/socialapp/internal/repository"
	"github.com/socialapp/socialapp/internal/services"
	"github.com/socialapp/socialapp/internal/throttle"
	"github.com/socialapp/socialapp/pkg/cache"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting social app API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	userEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.UserEvents)
	defer userEventsProducer.Close()

	activityEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ActivityEvents)
	defer activityEventsProducer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	profileRepo := repository.NewProfileRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	chatRepo := repository.NewChatRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	loginThrottle := throttle.NewLoginThrottle(
		throttle.NewRedisStore(redisClient),
		int64(cfg.Auth.MaxLoginAttempts),
		cfg.Auth.LockoutWindow,
	)

	userService := services.NewUserService(
		userRepo, profileRepo, followRepo, postRepo,
		loginThrottle, userEventsProducer, activityEventsProducer,
		cfg.Auth.FailureDelay, logger,
	)
	postService := services.NewPostService(postRepo, userRepo, followRepo, redisClient, activityEventsProducer, &cfg.Feed, logger)
	likeService := services.NewLikeService(postRepo, likeRepo, userRepo, activityEventsProducer, logger)
	commentService := services.NewCommentService(postRepo, commentRepo, userRepo, activityEventsProducer, logger)
	chatService := services.NewChatService(chatRepo, messageRepo, userRepo, activityEventsProducer, logger)
	notificationService := services.NewNotificationService(notificationRepo)

	denylist := middleware.NewRedisDenylist(redisClient)

	authHandler := handlers.NewAuthHandler(userService, cfg.JWT.Secret, cfg.JWT.ExpireTime, denylist)
	userHandler := handlers.NewUserHandler(userService, notificationService)
	postHandler := handlers.NewPostHandler(postService, likeService, commentService, userService)
	chatHandler := handlers.NewChatHandler(chatService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(&middleware.JWTConfig{
			Secret:   cfg.JWT.Secret,
			Denylist: denylist,
		}))
		{
			protected.POST("/auth/logout", authHandler.Logout)

			protected.GET("/feed", postHandler.GetFeed)
			protected.GET("/search", postHandler.Search)

			protected.GET("/users/:username", userHandler.GetProfile)
			protected.PUT("/users/profile", userHandler.UpdateProfile)
			protected.POST("/users/:username/follow", userHandler.ToggleFollow)
			protected.GET("/notifications", userHandler.GetNotifications)

			protected.POST("/posts", postHandler.CreatePost)
			protected.GET("/posts/:id", postHandler.GetPost)
			protected.PUT("/posts/:id", postHandler.UpdatePost)
			protected.DELETE("/posts/:id", postHandler.DeletePost)
			protected.POST("/posts/:id/like", postHandler.ToggleLike)
			protected.POST("/posts/:id/comments", postHandler.AddComment)
			protected.GET("/posts/:id/comments", postHandler.GetPostComments)

			protected.GET("/messages", chatHandler.GetPartners)
			protected.POST("/messages", chatHandler.SendMessage)
			protected.GET("/messages/:id", chatHandler.GetMessages)
			protected.GET("/chats/:username", chatHandler.OpenChat)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	if err := os.MkdirAll("configs", 0755); err != nil {
		log.Printf("Failed to create configs directory: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "socialapp"
  password: "socialapp"
  dbname: "socialapp"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    user_events: "user-events"
    activity_events: "activity-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

auth:
  max_login_attempts: 5
  lockout_window: 5m
  failure_delay: 500ms

feed:
  cache_ttl: 1m
  page_size: 20`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
