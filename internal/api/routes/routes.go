package routes

import (
	"time"

	"social-service/internal/adapters/database"
	"social-service/internal/api/handlers"
	"social-service/internal/api/middleware"
	"social-service/internal/auth"
	"social-service/internal/config"
	"social-service/internal/repository"
	"social-service/internal/service"
	"social-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "social-service/docs"
)

type Router struct {
	engine *gin.Engine

	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	friendHandler  *handlers.FriendHandler
	messageHandler *handlers.MessageHandler
	postHandler    *handlers.PostHandler
	storyHandler   *handlers.StoryHandler
	wsHandler      *handlers.WSHandler

	authMW      *middleware.AuthMiddleware
	rateLimitMW *middleware.RateLimitMiddleware

	storyService *service.StoryService
}

func NewRouter(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	hub *websocket.Hub,
	presence *service.PresenceService,
	media *database.MediaStore,
	sink service.EventSink,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.RequestLog())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	postRepo := repository.NewPostRepository(db)
	storyRepo := repository.NewStoryRepository(db)

	// Services
	authService := auth.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	profileService := service.NewProfileService(userRepo)
	friendService := service.NewFriendService(friendRepo)
	chatService := service.NewChatService(messageRepo, hub)
	feedService := service.NewFeedService(postRepo, friendService, hub, sink)
	storyService := service.NewStoryService(storyRepo, friendService, hub)

	return &Router{
		engine:         engine,
		authHandler:    handlers.NewAuthHandler(authService),
		userHandler:    handlers.NewUserHandler(profileService, presence, media),
		friendHandler:  handlers.NewFriendHandler(friendService, presence, hub),
		messageHandler: handlers.NewMessageHandler(chatService),
		postHandler:    handlers.NewPostHandler(feedService, media),
		storyHandler:   handlers.NewStoryHandler(storyService, media),
		wsHandler:      handlers.NewWSHandler(hub),
		authMW:         middleware.NewAuthMiddleware(cfg.JWT.Secret),
		rateLimitMW:    middleware.NewRateLimitMiddleware(redisClient),
		storyService:   storyService,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api")

	// WebSocket upgrade; browsers cannot set headers here, so the
	// token travels as a query parameter.
	api.GET("/ws", r.authMW.RequireAuthQuery(), r.wsHandler.HandleWebSocket)

	public := api.Group("/auth")
	public.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
	{
		public.POST("/register", r.authHandler.Register)
		public.POST("/login", r.authHandler.Login)
	}

	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	{
		users := authed.Group("/user")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/me", r.userHandler.Me)
			users.GET("/all", r.userHandler.All)
			users.GET("/search", r.userHandler.Search)
			users.GET("/:id", r.userHandler.GetByID)
			users.GET("/:id/status", r.userHandler.Status)
			users.PUT("/name", r.userHandler.UpdateName)
			users.PUT("/bio", r.userHandler.UpdateBio)
			users.PUT("/password", r.userHandler.ChangePassword)
			users.POST("/avatar", r.userHandler.UploadAvatar)
		}

		friends := authed.Group("/friends")
		friends.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			friends.POST("/add/:userId", r.friendHandler.SendRequest)
			friends.POST("/accept/:requestId", r.friendHandler.Accept)
			friends.POST("/reject/:requestId", r.friendHandler.Reject)
			friends.POST("/remove/:userId", r.friendHandler.Remove)
			friends.GET("/list", r.friendHandler.List)
			friends.GET("/requests", r.friendHandler.Incoming)
			friends.GET("/sent", r.friendHandler.Outgoing)
			friends.GET("/online", r.friendHandler.Online)
		}

		messages := authed.Group("/messages")
		messages.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			messages.POST("", r.messageHandler.Send)
			messages.GET("/:friendId", r.messageHandler.History)
			messages.DELETE("/:messageId", r.messageHandler.Delete)
		}

		posts := authed.Group("/posts")
		posts.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			posts.POST("/create", r.postHandler.Create)
			posts.GET("/feed", r.postHandler.Feed)
			posts.GET("/all", r.postHandler.All)
			posts.GET("/mine", r.postHandler.Mine)
			posts.GET("/user/:userId", r.postHandler.ByUser)
			posts.POST("/:postId/like", r.postHandler.Like)
			posts.POST("/:postId/comment", r.postHandler.Comment)
			posts.DELETE("/:id", r.postHandler.Delete)
		}

		stories := authed.Group("/stories")
		stories.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			stories.POST("/create", r.storyHandler.Create)
			stories.GET("", r.storyHandler.List)
			stories.POST("/:storyId/view", r.storyHandler.View)
			stories.DELETE("/:storyId", r.storyHandler.Delete)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Stories exposes the story service so the entrypoint can run the
// expiry sweep on it.
func (r *Router) Stories() *service.StoryService {
	return r.storyService
}
