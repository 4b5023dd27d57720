package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/titanmarket/titanmarket-backend/internal/handler"
	"github.com/titanmarket/titanmarket-backend/internal/middleware"
	"github.com/titanmarket/titanmarket-backend/pkg/ginutil"
	"github.com/titanmarket/titanmarket-backend/pkg/jwt"
)

// Handlers groups the HTTP handlers mounted by Setup
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Listing *handler.ListingHandler
	Message *handler.MessageHandler
	Report  *handler.ReportHandler
	WS      *handler.WSHandler
}

// Setup configures all API routes. redisClient may be nil, which disables rate limiting.
func Setup(router *gin.Engine, h *Handlers, jwtManager *jwt.Manager, redisClient *redis.Client) {
	if err := ginutil.RegisterValidations(); err != nil {
		panic(err)
	}

	auth := middleware.JWTAuth(jwtManager)
	optionalAuth := middleware.OptionalJWTAuth(jwtManager)

	api := router.Group("/api/v1", middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))

	// Authentication (no auth required)
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.RefreshToken)
	authGroup.POST("/google", h.Auth.GoogleSignIn)
	authGroup.GET("/google/url", h.Auth.GoogleAuthURL)
	authGroup.GET("/google/callback", h.Auth.GoogleCallback)
	authGroup.GET("/me", auth, h.Auth.Me)

	// Listings
	listings := api.Group("/listings")
	listings.GET("", h.Listing.Browse)
	listings.GET("/:id", optionalAuth, h.Listing.Get)
	listings.POST("", auth, h.Listing.Create)
	listings.POST("/images", auth, h.Listing.UploadImage)
	listings.PUT("/:id", auth, h.Listing.Update)
	listings.PATCH("/:id/status", auth, h.Listing.UpdateStatus)

	// Public profiles
	users := api.Group("/users")
	users.GET("/:id", h.Profile.GetProfile)
	users.GET("/:id/listings", h.Listing.ListBySeller)

	// Signed-in user
	me := api.Group("/me", auth)
	me.PUT("/profile", h.Profile.UpdateProfile)
	me.POST("/setup", h.Profile.CompleteSetup)
	me.POST("/photo", h.Profile.UploadPhoto)
	me.GET("/listings", h.Listing.ListMine)
	me.GET("/reports", h.Report.ListMyReports)

	// Messaging
	conversations := api.Group("/conversations", auth)
	conversations.POST("", h.Message.StartConversation)
	conversations.GET("", h.Message.ListConversations)
	conversations.GET("/:id", h.Message.GetConversation)
	conversations.GET("/:id/messages", h.Message.ListMessages)
	conversations.POST("/:id/messages",
		middleware.RateLimitPerUser(redisClient, middleware.MessageSendRateLimitConfig()),
		h.Message.SendMessage)
	conversations.POST("/:id/read", h.Message.MarkRead)

	// Reports
	api.POST("/reports", auth, h.Report.SubmitReport)

	admin := api.Group("/admin", auth, middleware.RequireAdmin())
	admin.GET("/reports", h.Report.ListReports)

	// Real-time events
	if h.WS != nil {
		router.GET("/ws", middleware.WSAuth(jwtManager), h.WS.Connect)
	}
}
