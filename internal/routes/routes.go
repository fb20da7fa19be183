package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/neberku/neberku-backend/internal/handler"
	"github.com/neberku/neberku-backend/internal/middleware"
	"github.com/neberku/neberku-backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
)

// Handlers groups every API handler
type Handlers struct {
	Contribution *handler.ContributionHandler
	Event        *handler.EventHandler
	Gallery      *handler.GalleryHandler
	Moderation   *handler.ModerationHandler
}

// Options route-level settings
type Options struct {
	// ContributionsPerMinute per client IP; 0 disables the limiter
	ContributionsPerMinute int
	// MaxUploadBytes caps a contribution request body; 0 disables the cap
	MaxUploadBytes int64
}

// Setup configures all API routes. redisClient may be nil; rate limiting is then skipped.
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager, redisClient *redis.Client, opts Options) {
	api := router.Group("/api/v1")

	// Guest contributions (no auth, rate limited)
	api.POST("/guest-posts",
		middleware.RateLimit(redisClient, middleware.ContributionRateLimitConfig(opts.ContributionsPerMinute)),
		middleware.MaxBodySize(opts.MaxUploadBytes),
		h.Contribution.Create,
	)

	// Guest event access
	events := api.Group("/events")
	{
		events.GET("/access", h.Event.Access)
		events.GET("/:id/guest-view", h.Event.GuestView)
		events.GET("/:id/allowance", h.Contribution.Allowance)
	}

	// Public gallery
	gallery := api.Group("/public-events/:id")
	{
		gallery.GET("/posts", h.Gallery.Posts)
		gallery.GET("/media", h.Gallery.Media)
	}

	// Host moderation (auth required)
	host := api.Group("/host", middleware.JWTAuth(jwtManager))
	{
		host.GET("/events/:id/posts", h.Moderation.ListPosts)
		host.POST("/posts/:id/approve", h.Moderation.ApprovePost)
		host.POST("/posts/:id/reject", h.Moderation.RejectPost)
		host.POST("/media/:id/approve", h.Moderation.ApproveMedia)
		host.POST("/media/:id/reject", h.Moderation.RejectMedia)
	}
}
