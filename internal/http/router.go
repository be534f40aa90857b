package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentaloc/internal/domain"
	"rentaloc/internal/service"
)

// NewRouter wires middlewares and routes into a Gin engine.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	authH *AuthHandler,
	propH *PropertyHandler,
	reviewH *ReviewHandler,
	contactH *ContactHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Base middlewares: logging, recovery and JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/signup", authH.Signup)
	auth.POST("/verify", authH.Verify)
	auth.POST("/resend", authH.Resend)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)
	auth.POST("/password-reset/request", authH.RequestPasswordReset)
	auth.POST("/password-reset/verify", authH.VerifyPasswordReset)

	r.GET("/categories", propH.Categories)

	// Public listing browse. Details reveal contact info only to
	// authenticated callers.
	props := r.Group("/properties")
	props.GET("", propH.List)
	props.GET("/:id", OptionalJWTMiddleware(jwtServ), propH.Get)

	owned := r.Group("/properties", JWTAuthMiddleware(jwtServ), RequireRole(domain.RoleOwner))
	owned.GET("/mine", propH.Mine)
	owned.POST("", propH.Create)
	owned.PUT("/:id", propH.Update)
	owned.DELETE("/:id", propH.Delete)
	owned.POST("/:id/photos", propH.UploadPhoto)
	owned.POST("/:id/videos", propH.UploadVideo)

	r.POST("/properties/:id/reviews", JWTAuthMiddleware(jwtServ), RequireRole(domain.RoleTenant), reviewH.Create)

	r.GET("/reviews", reviewH.List)
	reviews := r.Group("/reviews", JWTAuthMiddleware(jwtServ), RequireRole(domain.RoleTenant))
	reviews.GET("/mine", reviewH.Mine)
	reviews.PUT("/:id", reviewH.Update)
	reviews.DELETE("/:id", reviewH.Delete)

	r.POST("/contact", contactH.Submit)

	admin := r.Group("/admin", JWTAuthMiddleware(jwtServ), RequireRole(domain.RoleAdmin))
	admin.POST("/users/:id/approve", adminH.ApproveOwner)
	admin.DELETE("/users/:id", adminH.DeactivateUser)

	return r
}

// zapLoggerMiddleware logs one line per request with zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware forces Content-Type: application/json on responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
