package rest

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
)

func (s *RESTServer) routes() *gin.Engine {
	r := gin.New()
	r.ForwardedByClientIP = true
	// X-Forwarded-For only counts when the peer is a configured proxy.
	if err := r.SetTrustedProxies(s.proxies); err != nil {
		s.logger.Warn(context.Background(), "Ignoring trusted proxies", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		gin.CustomRecoveryWithWriter(io.Discard, s.recovered),
		s.requestLogger(),
		cors(s.corsOrigins),
	)
	r.NoRoute(s.notFound)

	r.GET("/health", s.health)

	v1 := r.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", s.loginLimiter.Handler(), s.login)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", s.authenticate, s.me)

	userGroup := v1.Group("/user")
	userGroup.POST("", s.createUser)
	userGroup.GET("", s.listUsers)
	userGroup.PATCH("/:id", s.authenticate, s.updateUser)
	userGroup.DELETE("/:id", s.authenticate, s.deleteUser)

	return r
}
