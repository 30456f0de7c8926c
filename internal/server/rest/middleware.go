package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "Authorization"
	ginUserIDKey  = "user_id"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserIDFromContext returns the id attached by the authentication middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// tokenFromRequest prefers the session cookie over a Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(sessionCookie); err == nil && v != "" {
		return v
	}
	if t, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return ""
}

func (s *RESTServer) authenticate(c *gin.Context) {
	token := tokenFromRequest(c)
	if token == "" {
		s.fail(c, common.NewError(common.ErrorUnauthorized, "You need to be Authenticated"))
		return
	}

	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		s.fail(c, common.Wrap(common.ErrorUnauthorized, err, "Invalid token"))
		return
	}

	ctx := c.Request.Context()
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.clearSessionCookie(c)
			s.fail(c, common.Wrap(common.ErrorUnauthorized, err, "Expired or Invalid"))
			return
		}
		s.fail(c, err)
		return
	}

	c.Set(ginUserIDKey, userID)
	c.Request = c.Request.WithContext(context.WithValue(ctx, userIDKey, userID))
	c.Next()
}

func (s *RESTServer) setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   !s.development,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *RESTServer) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !s.development,
		SameSite: http.SameSiteLaxMode,
	})
}
