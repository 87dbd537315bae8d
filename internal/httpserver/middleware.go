package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"campus-food-ordering/internal/domain"
	profilesvc "campus-food-ordering/internal/service/profile"
	"github.com/gin-gonic/gin"
)

type ctxKey string

const (
	profileCtxKey ctxKey = "profile"
	tokenCtxKey   ctxKey = "token"
)

// authMiddleware resolves the bearer token to a profile and stores both on the
// request context.
func authMiddleware(svc profileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		p, err := svc.LookupByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, profilesvc.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), profileCtxKey, p)
		ctx = context.WithValue(ctx, tokenCtxKey, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// currentProfile returns the caller set by authMiddleware.
func currentProfile(c *gin.Context) *domain.Profile {
	p, _ := c.Request.Context().Value(profileCtxKey).(*domain.Profile)
	return p
}

func currentToken(c *gin.Context) string {
	t, _ := c.Request.Context().Value(tokenCtxKey).(string)
	return t
}
