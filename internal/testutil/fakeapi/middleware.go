package fakeapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Context ключи для gin.Context.
const (
	contextUserIDKey = "userID"
	contextRoleKey   = "role"
)

// recordMiddleware пишет каждый запрос в журнал и имитирует недоступность сервиса.
func (s *Server) recordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
			Header: c.Request.Header.Clone(),
		})
		outage := s.outage
		s.mu.Unlock()

		if outage != 0 {
			c.AbortWithStatusJSON(outage, gin.H{"error": http.StatusText(outage)})
			return
		}
		c.Next()
	}
}

// authMiddleware проверяет JWT. При optional запрос без токена пропускается.
func (s *Server) authMiddleware(optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" && optional {
			c.Next()
			return
		}
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}

		userID, role, err := s.tokens.parse(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Set(contextRoleKey, role)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(contextRoleKey); role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": map[string]string{"message": "Admin only"}})
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware ограничивает количество запросов с одного IP.
func rateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	instance := limiter.New(memory.NewStore(), rate)

	return func(c *gin.Context) {
		context, err := instance.Get(c, c.ClientIP())
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", context.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", context.Remaining))

		if context.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many login attempts"})
			return
		}
		c.Next()
	}
}
