package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/server/models"
)

const actorKey = "actor"

// authMiddleware resolves the bearer token to its live user and stores it in
// the request context for handlers.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}

		user, err := s.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

func (s *Server) actor(c *gin.Context) *models.User {
	v, _ := c.Get(actorKey)
	user, _ := v.(*models.User)
	return user
}
