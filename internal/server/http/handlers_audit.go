package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/server/audit"
)

// listAuditLogsHandler is superuser-only: audit entries may reference any
// user's activity.
func (s *Server) listAuditLogsHandler(c *gin.Context) {
	if !s.actor(c).IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "superuser required"})
		return
	}

	f := audit.Filter{
		ActorID:      c.Query("actor_id"),
		ResourceType: c.Query("resource_type"),
		Action:       c.Query("action"),
		Offset:       intQuery(c, "offset", 0),
		Limit:        intQuery(c, "limit", 100),
	}

	var err error
	if v := c.Query("start"); v != "" {
		f.Start, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
			return
		}
	}
	if v := c.Query("end"); v != "" {
		f.End, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
			return
		}
	}

	rows, err := s.audit.List(c.Request.Context(), f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
