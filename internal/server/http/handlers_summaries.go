package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/server/services"
)

// entrySummaryHandler aggregates the caller's own entries. All filters are
// query parameters; month values use the YYYY-MM form.
func (s *Server) entrySummaryHandler(c *gin.Context) {
	q := services.SummaryQuery{
		Month:       c.Query("month"),
		Start:       c.Query("start"),
		End:         c.Query("end"),
		LastNMonths: intQuery(c, "last_n_months", 0),
		Type:        models.EntryType(c.Query("type")),
		HouseholdID: c.Query("household_id"),
	}

	summary, err := s.summaries.ForUser(c.Request.Context(), s.actor(c), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
