package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/server/models"
	"github.com/dmitrijs2005/homeledger/internal/server/services"
)

type entryRequest struct {
	UserID      string          `json:"user_id" binding:"required"`
	AccountID   string          `json:"account_id" binding:"required"`
	HouseholdID string          `json:"household_id" binding:"required"`
	EntryDate   time.Time       `json:"entry_date" binding:"required"`
	ValueDate   time.Time       `json:"value_date"`
	Type        models.EntryType `json:"type" binding:"required"`
	Category    models.Category  `json:"category" binding:"required"`
	Amount      float64         `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

func (r entryRequest) input() services.EntryInput {
	valueDate := r.ValueDate
	if valueDate.IsZero() {
		valueDate = r.EntryDate
	}
	return services.EntryInput{
		UserID:      r.UserID,
		AccountID:   r.AccountID,
		HouseholdID: r.HouseholdID,
		EntryDate:   r.EntryDate,
		ValueDate:   valueDate,
		Type:        r.Type,
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

func (s *Server) createEntryHandler(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := s.entries.Create(c.Request.Context(), s.actor(c), req.input())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Entry created", "entry_id": e.EntryID})
}

func (s *Server) getEntryHandler(c *gin.Context) {
	e, err := s.entries.Get(c.Request.Context(), s.actor(c), c.Param("entry_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) entryHistoryHandler(c *gin.Context) {
	page := services.Page{
		Offset: intQuery(c, "offset", 0),
		Limit:  intQuery(c, "limit", 0),
	}

	rows, err := s.entries.History(c.Request.Context(), s.actor(c), c.Param("entry_id"), page)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) updateEntryHandler(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := s.entries.Update(c.Request.Context(), s.actor(c), c.Param("entry_id"), req.input())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry updated", "entry_id": e.EntryID})
}

func (s *Server) deleteEntryHandler(c *gin.Context) {
	entryID := c.Param("entry_id")
	if err := s.entries.SoftDelete(c.Request.Context(), s.actor(c), entryID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted", "entry_id": entryID})
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
