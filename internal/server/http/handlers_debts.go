package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/server/services"
)

type createDebtRequest struct {
	UserID       string    `json:"user_id" binding:"required"`
	AccountID    string    `json:"account_id" binding:"required"`
	HouseholdID  string    `json:"household_id" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	Principal    float64   `json:"principal" binding:"required,gt=0"`
	InterestRate *float64  `json:"interest_rate"`
	Installments int       `json:"installments" binding:"required,gt=0"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	DueDay       int       `json:"due_day" binding:"required,min=1,max=31"`
}

func (s *Server) createDebtHandler(c *gin.Context) {
	var req createDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := s.debts.Create(c.Request.Context(), s.actor(c), services.DebtInput{
		UserID:       req.UserID,
		AccountID:    req.AccountID,
		HouseholdID:  req.HouseholdID,
		Name:         req.Name,
		Principal:    req.Principal,
		InterestRate: req.InterestRate,
		Installments: req.Installments,
		StartDate:    req.StartDate,
		DueDay:       req.DueDay,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Debt created", "debt_id": d.DebtID})
}

func (s *Server) listDebtsHandler(c *gin.Context) {
	rows, err := s.debts.List(c.Request.Context(), s.actor(c).UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) getDebtHandler(c *gin.Context) {
	d, err := s.debts.Get(c.Request.Context(), c.Param("debt_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) deleteDebtHandler(c *gin.Context) {
	debtID := c.Param("debt_id")
	if err := s.debts.SoftDelete(c.Request.Context(), s.actor(c), debtID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Debt deleted", "debt_id": debtID})
}
