package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/server/models"
)

type createAccountRequest struct {
	Name        string `json:"name" binding:"required"`
	HouseholdID string `json:"household_id" binding:"required"`
}

func (s *Server) createAccountHandler(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := s.accounts.Create(c.Request.Context(), s.actor(c), req.HouseholdID, req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Account created", "account_id": a.AccountID})
}

func (s *Server) listAccountsHandler(c *gin.Context) {
	rows, err := s.accounts.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) getAccountHandler(c *gin.Context) {
	a, err := s.accounts.Get(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type updateAccountRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) updateAccountHandler(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := s.accounts.Update(c.Request.Context(), s.actor(c), c.Param("account_id"), req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account updated", "account_id": a.AccountID})
}

func (s *Server) deleteAccountHandler(c *gin.Context) {
	accountID := c.Param("account_id")
	if err := s.accounts.SoftDelete(c.Request.Context(), s.actor(c), accountID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted", "account_id": accountID})
}

type assignAccountUserRequest struct {
	UserID string      `json:"user_id" binding:"required"`
	Role   models.Role `json:"role"`
}

func (s *Server) assignAccountUserHandler(c *gin.Context) {
	var req assignAccountUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}

	m, err := s.accounts.AssignUser(c.Request.Context(), s.actor(c), c.Param("account_id"), req.UserID, req.Role)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User assigned", "mapping_id": m.MappingID})
}

func (s *Server) listAccountEntriesHandler(c *gin.Context) {
	account, err := s.accounts.Get(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	var start, end time.Time
	if v := c.Query("start"); v != "" {
		start, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
			return
		}
	}
	if v := c.Query("end"); v != "" {
		end, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
			return
		}
	}

	rows, err := s.entries.ListForAccount(c.Request.Context(), s.actor(c), account, start, end)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
