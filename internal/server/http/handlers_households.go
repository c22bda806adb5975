package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/server/models"
)

type householdRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) createHouseholdHandler(c *gin.Context) {
	var req householdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h, err := s.households.Create(c.Request.Context(), s.actor(c), req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Household created", "household_id": h.HouseholdID})
}

func (s *Server) listHouseholdsHandler(c *gin.Context) {
	rows, err := s.households.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) getHouseholdHandler(c *gin.Context) {
	h, err := s.households.Get(c.Request.Context(), c.Param("household_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) updateHouseholdHandler(c *gin.Context) {
	var req householdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h, err := s.households.Update(c.Request.Context(), s.actor(c), c.Param("household_id"), req.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Household updated", "household_id": h.HouseholdID})
}

func (s *Server) deleteHouseholdHandler(c *gin.Context) {
	householdID := c.Param("household_id")
	if err := s.households.SoftDelete(c.Request.Context(), s.actor(c), householdID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Household deleted", "household_id": householdID})
}

type assignMemberRequest struct {
	UserID string      `json:"user_id" binding:"required"`
	Role   models.Role `json:"role"`
}

func (s *Server) assignMemberHandler(c *gin.Context) {
	var req assignMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}

	m, err := s.households.AssignMember(c.Request.Context(), s.actor(c), c.Param("household_id"), req.UserID, req.Role)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Member assigned", "mapping_id": m.MappingID})
}

func (s *Server) removeMemberHandler(c *gin.Context) {
	err := s.households.RemoveMember(c.Request.Context(), s.actor(c), c.Param("household_id"), c.Param("user_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
