package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/homeledger/internal/server/services"
)

type registerRequest struct {
	UserName string `json:"user_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered", "user_id": user.UserID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":     pair.AccessToken,
		"refresh_token":    pair.RefreshToken,
		"password_expired": pair.PasswordExpired,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *Server) refreshHandler(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := s.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

type requestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// requestPasswordResetHandler returns the code in the response body. There
// is no mail delivery in this service; the operator in front of the API is
// responsible for handing the code to the user.
func (s *Server) requestPasswordResetHandler(c *gin.Context) {
	var req requestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	otp, err := s.users.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reset code issued", "otp_code": otp})
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTPCode     string `json:"otp_code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (s *Server) resetPasswordHandler(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.users.ResetPassword(c.Request.Context(), req.Email, req.OTPCode, req.NewPassword); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}

func (s *Server) meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.actor(c))
}

type updateUserRequest struct {
	UserName *string `json:"user_name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (s *Server) updateUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	actor := s.actor(c)
	if actor.UserID != userID && !actor.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot update another user"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.users.Update(c.Request.Context(), userID, services.UserUpdate{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user_id": user.UserID})
}

func (s *Server) deleteUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	actor := s.actor(c)
	if actor.UserID != userID && !actor.IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete another user"})
		return
	}

	if err := s.users.SoftDelete(c.Request.Context(), actor.UserID, userID); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User soft-deleted", "user_id": userID})
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) suspendUserHandler(c *gin.Context) {
	var req suspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.users.Suspend(c.Request.Context(), s.actor(c), c.Param("user_id"), req.Reason); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User suspended", "user_id": c.Param("user_id")})
}

func (s *Server) unsuspendUserHandler(c *gin.Context) {
	if err := s.users.Unsuspend(c.Request.Context(), s.actor(c), c.Param("user_id")); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unsuspended", "user_id": c.Param("user_id")})
}
