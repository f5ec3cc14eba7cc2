package controllers

import (
	"errors"
	"net/http"

	"github.com/dftlabs-home/oyoagro-api/internal/middleware"
	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/dftlabs-home/oyoagro-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService  *services.AuthService
	resetService *services.PasswordResetService
}

func NewAuthController(authService *services.AuthService, resetService *services.PasswordResetService) *AuthController {
	return &AuthController{
		authService:  authService,
		resetService: resetService,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Login authenticates by username or email and returns a bearer token.
// POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad request",
			"message": "username and password are required",
		})
		return
	}

	result, err := ac.authService.Login(req.Username, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  accountSummary(result.User),
	})
}

// Logout clears the current session token.
// POST /auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Missing or invalid authentication token",
		})
		return
	}

	if err := ac.authService.Logout(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Unable to log out",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Profile returns the authenticated account.
// GET /user
func (ac *AuthController) Profile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Missing or invalid authentication token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": accountSummary(user)})
}

// Session reports whether the request carries a live session. A missing or
// revoked token is not an error here; the caller is simply anonymous.
// GET /auth/session
func (ac *AuthController) Session(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          accountSummary(user),
	})
}

// ForgotPassword starts the self-service reset flow. The response is the
// same whether or not the email is registered.
// POST /auth/forgot-password
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad request",
			"message": "a valid email is required",
		})
		return
	}

	if err := ac.resetService.RequestReset(req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Unable to process reset request",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If the email is registered, a reset link has been sent",
	})
}

// ValidateResetToken reports whether a reset token can still be redeemed.
// GET /auth/reset-password/validate?token=...
func (ac *AuthController) ValidateResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad request",
			"message": "token is required",
		})
		return
	}

	valid, err := ac.resetService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Unable to validate token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// ResetPassword redeems a reset token and installs the new password.
// POST /auth/reset-password
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad request",
			"message": "token and a new password of at least 8 characters are required",
		})
		return
	}

	if err := ac.resetService.RedeemReset(req.Token, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidOrExpiredToken) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad request",
				"message": "Invalid or expired token",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Unable to reset password",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Invalid username or password",
		})
	case errors.Is(err, services.ErrAccountLocked):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Account is locked. Contact administrator.",
		})
	case errors.Is(err, services.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Account is disabled",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Unable to process login",
		})
	}
}

func currentUser(c *gin.Context) *models.UserAccount {
	val, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := val.(*models.UserAccount)
	if !ok {
		return nil
	}
	return user
}

func accountSummary(user *models.UserAccount) gin.H {
	return gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"status":          user.Status,
		"is_active":       user.IsActive,
		"is_locked":       user.IsLocked,
		"login_count":     user.LoginCount,
		"last_login_date": user.LastLoginDate,
	}
}
