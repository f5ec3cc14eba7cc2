package routes

import (
	"github.com/dftlabs-home/oyoagro-api/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(router *gin.RouterGroup, authController *controllers.AuthController, authMiddleware, optionalAuthMiddleware gin.HandlerFunc) {
	// Public auth endpoints
	// POST /auth/login - Authenticate by username or email
	router.POST("/login", authController.Login)

	// GET /auth/session - Report session status; works anonymously
	router.GET("/session", optionalAuthMiddleware, authController.Session)

	// POST /auth/forgot-password - Request a password reset token
	router.POST("/forgot-password", authController.ForgotPassword)

	// GET /auth/reset-password/validate - Check a reset token
	router.GET("/reset-password/validate", authController.ValidateResetToken)

	// POST /auth/reset-password - Redeem a reset token
	router.POST("/reset-password", authController.ResetPassword)

	// Protected auth endpoints (require valid JWT)
	protected := router.Group("")
	protected.Use(authMiddleware)
	{
		// POST /auth/logout - Logout user
		protected.POST("/logout", authController.Logout)
	}
}
