package routes

import (
	"github.com/dftlabs-home/oyoagro-api/internal/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(router *gin.RouterGroup, userController *controllers.UserController) {
	// POST /admin/users - Provision a new account
	router.POST("", userController.Create)

	// GET /admin/users - List accounts
	router.GET("", userController.List)

	// GET /admin/users/:id - Account details
	router.GET("/:id", userController.Get)

	// POST /admin/users/:id/lock - Lock account
	router.POST("/:id/lock", userController.Lock)

	// POST /admin/users/:id/unlock - Unlock account and clear failed attempts
	router.POST("/:id/unlock", userController.Unlock)

	// POST /admin/users/:id/reset-password - Set a new password
	router.POST("/:id/reset-password", userController.ResetPassword)
}
