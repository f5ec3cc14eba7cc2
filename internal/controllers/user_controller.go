package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dftlabs-home/oyoagro-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserController exposes the administrative account surface.
type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

type createUserRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type adminResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Create provisions an account with a generated temporary password.
// POST /admin/users
func (uc *UserController) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad request",
			"message": "a valid email is required",
		})
		return
	}

	created, err := uc.userService.CreateUser(req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "Username or email already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Unable to create user",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": accountSummary(created.User)})
}

// List returns accounts with pagination.
// GET /admin/users?limit=&offset=
func (uc *UserController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := uc.userService.GetAll(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Unable to list users",
		})
		return
	}

	summaries := make([]gin.H, 0, len(users))
	for i := range users {
		summaries = append(summaries, accountSummary(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": summaries,
		"total": total,
	})
}

// Get returns a single account.
// GET /admin/users/:id
func (uc *UserController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := uc.userService.GetByID(id)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": accountSummary(user)})
}

// Lock locks an account.
// POST /admin/users/:id/lock
func (uc *UserController) Lock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := uc.userService.LockUser(id); err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User locked"})
}

// Unlock unlocks an account and clears its failed-attempt counter.
// POST /admin/users/:id/unlock
func (uc *UserController) Unlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := uc.userService.UnlockUser(id); err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unlocked"})
}

// ResetPassword sets an administrator-chosen password.
// POST /admin/users/:id/reset-password
func (uc *UserController) ResetPassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req adminResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad request",
			"message": "a new password of at least 8 characters is required",
		})
		return
	}

	if err := uc.userService.ResetUserPassword(id, req.NewPassword); err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad request",
			"message": "invalid user id",
		})
		return uuid.Nil, false
	}
	return id, true
}

func respondAdminError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "User not found",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": "Unable to process request",
	})
}
