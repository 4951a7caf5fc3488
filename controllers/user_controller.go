package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/solarhub/solarhub-api/models"
	"github.com/solarhub/solarhub-api/services"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	FirstName string         `json:"firstName" binding:"required"`
	LastName  string         `json:"lastName" binding:"required"`
	Email     string         `json:"email" binding:"required,email"`
	Password  string         `json:"password" binding:"required,min=6"`
	MobileNo  string         `json:"mobileNo"`
	Address   models.Address `json:"address"`
}

// ConfirmOTPRequest represents the request body for verifying an email address
type ConfirmOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SaveConfigurationRequest represents a named configuration to keep
type SaveConfigurationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type accountResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
	Token   string    `json:"token,omitempty"`
}

func newAccountResponse(user *models.User, token string) accountResponse {
	return accountResponse{
		ID:      user.ID,
		Name:    user.FullName(),
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}
}

// UserController serves account endpoints
type UserController struct {
	users *services.UserService
}

// NewUserController creates the account handlers
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Register handles POST /api/v1/users/register
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.users.Register(c.Request.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		MobileNo:  req.MobileNo,
		Address:   req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, newAccountResponse(user, ""))
}

// ConfirmOTP handles POST /api/v1/users/confirm-otp
func (uc *UserController) ConfirmOTP(c *gin.Context) {
	var req ConfirmOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := uc.users.ConfirmOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "User verified successfully"})
}

// Login handles POST /api/v1/users/login
func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := uc.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, newAccountResponse(result.User, result.Token))
}

// GetProfile handles GET /api/v1/users/profile
func (uc *UserController) GetProfile(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	profile, err := uc.users.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, profile)
}

// UpdateProfile handles PUT /api/v1/users/profile
func (uc *UserController) UpdateProfile(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	var patch services.ProfilePatch
	if !bindJSON(c, &patch) {
		return
	}

	result, err := uc.users.UpdateProfile(c.Request.Context(), user.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

// SaveConfiguration handles POST /api/v1/users/configurations
func (uc *UserController) SaveConfiguration(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	var req SaveConfigurationRequest
	if !bindJSON(c, &req) {
		return
	}

	configs, err := uc.users.SaveConfiguration(c.Request.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, configs)
}

// ListUsers handles GET /api/v1/users/all-user (admin only)
func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.users.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, users)
}

// GetUser handles GET /api/v1/users/:id (admin only)
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := uc.users.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// UpdateUser handles PUT /api/v1/users/:id (admin only)
func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.AdminUserPatch
	if !bindJSON(c, &patch) {
		return
	}

	user, err := uc.users.AdminUpdate(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// DeleteUser handles DELETE /api/v1/users/:id (admin only)
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := uc.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "User removed"})
}
