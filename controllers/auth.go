package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/storage"
	"github.com/hanyam/TaskManagement-sub002/utils"
)

// AuthController is the local stand-in for the external identity
// provider: it registers users and exchanges credentials for a bearer
// token carrying the user_id and role claims.
type AuthController struct {
	Store storage.Store
}

func (ac *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	if _, err := ac.Store.UserByEmail(c.Request.Context(), req.Email); err == nil {
		fail(c, []apperrors.Error{apperrors.Conflict("Email is already registered", "Email")})
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		fail(c, []apperrors.Error{apperrors.Internal("Failed to register user")})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		fail(c, []apperrors.Error{apperrors.Internal("Failed to register user")})
		return
	}

	user := models.NewUser(req.Email, req.DisplayName, req.Role)
	user.Password = hashed
	user.SetCreatedBy(req.Email)

	if err := ac.Store.CreateUser(c.Request.Context(), user); err != nil {
		fail(c, []apperrors.Error{apperrors.Internal("Failed to register user")})
		return
	}

	ok(c, gin.H{"id": user.ID, "email": user.Email}, "User registered")
}

func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	user, err := ac.Store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPassword(req.Password, user.Password) {
		fail(c, []apperrors.Error{apperrors.Unauthorized("Invalid credentials")})
		return
	}
	if !user.IsActive {
		fail(c, []apperrors.Error{apperrors.Unauthorized("Account is deactivated")})
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		fail(c, []apperrors.Error{apperrors.Internal("Failed to issue token")})
		return
	}

	user.RecordLogin()
	if err := ac.Store.SaveUser(c.Request.Context(), user); err != nil {
		fail(c, []apperrors.Error{apperrors.Internal("Failed to issue token")})
		return
	}

	ok(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"displayName": user.DisplayName,
			"role":        user.Role,
		},
	}, "")
}
