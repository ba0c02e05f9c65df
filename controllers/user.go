package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/middleware"
	"github.com/hanyam/TaskManagement-sub002/queries"
	"github.com/hanyam/TaskManagement-sub002/storage"
)

type UserController struct {
	Store   storage.Store
	Queries *queries.Queries
}

// SearchUsers matches the query term against the caller's reports.
// Terms shorter than two characters return an empty list by policy.
func (uc *UserController) SearchUsers(c *gin.Context) {
	results, errs := uc.Queries.SearchManagedUsers(c.Request.Context(), middleware.CurrentUserID(c), c.Query("q"))
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, results, "")
}

func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.Store.Users(c.Request.Context())
	if err != nil {
		fail(c, []apperrors.Error{apperrors.Internal("Failed to load users")})
		return
	}
	ok(c, users, "")
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	userID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	user, err := uc.Store.UserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(c, []apperrors.Error{apperrors.NotFound("User", "Id")})
		} else {
			fail(c, []apperrors.Error{apperrors.Internal("Failed to update user")})
		}
		return
	}

	if req.ManagerID != nil {
		if *req.ManagerID == user.ID {
			fail(c, []apperrors.Error{apperrors.Validation("User cannot be their own manager", "ManagerId")})
			return
		}
		// The new manager must not already report to this user, directly
		// or through the chain.
		reports, err := uc.Store.ManagedUserIDs(c.Request.Context(), user.ID)
		if err != nil {
			fail(c, []apperrors.Error{apperrors.Internal("Failed to update user")})
			return
		}
		for _, id := range reports {
			if id == *req.ManagerID {
				fail(c, []apperrors.Error{apperrors.Validation("Manager assignment would create a reporting cycle", "ManagerId")})
				return
			}
		}
	}

	if req.Role != "" {
		user.Role = req.Role
	}
	user.ManagerID = req.ManagerID
	if req.IsActive != nil {
		if *req.IsActive {
			user.Activate()
		} else {
			user.Deactivate()
		}
	}

	if err := uc.Store.SaveUser(c.Request.Context(), user); err != nil {
		fail(c, []apperrors.Error{apperrors.Internal("Failed to update user")})
		return
	}
	ok(c, user, "User updated")
}
