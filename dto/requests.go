package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"displayName" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role" binding:"required,oneof=employee manager admin"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateTaskRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    *string    `json:"description"`
	Priority       int        `json:"priority"`
	Type           int        `json:"type"`
	DueDate        *time.Time `json:"dueDate"`
	AssignedUserID *uuid.UUID `json:"assignedUserId"`
}

type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

type AssignTaskRequest struct {
	UserIDs []uuid.UUID `json:"userIds" binding:"required,min=1"`
}

type ReassignTaskRequest struct {
	NewUserIDs []uuid.UUID `json:"newUserIds" binding:"required,min=1"`
}

type UpdateProgressRequest struct {
	ProgressPercentage int     `json:"progressPercentage"`
	Notes              *string `json:"notes"`
}

type RequestExtensionRequest struct {
	RequestedDueDate time.Time `json:"requestedDueDate" binding:"required"`
	Reason           string    `json:"reason" binding:"required"`
}

type RejectProgressRequest struct {
	Notes *string `json:"notes"`
}

type ReviewExtensionRequest struct {
	ReviewNotes *string `json:"reviewNotes"`
}

type ReviewTaskRequest struct {
	Accepted          bool    `json:"accepted"`
	Rating            *int    `json:"rating"`
	Feedback          *string `json:"feedback"`
	SendBackForRework bool    `json:"sendBackForRework"`
}

type UpdateUserRequest struct {
	Role      string     `json:"role"`
	ManagerID *uuid.UUID `json:"managerId"`
	IsActive  *bool      `json:"isActive"`
}
