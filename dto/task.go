package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/models"
)

// TaskDto is the flat read projection for a task. AssignedUserEmail is
// denormalized for display only and never written back.
type TaskDto struct {
	ID                 uuid.UUID            `json:"id"`
	Title              string               `json:"title"`
	Description        *string              `json:"description,omitempty"`
	Status             models.TaskStatus    `json:"status"`
	Priority           models.TaskPriority  `json:"priority"`
	Type               models.TaskType      `json:"type"`
	DueDate            *time.Time           `json:"dueDate,omitempty"`
	OriginalDueDate    *time.Time           `json:"originalDueDate,omitempty"`
	ExtendedDueDate    *time.Time           `json:"extendedDueDate,omitempty"`
	AssignedUserID     *uuid.UUID           `json:"assignedUserId,omitempty"`
	AssignedUserEmail  *string              `json:"assignedUserEmail,omitempty"`
	ReminderLevel      models.ReminderLevel `json:"reminderLevel"`
	ProgressPercentage int                  `json:"progressPercentage"`
	ManagerRating      *int                 `json:"managerRating,omitempty"`
	ManagerFeedback    *string              `json:"managerFeedback,omitempty"`
	CreatedByID        uuid.UUID            `json:"createdById"`
	CreatedBy          string               `json:"createdBy"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          *time.Time           `json:"updatedAt,omitempty"`
}

type TaskProgressDto struct {
	ID                 uuid.UUID             `json:"id"`
	TaskID             uuid.UUID             `json:"taskId"`
	UpdatedByID        uuid.UUID             `json:"updatedById"`
	UpdatedByEmail     *string               `json:"updatedByEmail,omitempty"`
	ProgressPercentage int                   `json:"progressPercentage"`
	Notes              *string               `json:"notes,omitempty"`
	Status             models.ProgressStatus `json:"status"`
	AcceptedByID       *uuid.UUID            `json:"acceptedById,omitempty"`
	AcceptedByEmail    *string               `json:"acceptedByEmail,omitempty"`
	AcceptedAt         *time.Time            `json:"acceptedAt,omitempty"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

type ExtensionRequestDto struct {
	ID               uuid.UUID                     `json:"id"`
	TaskID           uuid.UUID                     `json:"taskId"`
	TaskTitle        string                        `json:"taskTitle"`
	RequestedByID    uuid.UUID                     `json:"requestedById"`
	RequestedByEmail *string                       `json:"requestedByEmail,omitempty"`
	RequestedDueDate time.Time                     `json:"requestedDueDate"`
	Reason           string                        `json:"reason"`
	Status           models.ExtensionRequestStatus `json:"status"`
	ReviewedByID     *uuid.UUID                    `json:"reviewedById,omitempty"`
	ReviewedByEmail  *string                       `json:"reviewedByEmail,omitempty"`
	ReviewedAt       *time.Time                    `json:"reviewedAt,omitempty"`
	ReviewNotes      *string                       `json:"reviewNotes,omitempty"`
	CreatedAt        time.Time                     `json:"createdAt"`
}

type TaskHistoryDto struct {
	ID            uuid.UUID         `json:"id"`
	TaskID        uuid.UUID         `json:"taskId"`
	FromStatus    models.TaskStatus `json:"fromStatus"`
	ToStatus      models.TaskStatus `json:"toStatus"`
	Action        string            `json:"action"`
	PerformedByID uuid.UUID         `json:"performedById"`
	Notes         *string           `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

type DashboardStatsDto struct {
	TasksCreatedByUser     int `json:"tasksCreatedByUser"`
	TasksCompleted         int `json:"tasksCompleted"`
	TasksNearDueDate       int `json:"tasksNearDueDate"`
	TasksDelayed           int `json:"tasksDelayed"`
	TasksInProgress        int `json:"tasksInProgress"`
	TasksUnderReview       int `json:"tasksUnderReview"`
	TasksPendingAcceptance int `json:"tasksPendingAcceptance"`
}

type UserSearchResultDto struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
}
