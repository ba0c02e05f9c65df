package models

import "github.com/google/uuid"

// TaskAssignment is one row of a task's assignment chain. The primary
// assignee mirrors Task.AssignedUserID; secondary rows grant access.
type TaskAssignment struct {
	BaseEntity
	TaskID    uuid.UUID `gorm:"type:char(36);not null;index" json:"task_id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index" json:"user_id"`
	IsPrimary bool      `gorm:"not null" json:"is_primary"`
}

func NewTaskAssignment(taskID, userID uuid.UUID, isPrimary bool) *TaskAssignment {
	return &TaskAssignment{
		BaseEntity: newBaseEntity(),
		TaskID:     taskID,
		UserID:     userID,
		IsPrimary:  isPrimary,
	}
}
