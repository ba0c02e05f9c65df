package models

import "github.com/google/uuid"

// TaskHistory is an append-only record of a status transition. Rows are
// written in the same transaction as the transition and never mutated.
type TaskHistory struct {
	BaseEntity
	TaskID        uuid.UUID  `gorm:"type:char(36);not null;index" json:"task_id"`
	FromStatus    TaskStatus `gorm:"not null" json:"from_status"`
	ToStatus      TaskStatus `gorm:"not null" json:"to_status"`
	Action        string     `gorm:"size:100;not null" json:"action"`
	PerformedByID uuid.UUID  `gorm:"type:char(36);not null" json:"performed_by_id"`
	Notes         *string    `gorm:"size:1000" json:"notes,omitempty"`
}

func NewTaskHistory(taskID uuid.UUID, fromStatus, toStatus TaskStatus, action string, performedByID uuid.UUID, notes *string) *TaskHistory {
	return &TaskHistory{
		BaseEntity:    newBaseEntity(),
		TaskID:        taskID,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
		Action:        action,
		PerformedByID: performedByID,
		Notes:         notes,
	}
}
