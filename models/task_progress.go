package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskProgressHistory is one progress update reported by an employee.
// A manager resolves it exactly once; after that it is immutable.
type TaskProgressHistory struct {
	BaseEntity
	TaskID             uuid.UUID      `gorm:"type:char(36);not null;index" json:"task_id"`
	UpdatedByID        uuid.UUID      `gorm:"type:char(36);not null" json:"updated_by_id"`
	ProgressPercentage int            `gorm:"not null" json:"progress_percentage"`
	Notes              *string        `gorm:"size:1000" json:"notes,omitempty"`
	Status             ProgressStatus `gorm:"not null" json:"status"`
	AcceptedByID       *uuid.UUID     `gorm:"type:char(36)" json:"accepted_by_id,omitempty"`
	AcceptedAt         *time.Time     `json:"accepted_at,omitempty"`
}

func NewTaskProgressHistory(taskID, updatedByID uuid.UUID, progressPercentage int, notes *string) *TaskProgressHistory {
	return &TaskProgressHistory{
		BaseEntity:         newBaseEntity(),
		TaskID:             taskID,
		UpdatedByID:        updatedByID,
		ProgressPercentage: progressPercentage,
		Notes:              notes,
		Status:             ProgressPending,
	}
}

// Accept marks the entry accepted. The guard against double resolution
// lives on the task status, not here.
func (p *TaskProgressHistory) Accept(acceptedByID uuid.UUID) {
	now := time.Now().UTC()
	p.Status = ProgressAccepted
	p.AcceptedByID = &acceptedByID
	p.AcceptedAt = &now
}

func (p *TaskProgressHistory) Reject(rejectedByID uuid.UUID) {
	now := time.Now().UTC()
	p.Status = ProgressRejected
	p.AcceptedByID = &rejectedByID
	p.AcceptedAt = &now
}
