package models

import (
	"time"

	"github.com/google/uuid"
)

// DeadlineExtensionRequest is a proposal to move a task's due date.
// Approval is what actually extends the task.
type DeadlineExtensionRequest struct {
	BaseEntity
	TaskID           uuid.UUID              `gorm:"type:char(36);not null;index" json:"task_id"`
	RequestedByID    uuid.UUID              `gorm:"type:char(36);not null" json:"requested_by_id"`
	RequestedDueDate time.Time              `gorm:"not null" json:"requested_due_date"`
	Reason           string                 `gorm:"size:1000;not null" json:"reason"`
	Status           ExtensionRequestStatus `gorm:"not null" json:"status"`
	ReviewedByID     *uuid.UUID             `gorm:"type:char(36)" json:"reviewed_by_id,omitempty"`
	ReviewedAt       *time.Time             `json:"reviewed_at,omitempty"`
	ReviewNotes      *string                `gorm:"size:1000" json:"review_notes,omitempty"`
}

func NewDeadlineExtensionRequest(taskID, requestedByID uuid.UUID, requestedDueDate time.Time, reason string) *DeadlineExtensionRequest {
	return &DeadlineExtensionRequest{
		BaseEntity:       newBaseEntity(),
		TaskID:           taskID,
		RequestedByID:    requestedByID,
		RequestedDueDate: requestedDueDate,
		Reason:           reason,
		Status:           ExtensionPending,
	}
}

func (r *DeadlineExtensionRequest) Approve(reviewedByID uuid.UUID, reviewNotes *string) {
	now := time.Now().UTC()
	r.Status = ExtensionApproved
	r.ReviewedByID = &reviewedByID
	r.ReviewedAt = &now
	r.ReviewNotes = reviewNotes
}

func (r *DeadlineExtensionRequest) Reject(reviewedByID uuid.UUID, reviewNotes *string) {
	now := time.Now().UTC()
	r.Status = ExtensionRejected
	r.ReviewedByID = &reviewedByID
	r.ReviewedAt = &now
	r.ReviewNotes = reviewNotes
}
