package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task is the write-model aggregate. Status moves only through the
// transition methods below; due dates move only through ExtendDeadline.
type Task struct {
	BaseEntity
	Title              string       `gorm:"size:200;not null" json:"title"`
	Description        *string      `gorm:"size:1000" json:"description,omitempty"`
	Status             TaskStatus   `gorm:"not null" json:"status"`
	Priority           TaskPriority `gorm:"not null" json:"priority"`
	Type               TaskType     `gorm:"not null" json:"type"`
	DueDate            *time.Time   `json:"due_date,omitempty"`
	OriginalDueDate    *time.Time   `json:"original_due_date,omitempty"`
	ExtendedDueDate    *time.Time   `json:"extended_due_date,omitempty"`
	AssignedUserID     *uuid.UUID   `gorm:"type:char(36)" json:"assigned_user_id,omitempty"`
	CreatedByID        uuid.UUID    `gorm:"type:char(36);not null" json:"created_by_id"`
	ProgressPercentage int          `gorm:"default:0" json:"progress_percentage"`
	ManagerRating      *int         `json:"manager_rating,omitempty"`
	ManagerFeedback    *string      `gorm:"size:1000" json:"manager_feedback,omitempty"`

	ProgressHistory   []TaskProgressHistory      `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	ExtensionRequests []DeadlineExtensionRequest `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	History           []TaskHistory              `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	Assignments       []TaskAssignment           `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

func NewTask(title string, description *string, priority TaskPriority, taskType TaskType, dueDate *time.Time, createdByID uuid.UUID) *Task {
	return &Task{
		BaseEntity:  newBaseEntity(),
		Title:       title,
		Description: description,
		Priority:    priority,
		Type:        taskType,
		DueDate:     dueDate,
		CreatedByID: createdByID,
		Status:      StatusCreated,
	}
}

// Assign hands the task to a user. Reassignment of a declined task is
// allowed; anything past acceptance is not.
func (t *Task) Assign(userID uuid.UUID) error {
	if t.Status != StatusCreated && t.Status != StatusRejected {
		return fmt.Errorf("task in status %s cannot be assigned", t.Status)
	}
	t.AssignedUserID = &userID
	t.Status = StatusAssigned
	return nil
}

// Reassign routes an in-flight task to a new user. Unlike Assign it
// works from any live status and returns the task to Assigned so the
// new assignee gets their own accept step.
func (t *Task) Reassign(userID uuid.UUID) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("task in status %s cannot be reassigned", t.Status)
	}
	t.AssignedUserID = &userID
	t.Status = StatusAssigned
	return nil
}

// AcceptAssignment is the assigned employee taking the task on.
func (t *Task) AcceptAssignment() error {
	if t.Status != StatusAssigned {
		return fmt.Errorf("task in status %s cannot be accepted", t.Status)
	}
	t.Status = StatusAccepted
	return nil
}

// RejectAssignment is the assigned employee declining the task.
func (t *Task) RejectAssignment() error {
	if t.Status != StatusAssigned {
		return fmt.Errorf("task in status %s cannot be rejected", t.Status)
	}
	t.Status = StatusRejected
	return nil
}

// UpdateProgress records a new percentage. Progress on a task type that
// requires acceptance parks the task under review until a manager
// resolves the pending entry.
func (t *Task) UpdateProgress(percentage int, requiresAcceptance bool) error {
	if t.Status != StatusAssigned && t.Status != StatusAccepted && t.Status != StatusUnderReview {
		return fmt.Errorf("task in status %s cannot receive progress updates", t.Status)
	}
	t.ProgressPercentage = percentage
	if requiresAcceptance {
		t.Status = StatusUnderReview
	}
	return nil
}

// SetProgressPercentage overwrites the percentage without a status
// change. Used when a rejected progress entry is reverted.
func (t *Task) SetProgressPercentage(percentage int) {
	t.ProgressPercentage = percentage
}

// MarkCompletedByEmployee moves an in-progress task into manager review.
func (t *Task) MarkCompletedByEmployee() error {
	switch t.Status {
	case StatusAssigned, StatusAccepted, StatusUnderReview:
		t.Status = StatusPendingManagerReview
		return nil
	case StatusPendingManagerReview:
		return fmt.Errorf("task is already awaiting manager review")
	default:
		return fmt.Errorf("task in status %s cannot be marked completed", t.Status)
	}
}

// AcceptProgress resolves a manager review. A task under progress review
// returns to Accepted; a task awaiting completion review completes.
// Calling this when no review is pending fails, which is what makes a
// second accept against the same progress entry an error rather than a
// silent no-op.
func (t *Task) AcceptProgress() error {
	switch t.Status {
	case StatusUnderReview:
		t.Status = StatusAccepted
		return nil
	case StatusPendingManagerReview:
		t.Status = StatusCompleted
		return nil
	default:
		return fmt.Errorf("task in status %s is not awaiting progress review", t.Status)
	}
}

// RejectProgress returns a task under progress review to Accepted after
// a manager declines the pending entry.
func (t *Task) RejectProgress() error {
	if t.Status != StatusUnderReview {
		return fmt.Errorf("task in status %s is not awaiting progress review", t.Status)
	}
	t.Status = StatusAccepted
	return nil
}

// ExtendDeadline applies an approved extension. Never called from a user
// action directly; only the extension approval workflow reaches it.
func (t *Task) ExtendDeadline(requestedDueDate time.Time, reason string) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("task in status %s cannot have its deadline extended", t.Status)
	}
	if reason == "" {
		return fmt.Errorf("extension reason is required")
	}
	if t.OriginalDueDate == nil {
		t.OriginalDueDate = t.DueDate
	}
	due := requestedDueDate
	t.ExtendedDueDate = &due
	t.DueDate = &due
	return nil
}

// Cancel soft-cancels the task.
func (t *Task) Cancel() error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("task in status %s cannot be cancelled", t.Status)
	}
	t.Status = StatusCancelled
	return nil
}

// ReviewByManager closes out a completion review: accept with a rating,
// send back for rework, or reject outright.
func (t *Task) ReviewByManager(accepted bool, rating *int, feedback *string, sendBackForRework bool) error {
	if t.Status != StatusPendingManagerReview {
		return fmt.Errorf("task in status %s is not awaiting completion review", t.Status)
	}
	if accepted {
		if rating == nil || *rating < 1 || *rating > 5 {
			return fmt.Errorf("rating must be between 1 and 5 when accepting a completed task")
		}
		t.Status = StatusCompleted
		t.ManagerRating = rating
		t.ManagerFeedback = feedback
		return nil
	}
	t.ManagerFeedback = feedback
	if sendBackForRework {
		t.Status = StatusAccepted
		return nil
	}
	t.Status = StatusRejectedByManager
	return nil
}
