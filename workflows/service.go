// Package workflows holds the command handlers. Each handler validates
// its preconditions, drives the task state machine, and persists inside
// a single transaction; reads never go through here.
package workflows

import (
	"context"

	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/services"
	"github.com/hanyam/TaskManagement-sub002/storage"
)

type Service struct {
	store storage.Store
	clock services.Clock
}

func NewService(store storage.Store, clock services.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// taskDto builds the response projection. The assigned user's email is
// re-fetched for display only and is never written back.
func (s *Service) taskDto(ctx context.Context, store storage.Store, task *models.Task) dto.TaskDto {
	d := dto.TaskDto{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		Status:             task.Status,
		Priority:           task.Priority,
		Type:               task.Type,
		DueDate:            task.DueDate,
		OriginalDueDate:    task.OriginalDueDate,
		ExtendedDueDate:    task.ExtendedDueDate,
		AssignedUserID:     task.AssignedUserID,
		ProgressPercentage: task.ProgressPercentage,
		ManagerRating:      task.ManagerRating,
		ManagerFeedback:    task.ManagerFeedback,
		CreatedByID:        task.CreatedByID,
		CreatedBy:          task.CreatedBy,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}
	if task.AssignedUserID != nil {
		if user, err := store.UserByID(ctx, *task.AssignedUserID); err == nil {
			email := user.Email
			d.AssignedUserEmail = &email
		}
	}
	return d
}
