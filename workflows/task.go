package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/constants"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/storage"
)

type CreateTaskInput struct {
	Title          string
	Description    *string
	Priority       models.TaskPriority
	Type           models.TaskType
	DueDate        *time.Time
	AssignedUserID *uuid.UUID
	CreatedByID    uuid.UUID
}

func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	if in.Title == "" {
		errs = append(errs, apperrors.Validation("Title is required", "Title"))
	} else if len(in.Title) > 200 {
		errs = append(errs, apperrors.Validation("Title must be 200 characters or fewer", "Title"))
	}
	if in.Description != nil && len(*in.Description) > 1000 {
		errs = append(errs, apperrors.Validation("Description must be 1000 characters or fewer", "Description"))
	}
	if !in.Priority.Valid() {
		errs = append(errs, apperrors.Validation("Priority is invalid", "Priority"))
	}
	if !in.Type.Valid() {
		errs = append(errs, apperrors.Validation("Task type is invalid", "Type"))
	}
	if in.Type == models.TypeWithDueDate && in.DueDate == nil {
		errs = append(errs, apperrors.Validation("Due date is required for this task type", "DueDate"))
	}
	if in.DueDate != nil && in.DueDate.Before(s.clock.Now()) {
		errs = append(errs, apperrors.Validation("Due date cannot be in the past", "DueDate"))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		creator, err := tx.UserByID(ctx, in.CreatedByID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.NotFound("User", "CreatedById"))
				return err
			}
			errs = append(errs, apperrors.Internal("Failed to create task"))
			return err
		}

		task := models.NewTask(in.Title, in.Description, in.Priority, in.Type, in.DueDate, in.CreatedByID)
		task.SetCreatedBy(creator.Email)

		if in.AssignedUserID != nil {
			if _, err := tx.UserByID(ctx, *in.AssignedUserID); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					errs = append(errs, apperrors.NotFound("User", "AssignedUserId"))
				} else {
					errs = append(errs, apperrors.Internal("Failed to create task"))
				}
				return err
			}
			if err := task.Assign(*in.AssignedUserID); err != nil {
				errs = append(errs, apperrors.Validation(err.Error(), "Status"))
				return err
			}
		}

		if err := tx.CreateTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to create task"))
			return err
		}
		if in.AssignedUserID != nil {
			assignment := models.NewTaskAssignment(task.ID, *in.AssignedUserID, true)
			if err := tx.ReplaceAssignments(ctx, task.ID, []models.TaskAssignment{*assignment}); err != nil {
				errs = append(errs, apperrors.Internal("Failed to create task"))
				return err
			}
		}
		history := models.NewTaskHistory(task.ID, models.StatusCreated, task.Status, constants.ActionCreated, in.CreatedByID, nil)
		if err := tx.AppendHistory(ctx, history); err != nil {
			errs = append(errs, apperrors.Internal("Failed to create task"))
			return err
		}

		result = s.taskDto(ctx, tx, task)
		return nil
	})
	if err != nil {
		return nil, errs
	}
	return &result, nil
}

type UpdateTaskInput struct {
	TaskID      uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description *string
	Priority    models.TaskPriority
	DueDate     *time.Time
}

func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	if in.Title == "" {
		errs = append(errs, apperrors.Validation("Title is required", "Title"))
	} else if len(in.Title) > 200 {
		errs = append(errs, apperrors.Validation("Title must be 200 characters or fewer", "Title"))
	}
	if in.Description != nil && len(*in.Description) > 1000 {
		errs = append(errs, apperrors.Validation("Description must be 1000 characters or fewer", "Description"))
	}
	if !in.Priority.Valid() {
		errs = append(errs, apperrors.Validation("Priority is invalid", "Priority"))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, err := tx.TaskByID(ctx, in.TaskID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to update task"))
			}
			return err
		}
		if task.CreatedByID != in.UserID {
			errs = append(errs, apperrors.Forbidden("Only the task creator can update the task"))
			return errs[0]
		}
		if task.Status.IsTerminal() {
			errs = append(errs, apperrors.Validation("task in status "+task.Status.String()+" cannot be updated", "Status"))
			return errs[0]
		}

		task.Title = in.Title
		task.Description = in.Description
		task.Priority = in.Priority
		task.DueDate = in.DueDate
		if actor, err := tx.UserByID(ctx, in.UserID); err == nil {
			task.SetUpdatedBy(actor.Email)
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to update task"))
			return err
		}

		result = s.taskDto(ctx, tx, task)
		return nil
	})
	if err != nil {
		return nil, errs
	}
	return &result, nil
}

type AssignTaskInput struct {
	TaskID       uuid.UUID
	UserIDs      []uuid.UUID
	AssignedByID uuid.UUID
}

// AssignTask sets the primary assignee from the first user id and
// rebuilds the assignment chain from the rest.
func (s *Service) AssignTask(ctx context.Context, in AssignTaskInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	if len(in.UserIDs) == 0 {
		return nil, []apperrors.Error{apperrors.Validation("At least one user is required", "UserIds")}
	}

	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, err := tx.TaskByID(ctx, in.TaskID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to assign task"))
			}
			return err
		}

		for _, userID := range in.UserIDs {
			if _, err := tx.UserByID(ctx, userID); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					errs = append(errs, apperrors.NotFoundByID("User", userID))
					return err
				}
				errs = append(errs, apperrors.Internal("Failed to assign task"))
				return err
			}
		}

		from := task.Status
		if err := task.Assign(in.UserIDs[0]); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Status"))
			return err
		}

		assignments := make([]models.TaskAssignment, 0, len(in.UserIDs))
		for i, userID := range in.UserIDs {
			assignments = append(assignments, *models.NewTaskAssignment(task.ID, userID, i == 0))
		}
		if err := tx.ReplaceAssignments(ctx, task.ID, assignments); err != nil {
			errs = append(errs, apperrors.Internal("Failed to assign task"))
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to assign task"))
			return err
		}
		history := models.NewTaskHistory(task.ID, from, task.Status, constants.ActionAssigned, in.AssignedByID, nil)
		if err := tx.AppendHistory(ctx, history); err != nil {
			errs = append(errs, apperrors.Internal("Failed to assign task"))
			return err
		}

		result = s.taskDto(ctx, tx, task)
		return nil
	})
	if err != nil {
		return nil, errs
	}
	return &result, nil
}

type ReassignTaskInput struct {
	TaskID         uuid.UUID
	UserIDs        []uuid.UUID
	ReassignedByID uuid.UUID
}

// ReassignTask routes an in-flight task to a new set of users. The
// whole assignment chain is rebuilt and the task returns to Assigned so
// the new primary assignee gets their own accept step. Task existence
// and the checks on every new user accumulate into one response.
func (s *Service) ReassignTask(ctx context.Context, in ReassignTaskInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, taskErr := tx.TaskByID(ctx, in.TaskID)
		if taskErr != nil {
			if errors.Is(taskErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to reassign task"))
				return taskErr
			}
		}

		if len(in.UserIDs) == 0 {
			errs = append(errs, apperrors.Validation("At least one user must be assigned", "NewUserIds"))
		}
		for _, userID := range in.UserIDs {
			user, err := tx.UserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					errs = append(errs, apperrors.NotFound("Assigned user", "AssignedUserId"))
				} else {
					errs = append(errs, apperrors.Internal("Failed to reassign task"))
					return err
				}
				continue
			}
			if !user.IsActive {
				errs = append(errs, apperrors.Validation("Assigned user is inactive", "AssignedUserId"))
			}
		}
		if len(errs) > 0 {
			return errs[0]
		}

		prior, err := tx.Assignments(ctx, task.ID)
		if err != nil {
			errs = append(errs, apperrors.Internal("Failed to reassign task"))
			return err
		}

		from := task.Status
		if err := task.Reassign(in.UserIDs[0]); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Status"))
			return err
		}

		assignments := make([]models.TaskAssignment, 0, len(in.UserIDs))
		for i, userID := range in.UserIDs {
			assignments = append(assignments, *models.NewTaskAssignment(task.ID, userID, i == 0))
		}
		if err := tx.ReplaceAssignments(ctx, task.ID, assignments); err != nil {
			errs = append(errs, apperrors.Internal("Failed to reassign task"))
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to reassign task"))
			return err
		}

		var note *string
		if len(prior) > 0 {
			n := fmt.Sprintf("Replaced %d previous assignment(s)", len(prior))
			note = &n
		}
		history := models.NewTaskHistory(task.ID, from, task.Status, constants.ActionReassigned, in.ReassignedByID, note)
		if err := tx.AppendHistory(ctx, history); err != nil {
			errs = append(errs, apperrors.Internal("Failed to reassign task"))
			return err
		}

		result = s.taskDto(ctx, tx, task)
		return nil
	})
	if err != nil {
		return nil, errs
	}
	return &result, nil
}

// AcceptTask is the assigned employee taking on the task.
func (s *Service) AcceptTask(ctx context.Context, taskID, userID uuid.UUID) (*dto.TaskDto, []apperrors.Error) {
	return s.respondToAssignment(ctx, taskID, userID, true)
}

// RejectTask is the assigned employee declining the task.
func (s *Service) RejectTask(ctx context.Context, taskID, userID uuid.UUID) (*dto.TaskDto, []apperrors.Error) {
	return s.respondToAssignment(ctx, taskID, userID, false)
}

func (s *Service) respondToAssignment(ctx context.Context, taskID, userID uuid.UUID, accept bool) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, err := tx.TaskByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(taskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to update task"))
			}
			return err
		}
		if task.AssignedUserID == nil || *task.AssignedUserID != userID {
			errs = append(errs, apperrors.Forbidden("Only the assigned user can respond to the assignment"))
			return errs[0]
		}

		from := task.Status
		action := constants.ActionAccepted
		if accept {
			err = task.AcceptAssignment()
		} else {
			err = task.RejectAssignment()
			action = constants.ActionRejected
		}
		if err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Status"))
			return err
		}

		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to update task"))
			return err
		}
		history := models.NewTaskHistory(task.ID, from, task.Status, action, userID, nil)
		if err := tx.AppendHistory(ctx, history); err != nil {
			errs = append(errs, apperrors.Internal("Failed to update task"))
			return err
		}

		result = s.taskDto(ctx, tx, task)
		return nil
	})
	if err != nil {
		return nil, errs
	}
	return &result, nil
}

type CancelTaskInput struct {
	TaskID uuid.UUID
	UserID uuid.UUID
	Role   string
}

// CancelTask removes a task that never got started and soft-cancels one
// that did. A task already reviewed or completed refuses.
func (s *Service) CancelTask(ctx context.Context, in CancelTaskInput) []apperrors.Error {
	var errs []apperrors.Error
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, err := tx.TaskByID(ctx, in.TaskID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to cancel task"))
			}
			return err
		}

		allowed := task.CreatedByID == in.UserID ||
			in.Role == constants.RoleManager || in.Role == constants.RoleAdmin
		if !allowed {
			errs = append(errs, apperrors.Forbidden("Only the task creator or a manager can cancel the task"))
			return errs[0]
		}

		switch task.Status {
		case models.StatusCreated, models.StatusAssigned, models.StatusRejected:
			// Never accepted: remove it entirely.
			if err := tx.DeleteTask(ctx, task.ID); err != nil {
				errs = append(errs, apperrors.Internal("Failed to cancel task"))
				return err
			}
			return nil
		}

		from := task.Status
		if err := task.Cancel(); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Status"))
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to cancel task"))
			return err
		}
		history := models.NewTaskHistory(task.ID, from, task.Status, constants.ActionCancelled, in.UserID, nil)
		if err := tx.AppendHistory(ctx, history); err != nil {
			errs = append(errs, apperrors.Internal("Failed to cancel task"))
			return err
		}
		return nil
	})
	if err != nil {
		return errs
	}
	return nil
}
