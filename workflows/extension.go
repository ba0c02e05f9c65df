package workflows

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/storage"
)

type RequestExtensionInput struct {
	TaskID           uuid.UUID
	RequestedByID    uuid.UUID
	RequestedDueDate time.Time
	Reason           string
}

// RequestDeadlineExtension files a pending extension request. The due
// date moves only when a manager approves it.
func (s *Service) RequestDeadlineExtension(ctx context.Context, in RequestExtensionInput) (*dto.ExtensionRequestDto, []apperrors.Error) {
	var errs []apperrors.Error
	if in.Reason == "" {
		errs = append(errs, apperrors.Validation("Reason is required", "Reason"))
	}
	if !in.RequestedDueDate.After(s.clock.Now()) {
		errs = append(errs, apperrors.Validation("Requested due date must be in the future", "RequestedDueDate"))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var result dto.ExtensionRequestDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, err := tx.TaskByID(ctx, in.TaskID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to request extension"))
			}
			return err
		}
		if task.AssignedUserID == nil || *task.AssignedUserID != in.RequestedByID {
			errs = append(errs, apperrors.Forbidden("Only the assigned user can request a deadline extension"))
			return errs[0]
		}
		if task.Status.IsTerminal() {
			errs = append(errs, apperrors.Validation("task in status "+task.Status.String()+" cannot have its deadline extended", "Status"))
			return errs[0]
		}
		if task.DueDate != nil && !in.RequestedDueDate.After(*task.DueDate) {
			errs = append(errs, apperrors.Validation("Requested due date must be after the current due date", "RequestedDueDate"))
			return errs[0]
		}

		req := models.NewDeadlineExtensionRequest(task.ID, in.RequestedByID, in.RequestedDueDate, in.Reason)
		if err := tx.CreateExtensionRequest(ctx, req); err != nil {
			errs = append(errs, apperrors.Internal("Failed to request extension"))
			return err
		}

		result = s.extensionDto(ctx, tx, req, task.Title)
		return nil
	})
	if err != nil {
		return nil, errs
	}
	return &result, nil
}

type ReviewExtensionInput struct {
	TaskID             uuid.UUID
	ExtensionRequestID uuid.UUID
	ReviewedByID       uuid.UUID
	ReviewNotes        *string
}

// ApproveExtensionRequest marks the request approved and extends the
// task's deadline in the same transaction. The three preconditions
// accumulate rather than short-circuit so the caller sees every
// violation at once.
func (s *Service) ApproveExtensionRequest(ctx context.Context, in ReviewExtensionInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, taskErr := tx.TaskByID(ctx, in.TaskID)
		if taskErr != nil {
			if errors.Is(taskErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to approve extension"))
				return taskErr
			}
		}

		req, reqErr := tx.ExtensionRequest(ctx, in.TaskID, in.ExtensionRequestID)
		if reqErr != nil {
			if errors.Is(reqErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.NotFound("Extension request", "ExtensionRequestId"))
			} else {
				errs = append(errs, apperrors.Internal("Failed to approve extension"))
				return reqErr
			}
		}
		if req != nil && req.Status != models.ExtensionPending {
			errs = append(errs, apperrors.Validation("Extension request has already been processed", "ExtensionRequest"))
		}

		if len(errs) > 0 {
			return errs[0]
		}

		req.Approve(in.ReviewedByID, in.ReviewNotes)
		if err := task.ExtendDeadline(req.RequestedDueDate, req.Reason); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Extension"))
			return err
		}

		if err := tx.SaveExtensionRequest(ctx, req); err != nil {
			errs = append(errs, apperrors.Internal("Failed to approve extension"))
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to approve extension"))
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

// RejectExtensionRequest marks the request rejected with reviewer notes.
// The task's due date is untouched.
func (s *Service) RejectExtensionRequest(ctx context.Context, in ReviewExtensionInput) (*dto.ExtensionRequestDto, []apperrors.Error) {
	var errs []apperrors.Error
	var result dto.ExtensionRequestDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, taskErr := tx.TaskByID(ctx, in.TaskID)
		if taskErr != nil {
			if errors.Is(taskErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to reject extension"))
				return taskErr
			}
		}

		req, reqErr := tx.ExtensionRequest(ctx, in.TaskID, in.ExtensionRequestID)
		if reqErr != nil {
			if errors.Is(reqErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.NotFound("Extension request", "ExtensionRequestId"))
			} else {
				errs = append(errs, apperrors.Internal("Failed to reject extension"))
				return reqErr
			}
		}
		if req != nil && req.Status != models.ExtensionPending {
			errs = append(errs, apperrors.Validation("Extension request has already been processed", "ExtensionRequest"))
		}

		if len(errs) > 0 {
			return errs[0]
		}

		req.Reject(in.ReviewedByID, in.ReviewNotes)
		if err := tx.SaveExtensionRequest(ctx, req); err != nil {
			errs = append(errs, apperrors.Internal("Failed to reject extension"))
			return err
		}

		result = s.extensionDto(ctx, tx, req, task.Title)
		return nil
	})
	if err != nil {
		return nil, errs
	}
	return &result, nil
}

func (s *Service) extensionDto(ctx context.Context, store storage.Store, req *models.DeadlineExtensionRequest, taskTitle string) dto.ExtensionRequestDto {
	d := dto.ExtensionRequestDto{
		ID:               req.ID,
		TaskID:           req.TaskID,
		TaskTitle:        taskTitle,
		RequestedByID:    req.RequestedByID,
		RequestedDueDate: req.RequestedDueDate,
		Reason:           req.Reason,
		Status:           req.Status,
		ReviewedByID:     req.ReviewedByID,
		ReviewedAt:       req.ReviewedAt,
		ReviewNotes:      req.ReviewNotes,
		CreatedAt:        req.CreatedAt,
	}
	if user, err := store.UserByID(ctx, req.RequestedByID); err == nil {
		email := user.Email
		d.RequestedByEmail = &email
	}
	if req.ReviewedByID != nil {
		if user, err := store.UserByID(ctx, *req.ReviewedByID); err == nil {
			email := user.Email
			d.ReviewedByEmail = &email
		}
	}
	return d
}
