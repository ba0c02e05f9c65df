package workflows

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/storage"
)

type UpdateProgressInput struct {
	TaskID             uuid.UUID
	UserID             uuid.UUID
	ProgressPercentage int
	Notes              *string
}

// UpdateTaskProgress records a new progress entry from the assigned
// employee. Task types that require acceptance park the task under
// review until a manager resolves the entry.
func (s *Service) UpdateTaskProgress(ctx context.Context, in UpdateProgressInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	if in.ProgressPercentage < 0 || in.ProgressPercentage > 100 {
		return nil, []apperrors.Error{apperrors.Validation("Progress percentage must be between 0 and 100", "ProgressPercentage")}
	}

	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, err := tx.TaskByID(ctx, in.TaskID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to update progress"))
			}
			return err
		}
		if task.AssignedUserID == nil || *task.AssignedUserID != in.UserID {
			errs = append(errs, apperrors.Forbidden("Only the assigned user can report progress"))
			return errs[0]
		}
		if !task.Type.TracksProgress() {
			errs = append(errs, apperrors.Validation("Task type does not track progress updates", "Type"))
			return errs[0]
		}

		requiresAcceptance := task.Type == models.TypeWithAcceptedProgress
		if err := task.UpdateProgress(in.ProgressPercentage, requiresAcceptance); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Status"))
			return err
		}

		entry := models.NewTaskProgressHistory(task.ID, in.UserID, in.ProgressPercentage, in.Notes)
		if !requiresAcceptance {
			// No review step: the entry is accepted as reported.
			entry.Accept(in.UserID)
		}
		if err := tx.CreateProgressEntry(ctx, entry); err != nil {
			errs = append(errs, apperrors.Internal("Failed to update progress"))
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to update progress"))
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

type AcceptProgressInput struct {
	TaskID            uuid.UUID
	ProgressHistoryID uuid.UUID
	AcceptedByID      uuid.UUID
}

// AcceptTaskProgress resolves a pending progress entry in the employee's
// favor. The existence and already-processed checks accumulate so the
// caller sees every violation at once; the handler persists both rows in
// one transaction and deliberately writes no task history.
func (s *Service) AcceptTaskProgress(ctx context.Context, in AcceptProgressInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, taskErr := tx.TaskByID(ctx, in.TaskID)
		if taskErr != nil {
			if errors.Is(taskErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to accept progress"))
				return taskErr
			}
		}

		entry, entryErr := tx.ProgressEntry(ctx, in.TaskID, in.ProgressHistoryID)
		if entryErr != nil {
			if errors.Is(entryErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.NotFound("Progress history entry", "ProgressHistoryId"))
			} else {
				errs = append(errs, apperrors.Internal("Failed to accept progress"))
				return entryErr
			}
		}

		if entry != nil && entry.Status != models.ProgressPending {
			errs = append(errs, apperrors.Validation("Progress update has already been processed", "Progress"))
		}
		if len(errs) > 0 {
			return errs[0]
		}

		if err := task.AcceptProgress(); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Progress"))
			return err
		}
		entry.Accept(in.AcceptedByID)
		task.SetProgressPercentage(entry.ProgressPercentage)

		if err := tx.SaveProgressEntry(ctx, entry); err != nil {
			errs = append(errs, apperrors.Internal("Failed to accept progress"))
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to accept progress"))
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

type RejectProgressInput struct {
	TaskID            uuid.UUID
	ProgressHistoryID uuid.UUID
	RejectedByID      uuid.UUID
	Notes             *string
}

// RejectTaskProgress declines a pending progress entry and reverts the
// task percentage to the last accepted value, or zero when none exists.
func (s *Service) RejectTaskProgress(ctx context.Context, in RejectProgressInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, taskErr := tx.TaskByID(ctx, in.TaskID)
		if taskErr != nil {
			if errors.Is(taskErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to reject progress"))
				return taskErr
			}
		}

		entry, entryErr := tx.ProgressEntry(ctx, in.TaskID, in.ProgressHistoryID)
		if entryErr != nil {
			if errors.Is(entryErr, storage.ErrNotFound) {
				errs = append(errs, apperrors.NotFound("Progress history entry", "ProgressHistoryId"))
			} else {
				errs = append(errs, apperrors.Internal("Failed to reject progress"))
				return entryErr
			}
		}

		if len(errs) > 0 {
			return errs[0]
		}

		if task.CreatedByID != in.RejectedByID {
			errs = append(errs, apperrors.Forbidden("Only the task creator can reject progress"))
		}
		if task.Status != models.StatusUnderReview {
			errs = append(errs, apperrors.Validation("task in status "+task.Status.String()+" is not awaiting progress review", "Status"))
		}
		if task.Type != models.TypeWithAcceptedProgress {
			errs = append(errs, apperrors.Validation("Task type does not require progress acceptance", "Type"))
		}
		if entry.Status != models.ProgressPending {
			errs = append(errs, apperrors.Validation("Progress update has already been processed", "Progress"))
		}
		if len(errs) > 0 {
			return errs[0]
		}

		entry.Reject(in.RejectedByID)
		if in.Notes != nil {
			entry.Notes = in.Notes
		}
		if err := task.RejectProgress(); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Status"))
			return err
		}

		revertTo := 0
		if last, err := tx.LastAcceptedProgress(ctx, in.TaskID); err == nil {
			revertTo = last.ProgressPercentage
		}
		task.SetProgressPercentage(revertTo)

		if err := tx.SaveProgressEntry(ctx, entry); err != nil {
			errs = append(errs, apperrors.Internal("Failed to reject progress"))
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to reject progress"))
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
