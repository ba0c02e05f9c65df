package workflows

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/constants"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/storage"
)

// MarkTaskCompleted is the employee declaring the work done. Unlike the
// two approval handlers this one short-circuits on a missing task. A
// final 100% progress entry is filed for the manager to review.
func (s *Service) MarkTaskCompleted(ctx context.Context, taskID, completedByID uuid.UUID) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, err := tx.TaskByID(ctx, taskID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(taskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to mark task completed"))
			}
			return err
		}

		from := task.Status
		if err := task.MarkCompletedByEmployee(); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Status"))
			return err
		}

		entry := models.NewTaskProgressHistory(task.ID, completedByID, 100, nil)
		if err := tx.CreateProgressEntry(ctx, entry); err != nil {
			errs = append(errs, apperrors.Internal("Failed to mark task completed"))
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to mark task completed"))
			return err
		}
		history := models.NewTaskHistory(task.ID, from, task.Status, constants.ActionCompleted, completedByID, nil)
		if err := tx.AppendHistory(ctx, history); err != nil {
			errs = append(errs, apperrors.Internal("Failed to mark task completed"))
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

type ReviewTaskInput struct {
	TaskID            uuid.UUID
	ReviewedByID      uuid.UUID
	Accepted          bool
	Rating            *int
	Feedback          *string
	SendBackForRework bool
}

// ReviewCompletedTask closes out a completion review: accept with a
// rating, send back for rework, or reject outright.
func (s *Service) ReviewCompletedTask(ctx context.Context, in ReviewTaskInput) (*dto.TaskDto, []apperrors.Error) {
	var errs []apperrors.Error
	var result dto.TaskDto
	err := s.store.Transact(ctx, func(tx storage.Store) error {
		task, err := tx.TaskByID(ctx, in.TaskID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				errs = append(errs, apperrors.TaskNotFoundByID(in.TaskID))
			} else {
				errs = append(errs, apperrors.Internal("Failed to review task"))
			}
			return err
		}

		from := task.Status
		if err := task.ReviewByManager(in.Accepted, in.Rating, in.Feedback, in.SendBackForRework); err != nil {
			errs = append(errs, apperrors.Validation(err.Error(), "Review"))
			return err
		}

		if err := tx.SaveTask(ctx, task); err != nil {
			errs = append(errs, apperrors.Internal("Failed to review task"))
			return err
		}
		action := constants.ActionReviewed
		if in.SendBackForRework && !in.Accepted {
			action = constants.ActionSentBackForRework
		}
		history := models.NewTaskHistory(task.ID, from, task.Status, action, in.ReviewedByID, in.Feedback)
		if err := tx.AppendHistory(ctx, history); err != nil {
			errs = append(errs, apperrors.Internal("Failed to review task"))
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
