package queries

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/services"
)

// Queries serves all read endpoints over the projection store.
type Queries struct {
	reader   Reader
	reminder services.ReminderCalculator
	clock    services.Clock
}

func New(reader Reader, reminder services.ReminderCalculator, clock services.Clock) *Queries {
	return &Queries{reader: reader, reminder: reminder, clock: clock}
}

// GetTasksParams filters the task list. Page and PageSize are required
// on every list read.
type GetTasksParams struct {
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	AssignedUserID *uuid.UUID
	CreatedByID    *uuid.UUID
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
	Page           int
	PageSize       int
}

func (q *Queries) GetTasks(ctx context.Context, p GetTasksParams) (*dto.Paged, []apperrors.Error) {
	errs := validatePaging(p.Page, p.PageSize)
	if p.DueDateFrom != nil && p.DueDateTo != nil && p.DueDateFrom.After(*p.DueDateTo) {
		errs = append(errs, apperrors.InvalidDateRange)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	f := TaskFilter{
		Status:         p.Status,
		Priority:       p.Priority,
		AssignedUserID: p.AssignedUserID,
		CreatedByID:    p.CreatedByID,
		Offset:         (p.Page - 1) * p.PageSize,
		Limit:          p.PageSize,
	}
	f.DueAfter = p.DueDateFrom
	f.DueBefore = p.DueDateTo

	rows, total, err := q.reader.Tasks(ctx, f)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load tasks")}
	}
	paged := dto.NewPaged(q.taskDtos(rows), int(total), p.Page, p.PageSize)
	return &paged, nil
}

func (q *Queries) GetAssignedTasks(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.Paged, []apperrors.Error) {
	if errs := validatePaging(page, pageSize); len(errs) > 0 {
		return nil, errs
	}

	f := TaskFilter{Offset: (page - 1) * pageSize, Limit: pageSize}
	rows, total, err := q.reader.AssignedTasks(ctx, userID, f)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load assigned tasks")}
	}
	paged := dto.NewPaged(q.taskDtos(rows), int(total), page, pageSize)
	return &paged, nil
}

// GetTaskByID returns the task projection after an access check: the
// caller must be the creator, the assigned user, or in the assignment
// chain. A task that exists but is off-limits fails with AccessDenied,
// not NotFound.
func (q *Queries) GetTaskByID(ctx context.Context, taskID, userID uuid.UUID) (*dto.TaskDto, []apperrors.Error) {
	row, err := q.reader.TaskWithUser(ctx, taskID)
	if errors.Is(err, ErrNotFound) {
		return nil, []apperrors.Error{apperrors.TaskNotFoundByID(taskID)}
	}
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load task")}
	}

	allowed, err := q.canAccess(ctx, row, userID)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load task")}
	}
	if !allowed {
		return nil, []apperrors.Error{apperrors.TaskAccessDenied}
	}

	d := q.taskDto(*row)
	return &d, nil
}

// canAccess is the single task read rule: creator, assigned user, or
// someone in the assignment chain. Every projection scoped to one task
// goes through it.
func (q *Queries) canAccess(ctx context.Context, row *TaskRow, userID uuid.UUID) (bool, error) {
	if row.CreatedByID == userID {
		return true, nil
	}
	if row.AssignedUserID != nil && *row.AssignedUserID == userID {
		return true, nil
	}
	return q.reader.IsUserInAssignmentChain(ctx, row.ID, userID)
}

// GetTasksByReminderLevel is the one read with logic outside the store:
// every candidate is fetched, its level computed, and filter, sort and
// pagination all happen in memory. The page boundary applies after
// filtering, so totals count matching tasks only.
func (q *Queries) GetTasksByReminderLevel(ctx context.Context, userID uuid.UUID, level models.ReminderLevel, page, pageSize int) (*dto.Paged, []apperrors.Error) {
	if errs := validatePaging(page, pageSize); len(errs) > 0 {
		return nil, errs
	}

	candidates, err := q.reader.ReminderCandidates(ctx, userID)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load tasks")}
	}

	var matched []dto.TaskDto
	for _, row := range candidates {
		d := q.taskDto(row)
		if d.ReminderLevel == level {
			matched = append(matched, d)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	paged := dto.NewPaged(matched[start:end], total, page, pageSize)
	return &paged, nil
}

func (q *Queries) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*dto.DashboardStatsDto, []apperrors.Error) {
	stats, err := q.reader.DashboardStats(ctx, userID, q.clock.Now())
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load dashboard stats")}
	}
	return &stats, nil
}

type GetExtensionRequestsParams struct {
	TaskID        *uuid.UUID
	RequestedByID *uuid.UUID
	Status        *models.ExtensionRequestStatus
	Page          int
	PageSize      int
}

func (q *Queries) GetExtensionRequests(ctx context.Context, p GetExtensionRequestsParams) (*dto.Paged, []apperrors.Error) {
	if errs := validatePaging(p.Page, p.PageSize); len(errs) > 0 {
		return nil, errs
	}

	f := ExtensionFilter{
		TaskID:        p.TaskID,
		RequestedByID: p.RequestedByID,
		Status:        p.Status,
		Offset:        (p.Page - 1) * p.PageSize,
		Limit:         p.PageSize,
	}
	rows, total, err := q.reader.ExtensionRequests(ctx, f)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load extension requests")}
	}

	items := make([]dto.ExtensionRequestDto, 0, len(rows))
	for _, row := range rows {
		items = append(items, extensionDto(row))
	}
	paged := dto.NewPaged(items, int(total), p.Page, p.PageSize)
	return &paged, nil
}

func (q *Queries) GetTaskProgressHistory(ctx context.Context, taskID uuid.UUID) ([]dto.TaskProgressDto, []apperrors.Error) {
	exists, err := q.reader.TaskExists(ctx, taskID)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load progress history")}
	}
	if !exists {
		return nil, []apperrors.Error{apperrors.TaskNotFoundByID(taskID)}
	}

	rows, err := q.reader.ProgressHistory(ctx, taskID)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load progress history")}
	}

	items := make([]dto.TaskProgressDto, 0, len(rows))
	for _, row := range rows {
		items = append(items, progressDto(row))
	}
	return items, nil
}

// GetTaskHistory returns the audit trail under the same access rule as
// GetTaskByID: a task that exists but is off-limits fails with
// AccessDenied, not NotFound.
func (q *Queries) GetTaskHistory(ctx context.Context, taskID, userID uuid.UUID) ([]dto.TaskHistoryDto, []apperrors.Error) {
	row, err := q.reader.TaskWithUser(ctx, taskID)
	if errors.Is(err, ErrNotFound) {
		return nil, []apperrors.Error{apperrors.TaskNotFoundByID(taskID)}
	}
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load task history")}
	}
	allowed, err := q.canAccess(ctx, row, userID)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load task history")}
	}
	if !allowed {
		return nil, []apperrors.Error{apperrors.TaskAccessDenied}
	}

	rows, err := q.reader.HistoryForTask(ctx, taskID)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to load task history")}
	}

	items := make([]dto.TaskHistoryDto, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.TaskHistoryDto{
			ID:            row.ID,
			TaskID:        row.TaskID,
			FromStatus:    row.FromStatus,
			ToStatus:      row.ToStatus,
			Action:        row.Action,
			PerformedByID: row.PerformedByID,
			Notes:         row.Notes,
			CreatedAt:     row.CreatedAt,
		})
	}
	return items, nil
}

// SearchManagedUsers returns the manager's reports matching the term.
// A term shorter than two characters yields an empty result by policy,
// not a failure.
func (q *Queries) SearchManagedUsers(ctx context.Context, managerID uuid.UUID, term string) ([]dto.UserSearchResultDto, []apperrors.Error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return []dto.UserSearchResultDto{}, nil
	}

	results, err := q.reader.SearchManagedUsers(ctx, managerID, term)
	if err != nil {
		return nil, []apperrors.Error{apperrors.Internal("Failed to search users")}
	}
	if results == nil {
		results = []dto.UserSearchResultDto{}
	}
	return results, nil
}

func validatePaging(page, pageSize int) []apperrors.Error {
	var errs []apperrors.Error
	if page < 1 {
		errs = append(errs, apperrors.InvalidPageNumber)
	}
	if pageSize < 1 || pageSize > 100 {
		errs = append(errs, apperrors.InvalidPageSize)
	}
	return errs
}

func (q *Queries) taskDtos(rows []TaskRow) []dto.TaskDto {
	items := make([]dto.TaskDto, 0, len(rows))
	for _, row := range rows {
		items = append(items, q.taskDto(row))
	}
	return items
}

func (q *Queries) taskDto(row TaskRow) dto.TaskDto {
	return dto.TaskDto{
		ID:                 row.ID,
		Title:              row.Title,
		Description:        row.Description,
		Status:             row.Status,
		Priority:           row.Priority,
		Type:               row.Type,
		DueDate:            row.DueDate,
		OriginalDueDate:    row.OriginalDueDate,
		ExtendedDueDate:    row.ExtendedDueDate,
		AssignedUserID:     row.AssignedUserID,
		AssignedUserEmail:  row.AssignedUserEmail,
		ReminderLevel:      q.reminder.Level(row.DueDate, &row.CreatedAt),
		ProgressPercentage: row.ProgressPercentage,
		ManagerRating:      row.ManagerRating,
		ManagerFeedback:    row.ManagerFeedback,
		CreatedByID:        row.CreatedByID,
		CreatedBy:          row.CreatedBy,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func progressDto(row ProgressRow) dto.TaskProgressDto {
	updatedAt := row.CreatedAt
	if row.UpdatedAt != nil {
		updatedAt = *row.UpdatedAt
	}
	return dto.TaskProgressDto{
		ID:                 row.ID,
		TaskID:             row.TaskID,
		UpdatedByID:        row.UpdatedByID,
		UpdatedByEmail:     row.UpdatedByEmail,
		ProgressPercentage: row.ProgressPercentage,
		Notes:              row.Notes,
		Status:             row.Status,
		AcceptedByID:       row.AcceptedByID,
		AcceptedByEmail:    row.AcceptedByEmail,
		AcceptedAt:         row.AcceptedAt,
		UpdatedAt:          updatedAt,
	}
}

func extensionDto(row ExtensionRow) dto.ExtensionRequestDto {
	return dto.ExtensionRequestDto{
		ID:               row.ID,
		TaskID:           row.TaskID,
		TaskTitle:        row.TaskTitle,
		RequestedByID:    row.RequestedByID,
		RequestedByEmail: row.RequestedByEmail,
		RequestedDueDate: row.RequestedDueDate,
		Reason:           row.Reason,
		Status:           row.Status,
		ReviewedByID:     row.ReviewedByID,
		ReviewedByEmail:  row.ReviewedByEmail,
		ReviewedAt:       row.ReviewedAt,
		ReviewNotes:      row.ReviewNotes,
		CreatedAt:        row.CreatedAt,
	}
}
