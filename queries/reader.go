package queries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
)

// ErrNotFound is returned by Reader lookups when no row matches.
var ErrNotFound = errors.New("queries: not found")

// TaskRow is the flat task projection used by the read side. The assigned
// user's email rides along for display and is never written back.
type TaskRow struct {
	models.Task
	AssignedUserEmail *string
}

type ProgressRow struct {
	models.TaskProgressHistory
	UpdatedByEmail  *string
	AcceptedByEmail *string
}

type ExtensionRow struct {
	models.DeadlineExtensionRequest
	TaskTitle        string
	RequestedByEmail *string
	ReviewedByEmail  *string
}

// TaskFilter narrows task list reads. Nil fields mean "any".
// Offset/Limit paginate; Limit 0 means no limit.
type TaskFilter struct {
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	AssignedUserID *uuid.UUID
	CreatedByID    *uuid.UUID
	DueAfter       *time.Time
	DueBefore      *time.Time
	Offset         int
	Limit          int
}

type ExtensionFilter struct {
	TaskID        *uuid.UUID
	RequestedByID *uuid.UUID
	Status        *models.ExtensionRequestStatus
	Offset        int
	Limit         int
}

// Reader is the projection store for all queries. It deliberately bypasses
// the write model: implementations run flat reads, no entity hydration.
type Reader interface {
	TaskWithUser(ctx context.Context, id uuid.UUID) (*TaskRow, error)
	TaskExists(ctx context.Context, id uuid.UUID) (bool, error)
	IsUserInAssignmentChain(ctx context.Context, taskID, userID uuid.UUID) (bool, error)

	// Tasks and AssignedTasks return one page plus the unfiltered total count.
	Tasks(ctx context.Context, f TaskFilter) ([]TaskRow, int64, error)
	AssignedTasks(ctx context.Context, userID uuid.UUID, f TaskFilter) ([]TaskRow, int64, error)

	// ReminderCandidates returns every non-terminal task visible to the user;
	// reminder levels are computed by the caller, not in the store.
	ReminderCandidates(ctx context.Context, userID uuid.UUID) ([]TaskRow, error)

	DashboardStats(ctx context.Context, userID uuid.UUID, now time.Time) (dto.DashboardStatsDto, error)

	ExtensionRequests(ctx context.Context, f ExtensionFilter) ([]ExtensionRow, int64, error)
	ProgressHistory(ctx context.Context, taskID uuid.UUID) ([]ProgressRow, error)
	HistoryForTask(ctx context.Context, taskID uuid.UUID) ([]models.TaskHistory, error)

	SearchManagedUsers(ctx context.Context, managerID uuid.UUID, term string) ([]dto.UserSearchResultDto, error)
}
