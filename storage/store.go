package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Store is the write-side persistence boundary. Lookups return detached
// copies; mutations become visible only through the Save/Create calls,
// normally inside Transact.
type Store interface {
	// Transact runs fn against a transactional view of the store and
	// commits only when fn returns nil.
	Transact(ctx context.Context, fn func(tx Store) error) error

	TaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	SaveTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error

	ProgressEntry(ctx context.Context, taskID, entryID uuid.UUID) (*models.TaskProgressHistory, error)
	LastAcceptedProgress(ctx context.Context, taskID uuid.UUID) (*models.TaskProgressHistory, error)
	CreateProgressEntry(ctx context.Context, entry *models.TaskProgressHistory) error
	SaveProgressEntry(ctx context.Context, entry *models.TaskProgressHistory) error

	ExtensionRequest(ctx context.Context, taskID, requestID uuid.UUID) (*models.DeadlineExtensionRequest, error)
	CreateExtensionRequest(ctx context.Context, req *models.DeadlineExtensionRequest) error
	SaveExtensionRequest(ctx context.Context, req *models.DeadlineExtensionRequest) error

	Assignments(ctx context.Context, taskID uuid.UUID) ([]models.TaskAssignment, error)
	ReplaceAssignments(ctx context.Context, taskID uuid.UUID, assignments []models.TaskAssignment) error

	AppendHistory(ctx context.Context, entry *models.TaskHistory) error

	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
	Users(ctx context.Context) ([]models.User, error)

	// ManagedUserIDs walks the manager relationship recursively and
	// returns every direct and indirect report of the given manager.
	ManagedUserIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error)
}
