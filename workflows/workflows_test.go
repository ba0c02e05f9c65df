package workflows_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/constants"
	"github.com/hanyam/TaskManagement-sub002/memstore"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/services"
	"github.com/hanyam/TaskManagement-sub002/storage"
	"github.com/hanyam/TaskManagement-sub002/workflows"
)

type fixture struct {
	store    *memstore.MemoryStore
	svc      *workflows.Service
	now      time.Time
	manager  *models.User
	employee *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := memstore.New()
	svc := workflows.NewService(store, services.FixedClock{T: now})

	manager := models.NewUser("manager@example.com", "Manager", constants.RoleManager)
	employee := models.NewUser("employee@example.com", "Employee", constants.RoleEmployee)
	employee.ManagerID = &manager.ID
	for _, u := range []*models.User{manager, employee} {
		require.NoError(t, store.CreateUser(context.Background(), u))
	}

	return &fixture{store: store, svc: svc, now: now, manager: manager, employee: employee}
}

func (f *fixture) createAssignedTask(t *testing.T, taskType models.TaskType) *models.Task {
	t.Helper()

	due := f.now.Add(7 * 24 * time.Hour)
	dto, errs := f.svc.CreateTask(context.Background(), workflows.CreateTaskInput{
		Title:          "Quarterly report",
		Priority:       models.PriorityHigh,
		Type:           taskType,
		DueDate:        &due,
		AssignedUserID: &f.employee.ID,
		CreatedByID:    f.manager.ID,
	})
	require.Nil(t, errs)

	task, err := f.store.TaskByID(context.Background(), dto.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAssigned, task.Status)
	return task
}

func (f *fixture) pendingEntryID(t *testing.T, taskID uuid.UUID) uuid.UUID {
	t.Helper()
	rows, err := f.store.ProgressHistory(context.Background(), taskID)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	return rows[0].ID
}

func TestCreateTask_AccumulatesValidationErrors(t *testing.T) {
	f := newFixture(t)

	past := f.now.Add(-time.Hour)
	_, errs := f.svc.CreateTask(context.Background(), workflows.CreateTaskInput{
		Title:       "",
		Priority:    models.TaskPriority(99),
		Type:        models.TypeWithDueDate,
		DueDate:     &past,
		CreatedByID: f.manager.ID,
	})
	require.Len(t, errs, 3)
	fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
	assert.Contains(t, fields, "Title")
	assert.Contains(t, fields, "Priority")
	assert.Contains(t, fields, "DueDate")
}

func TestMarkTaskCompleted_FailsFastOnMissingTask(t *testing.T) {
	f := newFixture(t)

	missing := uuid.New()
	_, errs := f.svc.MarkTaskCompleted(context.Background(), missing, f.employee.ID)
	require.Len(t, errs, 1)
	assert.Equal(t, apperrors.CodeNotFound, errs[0].Code)
	assert.Contains(t, errs[0].Message, missing.String())
}

func TestMarkTaskCompleted_CreatesFinalProgressEntry(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeWithProgress)

	dto, errs := f.svc.MarkTaskCompleted(context.Background(), task.ID, f.employee.ID)
	require.Nil(t, errs)
	assert.Equal(t, models.StatusPendingManagerReview, dto.Status)

	rows, err := f.store.ProgressHistory(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 100, rows[0].ProgressPercentage)
	assert.Equal(t, models.ProgressPending, rows[0].Status)
}

func TestAcceptTaskProgress_CompletionScenario(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeWithProgress)

	_, errs := f.svc.MarkTaskCompleted(context.Background(), task.ID, f.employee.ID)
	require.Nil(t, errs)
	entryID := f.pendingEntryID(t, task.ID)

	dto, errs := f.svc.AcceptTaskProgress(context.Background(), workflows.AcceptProgressInput{
		TaskID:            task.ID,
		ProgressHistoryID: entryID,
		AcceptedByID:      f.manager.ID,
	})
	require.Nil(t, errs)
	assert.Equal(t, models.StatusCompleted, dto.Status)

	entry, err := f.store.ProgressEntry(context.Background(), task.ID, entryID)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressAccepted, entry.Status)
	require.NotNil(t, entry.AcceptedByID)
	assert.Equal(t, f.manager.ID, *entry.AcceptedByID)
}

func TestAcceptTaskProgress_EntryFromAnotherTask(t *testing.T) {
	f := newFixture(t)
	taskA := f.createAssignedTask(t, models.TypeWithProgress)
	taskB := f.createAssignedTask(t, models.TypeWithProgress)

	_, errs := f.svc.MarkTaskCompleted(context.Background(), taskB.ID, f.employee.ID)
	require.Nil(t, errs)
	entryB := f.pendingEntryID(t, taskB.ID)

	_, errs = f.svc.AcceptTaskProgress(context.Background(), workflows.AcceptProgressInput{
		TaskID:            taskA.ID,
		ProgressHistoryID: entryB,
		AcceptedByID:      f.manager.ID,
	})
	require.Len(t, errs, 1)
	assert.Equal(t, apperrors.CodeNotFound, errs[0].Code)
	assert.Contains(t, errs[0].Message, "Progress history entry")

	// Neither row was touched.
	after, err := f.store.TaskByID(context.Background(), taskA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, after.Status)
	entry, err := f.store.ProgressEntry(context.Background(), taskB.ID, entryB)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressPending, entry.Status)
}

func TestAcceptTaskProgress_AccumulatesBothNotFounds(t *testing.T) {
	f := newFixture(t)

	_, errs := f.svc.AcceptTaskProgress(context.Background(), workflows.AcceptProgressInput{
		TaskID:            uuid.New(),
		ProgressHistoryID: uuid.New(),
		AcceptedByID:      f.manager.ID,
	})
	require.Len(t, errs, 2)
	assert.Equal(t, apperrors.CodeNotFound, errs[0].Code)
	assert.Equal(t, apperrors.CodeNotFound, errs[1].Code)
	assert.Contains(t, errs[1].Message, "Progress history entry")
}

func TestUpdateTaskProgress_RoutesAcceptedTypeToReview(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeWithAcceptedProgress)

	require.Nil(t, sliceOfErrs(f.svc.AcceptTask(context.Background(), task.ID, f.employee.ID)))

	notes := "halfway there"
	dto, errs := f.svc.UpdateTaskProgress(context.Background(), workflows.UpdateProgressInput{
		TaskID:             task.ID,
		UserID:             f.employee.ID,
		ProgressPercentage: 50,
		Notes:              &notes,
	})
	require.Nil(t, errs)
	assert.Equal(t, models.StatusUnderReview, dto.Status)
	assert.Equal(t, 50, dto.ProgressPercentage)

	rows, err := f.store.ProgressHistory(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ProgressPending, rows[0].Status)
}

func TestUpdateTaskProgress_OnlyAssignedUser(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeWithProgress)

	_, errs := f.svc.UpdateTaskProgress(context.Background(), workflows.UpdateProgressInput{
		TaskID:             task.ID,
		UserID:             f.manager.ID,
		ProgressPercentage: 10,
	})
	require.Len(t, errs, 1)
	assert.Equal(t, apperrors.CodeForbidden, errs[0].Code)
}

func TestRejectTaskProgress_RevertsPercentage(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeWithAcceptedProgress)
	require.Nil(t, sliceOfErrs(f.svc.AcceptTask(context.Background(), task.ID, f.employee.ID)))

	// First update gets accepted at 30%.
	_, errs := f.svc.UpdateTaskProgress(context.Background(), workflows.UpdateProgressInput{
		TaskID: task.ID, UserID: f.employee.ID, ProgressPercentage: 30,
	})
	require.Nil(t, errs)
	first := f.pendingEntryID(t, task.ID)
	_, errs = f.svc.AcceptTaskProgress(context.Background(), workflows.AcceptProgressInput{
		TaskID: task.ID, ProgressHistoryID: first, AcceptedByID: f.manager.ID,
	})
	require.Nil(t, errs)

	// Second update at 80% gets rejected; percentage falls back to 30.
	_, errs = f.svc.UpdateTaskProgress(context.Background(), workflows.UpdateProgressInput{
		TaskID: task.ID, UserID: f.employee.ID, ProgressPercentage: 80,
	})
	require.Nil(t, errs)
	second := f.pendingEntryID(t, task.ID)

	dto, errs := f.svc.RejectTaskProgress(context.Background(), workflows.RejectProgressInput{
		TaskID:            task.ID,
		ProgressHistoryID: second,
		RejectedByID:      f.manager.ID,
	})
	require.Nil(t, errs)
	assert.Equal(t, models.StatusAccepted, dto.Status)
	assert.Equal(t, 30, dto.ProgressPercentage)

	entry, err := f.store.ProgressEntry(context.Background(), task.ID, second)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressRejected, entry.Status)
}

func TestApproveExtensionRequest_MovesDueDateOnce(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeWithDueDate)
	originalDue := *task.DueDate

	requested := originalDue.Add(5 * 24 * time.Hour)
	ext, errs := f.svc.RequestDeadlineExtension(context.Background(), workflows.RequestExtensionInput{
		TaskID:           task.ID,
		RequestedByID:    f.employee.ID,
		RequestedDueDate: requested,
		Reason:           "blocked on vendor",
	})
	require.Nil(t, errs)
	assert.Equal(t, models.ExtensionPending, ext.Status)

	notes := "fine"
	dto, errs := f.svc.ApproveExtensionRequest(context.Background(), workflows.ReviewExtensionInput{
		TaskID:             task.ID,
		ExtensionRequestID: ext.ID,
		ReviewedByID:       f.manager.ID,
		ReviewNotes:        &notes,
	})
	require.Nil(t, errs)
	require.NotNil(t, dto.DueDate)
	assert.Equal(t, requested, *dto.DueDate)
	require.NotNil(t, dto.OriginalDueDate)
	assert.Equal(t, originalDue, *dto.OriginalDueDate)

	// Second approval fails and leaves the due date alone.
	_, errs = f.svc.ApproveExtensionRequest(context.Background(), workflows.ReviewExtensionInput{
		TaskID:             task.ID,
		ExtensionRequestID: ext.ID,
		ReviewedByID:       f.manager.ID,
	})
	require.Len(t, errs, 1)
	assert.Equal(t, apperrors.CodeValidation, errs[0].Code)
	assert.Contains(t, errs[0].Message, "already been processed")

	after, err := f.store.TaskByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, requested, *after.DueDate)
}

func TestRejectExtensionRequest_LeavesDueDate(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeWithDueDate)
	originalDue := *task.DueDate

	ext, errs := f.svc.RequestDeadlineExtension(context.Background(), workflows.RequestExtensionInput{
		TaskID:           task.ID,
		RequestedByID:    f.employee.ID,
		RequestedDueDate: originalDue.Add(48 * time.Hour),
		Reason:           "need more time",
	})
	require.Nil(t, errs)

	rejected, errs := f.svc.RejectExtensionRequest(context.Background(), workflows.ReviewExtensionInput{
		TaskID:             task.ID,
		ExtensionRequestID: ext.ID,
		ReviewedByID:       f.manager.ID,
	})
	require.Nil(t, errs)
	assert.Equal(t, models.ExtensionRejected, rejected.Status)

	after, err := f.store.TaskByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, originalDue, *after.DueDate)
	assert.Nil(t, after.ExtendedDueDate)
}

func TestCancelTask_HardDeletesUnstartedWork(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeSimple)

	errs := f.svc.CancelTask(context.Background(), workflows.CancelTaskInput{
		TaskID: task.ID,
		UserID: f.manager.ID,
		Role:   constants.RoleManager,
	})
	require.Nil(t, errs)

	_, err := f.store.TaskByID(context.Background(), task.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCancelTask_SoftCancelsAcceptedWork(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeSimple)
	require.Nil(t, sliceOfErrs(f.svc.AcceptTask(context.Background(), task.ID, f.employee.ID)))

	errs := f.svc.CancelTask(context.Background(), workflows.CancelTaskInput{
		TaskID: task.ID,
		UserID: f.manager.ID,
		Role:   constants.RoleManager,
	})
	require.Nil(t, errs)

	after, err := f.store.TaskByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, after.Status)

	history, err := f.store.HistoryForTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, constants.ActionCancelled, history[0].Action)
}

func TestReviewCompletedTask_AcceptWithRating(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeSimple)
	_, errs := f.svc.MarkTaskCompleted(context.Background(), task.ID, f.employee.ID)
	require.Nil(t, errs)

	rating := 5
	feedback := "great"
	dto, errs := f.svc.ReviewCompletedTask(context.Background(), workflows.ReviewTaskInput{
		TaskID:       task.ID,
		ReviewedByID: f.manager.ID,
		Accepted:     true,
		Rating:       &rating,
		Feedback:     &feedback,
	})
	require.Nil(t, errs)
	assert.Equal(t, models.StatusCompleted, dto.Status)
	assert.Equal(t, rating, *dto.ManagerRating)
}

func TestReassignTask_ReroutesInFlightWork(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeSimple)
	require.Nil(t, sliceOfErrs(f.svc.AcceptTask(context.Background(), task.ID, f.employee.ID)))

	replacement := models.NewUser("replacement@example.com", "Replacement", constants.RoleEmployee)
	replacement.ManagerID = &f.manager.ID
	require.NoError(t, f.store.CreateUser(context.Background(), replacement))

	dto, errs := f.svc.ReassignTask(context.Background(), workflows.ReassignTaskInput{
		TaskID:         task.ID,
		UserIDs:        []uuid.UUID{replacement.ID},
		ReassignedByID: f.manager.ID,
	})
	require.Nil(t, errs)
	assert.Equal(t, models.StatusAssigned, dto.Status)
	require.NotNil(t, dto.AssignedUserID)
	assert.Equal(t, replacement.ID, *dto.AssignedUserID)

	assignments, err := f.store.Assignments(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, replacement.ID, assignments[0].UserID)
	assert.True(t, assignments[0].IsPrimary)

	history, err := f.store.HistoryForTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, constants.ActionReassigned, history[0].Action)
	assert.Equal(t, models.StatusAccepted, history[0].FromStatus)
}

func TestReassignTask_AccumulatesUserViolations(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeSimple)

	inactive := models.NewUser("inactive@example.com", "Inactive", constants.RoleEmployee)
	inactive.Deactivate()
	require.NoError(t, f.store.CreateUser(context.Background(), inactive))

	_, errs := f.svc.ReassignTask(context.Background(), workflows.ReassignTaskInput{
		TaskID:         task.ID,
		UserIDs:        []uuid.UUID{uuid.New(), inactive.ID},
		ReassignedByID: f.manager.ID,
	})
	require.Len(t, errs, 2)
	assert.Equal(t, "NOT_FOUND", errs[0].Code)
	assert.Contains(t, errs[1].Message, "inactive")

	after, err := f.store.TaskByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, f.employee.ID, *after.AssignedUserID)
}

func TestReassignTask_RefusesTerminalStatus(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeSimple)
	_, errs := f.svc.MarkTaskCompleted(context.Background(), task.ID, f.employee.ID)
	require.Nil(t, errs)
	rating := 4
	_, errs = f.svc.ReviewCompletedTask(context.Background(), workflows.ReviewTaskInput{
		TaskID:       task.ID,
		ReviewedByID: f.manager.ID,
		Accepted:     true,
		Rating:       &rating,
	})
	require.Nil(t, errs)

	_, errs = f.svc.ReassignTask(context.Background(), workflows.ReassignTaskInput{
		TaskID:         task.ID,
		UserIDs:        []uuid.UUID{f.employee.ID},
		ReassignedByID: f.manager.ID,
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "cannot be reassigned")
}

func TestAcceptTaskProgress_ResolvedEntryRefusesReuse(t *testing.T) {
	f := newFixture(t)
	task := f.createAssignedTask(t, models.TypeWithAcceptedProgress)
	require.Nil(t, sliceOfErrs(f.svc.AcceptTask(context.Background(), task.ID, f.employee.ID)))

	_, errs := f.svc.UpdateTaskProgress(context.Background(), workflows.UpdateProgressInput{
		TaskID: task.ID, UserID: f.employee.ID, ProgressPercentage: 40,
	})
	require.Nil(t, errs)
	first := f.pendingEntryID(t, task.ID)
	_, errs = f.svc.AcceptTaskProgress(context.Background(), workflows.AcceptProgressInput{
		TaskID: task.ID, ProgressHistoryID: first, AcceptedByID: f.manager.ID,
	})
	require.Nil(t, errs)

	// A newer entry puts the task back under review; accepting the old
	// resolved entry again must fail instead of silently succeeding.
	_, errs = f.svc.UpdateTaskProgress(context.Background(), workflows.UpdateProgressInput{
		TaskID: task.ID, UserID: f.employee.ID, ProgressPercentage: 70,
	})
	require.Nil(t, errs)
	second := f.pendingEntryID(t, task.ID)
	require.NotEqual(t, first, second)

	_, errs = f.svc.AcceptTaskProgress(context.Background(), workflows.AcceptProgressInput{
		TaskID: task.ID, ProgressHistoryID: first, AcceptedByID: f.manager.ID,
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "already been processed")

	after, err := f.store.TaskByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, after.Status)
	entry, err := f.store.ProgressEntry(context.Background(), task.ID, second)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressPending, entry.Status)
}

func sliceOfErrs(_ any, errs []apperrors.Error) []apperrors.Error {
	return errs
}
