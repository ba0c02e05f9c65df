package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(t *testing.T) *Task {
	t.Helper()
	due := time.Now().Add(7 * 24 * time.Hour)
	return NewTask("Write report", nil, PriorityMedium, TypeWithAcceptedProgress, &due, uuid.New())
}

func TestTaskLifecycle_HappyPath(t *testing.T) {
	task := newTestTask(t)
	assert.Equal(t, StatusCreated, task.Status)

	employee := uuid.New()
	require.NoError(t, task.Assign(employee))
	assert.Equal(t, StatusAssigned, task.Status)
	require.NotNil(t, task.AssignedUserID)
	assert.Equal(t, employee, *task.AssignedUserID)

	require.NoError(t, task.AcceptAssignment())
	assert.Equal(t, StatusAccepted, task.Status)

	require.NoError(t, task.UpdateProgress(40, true))
	assert.Equal(t, StatusUnderReview, task.Status)
	assert.Equal(t, 40, task.ProgressPercentage)

	require.NoError(t, task.AcceptProgress())
	assert.Equal(t, StatusAccepted, task.Status)

	require.NoError(t, task.MarkCompletedByEmployee())
	assert.Equal(t, StatusPendingManagerReview, task.Status)

	require.NoError(t, task.AcceptProgress())
	assert.Equal(t, StatusCompleted, task.Status)
}

func TestTaskAssign_ReassignAfterRejection(t *testing.T) {
	task := newTestTask(t)
	first := uuid.New()
	require.NoError(t, task.Assign(first))
	require.NoError(t, task.RejectAssignment())
	assert.Equal(t, StatusRejected, task.Status)

	second := uuid.New()
	require.NoError(t, task.Assign(second))
	assert.Equal(t, StatusAssigned, task.Status)
	assert.Equal(t, second, *task.AssignedUserID)
}

func TestTaskReassign_ResetsInFlightWork(t *testing.T) {
	task := newTestTask(t)
	first := uuid.New()
	require.NoError(t, task.Assign(first))
	require.NoError(t, task.AcceptAssignment())

	// Assign refuses past acceptance; Reassign is the escape hatch.
	second := uuid.New()
	require.Error(t, task.Assign(second))
	require.NoError(t, task.Reassign(second))
	assert.Equal(t, StatusAssigned, task.Status)
	assert.Equal(t, second, *task.AssignedUserID)
}

func TestTerminalStates_RefuseEveryTransition(t *testing.T) {
	for _, terminal := range []TaskStatus{StatusCompleted, StatusCancelled, StatusRejectedByManager} {
		task := newTestTask(t)
		task.Status = terminal

		for name, attempt := range map[string]func() error{
			"Assign":                  func() error { return task.Assign(uuid.New()) },
			"Reassign":                func() error { return task.Reassign(uuid.New()) },
			"AcceptAssignment":        func() error { return task.AcceptAssignment() },
			"RejectAssignment":        func() error { return task.RejectAssignment() },
			"UpdateProgress":          func() error { return task.UpdateProgress(10, false) },
			"MarkCompletedByEmployee": func() error { return task.MarkCompletedByEmployee() },
			"AcceptProgress":          func() error { return task.AcceptProgress() },
			"ExtendDeadline":          func() error { return task.ExtendDeadline(time.Now().Add(time.Hour), "more time") },
			"Cancel":                  func() error { return task.Cancel() },
		} {
			err := attempt()
			require.Error(t, err, "%s from %s should fail", name, terminal)
			assert.Contains(t, err.Error(), terminal.String(), "%s error should name the current status", name)
			assert.Equal(t, terminal, task.Status, "%s must not mutate a terminal task", name)
		}
	}
}

func TestMarkCompletedByEmployee_AlreadyAwaitingReview(t *testing.T) {
	task := newTestTask(t)
	require.NoError(t, task.Assign(uuid.New()))
	require.NoError(t, task.MarkCompletedByEmployee())

	err := task.MarkCompletedByEmployee()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already awaiting manager review")
	assert.Equal(t, StatusPendingManagerReview, task.Status)
}

func TestAcceptProgress_SecondCallFails(t *testing.T) {
	task := newTestTask(t)
	require.NoError(t, task.Assign(uuid.New()))
	require.NoError(t, task.MarkCompletedByEmployee())
	require.NoError(t, task.AcceptProgress())
	assert.Equal(t, StatusCompleted, task.Status)

	err := task.AcceptProgress()
	require.Error(t, err)
	assert.Contains(t, err.Error(), StatusCompleted.String())
}

func TestRejectProgress_RevertsToAccepted(t *testing.T) {
	task := newTestTask(t)
	require.NoError(t, task.Assign(uuid.New()))
	require.NoError(t, task.AcceptAssignment())
	require.NoError(t, task.UpdateProgress(60, true))
	require.Equal(t, StatusUnderReview, task.Status)

	require.NoError(t, task.RejectProgress())
	assert.Equal(t, StatusAccepted, task.Status)

	err := task.RejectProgress()
	require.Error(t, err)
}

func TestExtendDeadline_RecordsOriginalOnce(t *testing.T) {
	task := newTestTask(t)
	firstDue := *task.DueDate

	second := firstDue.Add(48 * time.Hour)
	require.NoError(t, task.ExtendDeadline(second, "scope grew"))
	require.NotNil(t, task.OriginalDueDate)
	assert.Equal(t, firstDue, *task.OriginalDueDate)
	assert.Equal(t, second, *task.DueDate)
	assert.Equal(t, second, *task.ExtendedDueDate)

	third := second.Add(48 * time.Hour)
	require.NoError(t, task.ExtendDeadline(third, "still growing"))
	assert.Equal(t, firstDue, *task.OriginalDueDate, "original due date is set only once")
	assert.Equal(t, third, *task.DueDate)
}

func TestExtendDeadline_RequiresReason(t *testing.T) {
	task := newTestTask(t)
	err := task.ExtendDeadline(time.Now().Add(time.Hour), "")
	require.Error(t, err)
}

func TestReviewByManager(t *testing.T) {
	rating := 4
	feedback := "solid work"

	t.Run("accept requires rating in range", func(t *testing.T) {
		task := newTestTask(t)
		require.NoError(t, task.Assign(uuid.New()))
		require.NoError(t, task.MarkCompletedByEmployee())

		bad := 6
		err := task.ReviewByManager(true, &bad, nil, false)
		require.Error(t, err)
		assert.Equal(t, StatusPendingManagerReview, task.Status)

		err = task.ReviewByManager(true, nil, nil, false)
		require.Error(t, err)

		require.NoError(t, task.ReviewByManager(true, &rating, &feedback, false))
		assert.Equal(t, StatusCompleted, task.Status)
		assert.Equal(t, rating, *task.ManagerRating)
		assert.Equal(t, feedback, *task.ManagerFeedback)
	})

	t.Run("rework returns task to accepted", func(t *testing.T) {
		task := newTestTask(t)
		require.NoError(t, task.Assign(uuid.New()))
		require.NoError(t, task.MarkCompletedByEmployee())

		require.NoError(t, task.ReviewByManager(false, nil, &feedback, true))
		assert.Equal(t, StatusAccepted, task.Status)
		assert.Nil(t, task.ManagerRating)
	})

	t.Run("reject is terminal", func(t *testing.T) {
		task := newTestTask(t)
		require.NoError(t, task.Assign(uuid.New()))
		require.NoError(t, task.MarkCompletedByEmployee())

		require.NoError(t, task.ReviewByManager(false, nil, nil, false))
		assert.Equal(t, StatusRejectedByManager, task.Status)
		assert.True(t, task.Status.IsTerminal())
	})

	t.Run("only from pending manager review", func(t *testing.T) {
		task := newTestTask(t)
		err := task.ReviewByManager(true, &rating, nil, false)
		require.Error(t, err)
	})
}
