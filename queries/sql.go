package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
)

// SQLReader runs the read side as raw SQL over the same database the
// write side persists to. No gorm involvement: flat rows in, flat rows
// out.
type SQLReader struct {
	db *sql.DB
}

func NewSQLReader(db *sql.DB) *SQLReader {
	return &SQLReader{db: db}
}

const taskColumns = `t.id, t.created_at, t.updated_at, t.created_by, t.updated_by,
	t.title, t.description, t.status, t.priority, t.type,
	t.due_date, t.original_due_date, t.extended_due_date,
	t.assigned_user_id, t.created_by_id, t.progress_percentage,
	t.manager_rating, t.manager_feedback, u.email`

const taskFrom = ` FROM tasks t LEFT JOIN users u ON u.id = t.assigned_user_id`

func (r *SQLReader) TaskWithUser(ctx context.Context, id uuid.UUID) (*TaskRow, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+taskColumns+taskFrom+" WHERE t.id = ?", id)
	t, err := scanTaskRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *SQLReader) TaskExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)", id).Scan(&exists)
	return exists, err
}

// IsUserInAssignmentChain reports whether the user is a co-assignee of
// the task or a manager anywhere above one of its assignees.
func (r *SQLReader) IsUserInAssignmentChain(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	var direct bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM task_assignments WHERE task_id = ? AND user_id = ?)",
		taskID, userID).Scan(&direct)
	if err != nil {
		return false, err
	}
	if direct {
		return true, nil
	}

	assignees, err := r.taskAssigneeIDs(ctx, taskID)
	if err != nil {
		return false, err
	}
	for _, assignee := range assignees {
		above, err := r.isManagerAbove(ctx, userID, assignee)
		if err != nil {
			return false, err
		}
		if above {
			return true, nil
		}
	}
	return false, nil
}

func (r *SQLReader) taskAssigneeIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	var assigned uuid.NullUUID
	err := r.db.QueryRowContext(ctx, "SELECT assigned_user_id FROM tasks WHERE id = ?", taskID).Scan(&assigned)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if assigned.Valid {
		ids = append(ids, assigned.UUID)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT user_id FROM task_assignments WHERE task_id = ?", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// isManagerAbove walks the manager chain upward from the employee,
// bounded to guard against a cyclic hierarchy in bad data.
func (r *SQLReader) isManagerAbove(ctx context.Context, managerID, employeeID uuid.UUID) (bool, error) {
	current := employeeID
	for depth := 0; depth < 32; depth++ {
		var manager uuid.NullUUID
		err := r.db.QueryRowContext(ctx, "SELECT manager_id FROM users WHERE id = ?", current).Scan(&manager)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !manager.Valid) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if manager.UUID == managerID {
			return true, nil
		}
		current = manager.UUID
	}
	return false, nil
}

func (r *SQLReader) Tasks(ctx context.Context, f TaskFilter) ([]TaskRow, int64, error) {
	where, args := buildTaskWhere(f)
	return r.pageTasks(ctx, where, args, f.Offset, f.Limit)
}

func (r *SQLReader) AssignedTasks(ctx context.Context, userID uuid.UUID, f TaskFilter) ([]TaskRow, int64, error) {
	where, args := buildTaskWhere(f)
	where = append(where, "(t.assigned_user_id = ? OR t.id IN (SELECT task_id FROM task_assignments WHERE user_id = ?))")
	args = append(args, userID, userID)
	return r.pageTasks(ctx, where, args, f.Offset, f.Limit)
}

func (r *SQLReader) ReminderCandidates(ctx context.Context, userID uuid.UUID) ([]TaskRow, error) {
	where := []string{
		"t.status NOT IN (?, ?, ?)",
		"(t.assigned_user_id = ? OR t.created_by_id = ?)",
	}
	args := []any{models.StatusCompleted, models.StatusCancelled, models.StatusRejectedByManager, userID, userID}
	rows, _, err := r.pageTasks(ctx, where, args, 0, 0)
	return rows, err
}

func (r *SQLReader) pageTasks(ctx context.Context, where []string, args []any, offset, limit int) ([]TaskRow, int64, error) {
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+taskFrom+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + taskColumns + taskFrom + clause + " ORDER BY t.created_at DESC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []TaskRow
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *t)
	}
	return result, total, rows.Err()
}

func buildTaskWhere(f TaskFilter) ([]string, []any) {
	var where []string
	var args []any
	if f.Status != nil {
		where = append(where, "t.status = ?")
		args = append(args, *f.Status)
	}
	if f.Priority != nil {
		where = append(where, "t.priority = ?")
		args = append(args, *f.Priority)
	}
	if f.AssignedUserID != nil {
		where = append(where, "t.assigned_user_id = ?")
		args = append(args, *f.AssignedUserID)
	}
	if f.CreatedByID != nil {
		where = append(where, "t.created_by_id = ?")
		args = append(args, *f.CreatedByID)
	}
	if f.DueAfter != nil {
		where = append(where, "t.due_date >= ?")
		args = append(args, *f.DueAfter)
	}
	if f.DueBefore != nil {
		where = append(where, "t.due_date <= ?")
		args = append(args, *f.DueBefore)
	}
	return where, args
}

// DashboardStats aggregates all seven counters in one scan over the
// tasks visible to the user.
func (r *SQLReader) DashboardStats(ctx context.Context, userID uuid.UUID, now time.Time) (dto.DashboardStatsDto, error) {
	nearDue := now.Add(72 * time.Hour)
	var stats dto.DashboardStatsDto
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN t.created_by_id = ? THEN 1 END),
			COUNT(CASE WHEN t.status = ? THEN 1 END),
			COUNT(CASE WHEN t.due_date IS NOT NULL AND t.due_date >= ? AND t.due_date <= ? AND t.status NOT IN (?, ?, ?) THEN 1 END),
			COUNT(CASE WHEN t.due_date IS NOT NULL AND t.due_date < ? AND t.status NOT IN (?, ?, ?) THEN 1 END),
			COUNT(CASE WHEN t.status IN (?, ?) THEN 1 END),
			COUNT(CASE WHEN t.status = ? THEN 1 END),
			COUNT(CASE WHEN t.status = ? THEN 1 END)
		FROM tasks t
		WHERE t.created_by_id = ? OR t.assigned_user_id = ?`,
		userID,
		models.StatusCompleted,
		now, nearDue, models.StatusCompleted, models.StatusCancelled, models.StatusRejectedByManager,
		now, models.StatusCompleted, models.StatusCancelled, models.StatusRejectedByManager,
		models.StatusAssigned, models.StatusAccepted,
		models.StatusUnderReview,
		models.StatusPendingManagerReview,
		userID, userID,
	).Scan(
		&stats.TasksCreatedByUser,
		&stats.TasksCompleted,
		&stats.TasksNearDueDate,
		&stats.TasksDelayed,
		&stats.TasksInProgress,
		&stats.TasksUnderReview,
		&stats.TasksPendingAcceptance,
	)
	return stats, err
}

func (r *SQLReader) ExtensionRequests(ctx context.Context, f ExtensionFilter) ([]ExtensionRow, int64, error) {
	var where []string
	var args []any
	if f.TaskID != nil {
		where = append(where, "e.task_id = ?")
		args = append(args, *f.TaskID)
	}
	if f.RequestedByID != nil {
		where = append(where, "e.requested_by_id = ?")
		args = append(args, *f.RequestedByID)
	}
	if f.Status != nil {
		where = append(where, "e.status = ?")
		args = append(args, *f.Status)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	from := ` FROM deadline_extension_requests e
		JOIN tasks t ON t.id = e.task_id
		LEFT JOIN users req ON req.id = e.requested_by_id
		LEFT JOIN users rev ON rev.id = e.reviewed_by_id`

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT e.id, e.created_at, e.task_id, t.title, e.requested_by_id, req.email,
		e.requested_due_date, e.reason, e.status, e.reviewed_by_id, rev.email,
		e.reviewed_at, e.review_notes` + from + clause + " ORDER BY e.created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []ExtensionRow
	for rows.Next() {
		var row ExtensionRow
		var requestedBy, reviewedBy sql.NullString
		var reviewedByID uuid.NullUUID
		var reviewedAt sql.NullTime
		var reviewNotes sql.NullString
		err := rows.Scan(&row.ID, &row.CreatedAt, &row.TaskID, &row.TaskTitle,
			&row.RequestedByID, &requestedBy, &row.RequestedDueDate, &row.Reason,
			&row.Status, &reviewedByID, &reviewedBy, &reviewedAt, &reviewNotes)
		if err != nil {
			return nil, 0, err
		}
		row.RequestedByEmail = nullString(requestedBy)
		row.ReviewedByEmail = nullString(reviewedBy)
		if reviewedByID.Valid {
			id := reviewedByID.UUID
			row.ReviewedByID = &id
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			row.ReviewedAt = &t
		}
		row.ReviewNotes = nullString(reviewNotes)
		result = append(result, row)
	}
	return result, total, rows.Err()
}

func (r *SQLReader) ProgressHistory(ctx context.Context, taskID uuid.UUID) ([]ProgressRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.created_at, p.updated_at, p.task_id, p.updated_by_id, upd.email,
			p.progress_percentage, p.notes, p.status, p.accepted_by_id, acc.email, p.accepted_at
		FROM task_progress_histories p
		LEFT JOIN users upd ON upd.id = p.updated_by_id
		LEFT JOIN users acc ON acc.id = p.accepted_by_id
		WHERE p.task_id = ?
		ORDER BY p.created_at DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProgressRow
	for rows.Next() {
		var row ProgressRow
		var updatedAt sql.NullTime
		var updatedBy, acceptedBy, notes sql.NullString
		var acceptedByID uuid.NullUUID
		var acceptedAt sql.NullTime
		err := rows.Scan(&row.ID, &row.CreatedAt, &updatedAt, &row.TaskID, &row.UpdatedByID,
			&updatedBy, &row.ProgressPercentage, &notes, &row.Status, &acceptedByID,
			&acceptedBy, &acceptedAt)
		if err != nil {
			return nil, err
		}
		if updatedAt.Valid {
			t := updatedAt.Time
			row.UpdatedAt = &t
		}
		row.UpdatedByEmail = nullString(updatedBy)
		row.Notes = nullString(notes)
		row.AcceptedByEmail = nullString(acceptedBy)
		if acceptedByID.Valid {
			id := acceptedByID.UUID
			row.AcceptedByID = &id
		}
		if acceptedAt.Valid {
			t := acceptedAt.Time
			row.AcceptedAt = &t
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *SQLReader) HistoryForTask(ctx context.Context, taskID uuid.UUID) ([]models.TaskHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, task_id, from_status, to_status, action, performed_by_id, notes
		FROM task_histories
		WHERE task_id = ?
		ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.TaskHistory
	for rows.Next() {
		var h models.TaskHistory
		var notes sql.NullString
		err := rows.Scan(&h.ID, &h.CreatedAt, &h.TaskID, &h.FromStatus, &h.ToStatus,
			&h.Action, &h.PerformedByID, &notes)
		if err != nil {
			return nil, err
		}
		h.Notes = nullString(notes)
		result = append(result, h)
	}
	return result, rows.Err()
}

// SearchManagedUsers matches the term against name and email of the
// manager's direct and indirect reports.
func (r *SQLReader) SearchManagedUsers(ctx context.Context, managerID uuid.UUID, term string) ([]dto.UserSearchResultDto, error) {
	reportIDs, err := r.managedUserIDs(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if len(reportIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(reportIDs)), ",")
	args := make([]any, 0, len(reportIDs)+2)
	for _, id := range reportIDs {
		args = append(args, id)
	}
	pattern := "%" + term + "%"
	args = append(args, pattern, pattern)

	query := fmt.Sprintf(`SELECT id, display_name, email FROM users
		WHERE id IN (%s) AND is_active = 1 AND (display_name LIKE ? OR email LIKE ?)
		ORDER BY display_name`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []dto.UserSearchResultDto
	for rows.Next() {
		var u dto.UserSearchResultDto
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Email); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// managedUserIDs expands the report tree breadth-first, one level per
// query.
func (r *SQLReader) managedUserIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	var all []uuid.UUID
	frontier := []uuid.UUID{managerID}
	seen := map[uuid.UUID]bool{managerID: true}

	for len(frontier) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(frontier)), ",")
		args := make([]any, 0, len(frontier))
		for _, id := range frontier {
			args = append(args, id)
		}

		rows, err := r.db.QueryContext(ctx,
			fmt.Sprintf("SELECT id FROM users WHERE manager_id IN (%s)", placeholders), args...)
		if err != nil {
			return nil, err
		}

		var next []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			if !seen[id] {
				seen[id] = true
				all = append(all, id)
				next = append(next, id)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		frontier = next
	}
	return all, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(s rowScanner) (*TaskRow, error) {
	var t TaskRow
	var updatedAt sql.NullTime
	var updatedBy, description, managerFeedback, assignedEmail sql.NullString
	var dueDate, originalDue, extendedDue sql.NullTime
	var assignedUserID uuid.NullUUID
	var managerRating sql.NullInt64

	err := s.Scan(&t.ID, &t.CreatedAt, &updatedAt, &t.CreatedBy, &updatedBy,
		&t.Title, &description, &t.Status, &t.Priority, &t.Type,
		&dueDate, &originalDue, &extendedDue,
		&assignedUserID, &t.CreatedByID, &t.ProgressPercentage,
		&managerRating, &managerFeedback, &assignedEmail)
	if err != nil {
		return nil, err
	}

	if updatedAt.Valid {
		v := updatedAt.Time
		t.UpdatedAt = &v
	}
	t.UpdatedBy = nullString(updatedBy)
	t.Description = nullString(description)
	if dueDate.Valid {
		v := dueDate.Time
		t.DueDate = &v
	}
	if originalDue.Valid {
		v := originalDue.Time
		t.OriginalDueDate = &v
	}
	if extendedDue.Valid {
		v := extendedDue.Time
		t.ExtendedDueDate = &v
	}
	if assignedUserID.Valid {
		v := assignedUserID.UUID
		t.AssignedUserID = &v
	}
	if managerRating.Valid {
		v := int(managerRating.Int64)
		t.ManagerRating = &v
	}
	t.ManagerFeedback = nullString(managerFeedback)
	t.AssignedUserEmail = nullString(assignedEmail)
	return &t, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
