// Package memstore is an in-memory store used by tests and local runs.
// It implements both the write-side storage.Store and the read-side
// queries.Reader over the same maps, so the full API can run without a
// database.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/queries"
	"github.com/hanyam/TaskManagement-sub002/storage"
)

type MemoryStore struct {
	mu          sync.RWMutex
	tasks       map[uuid.UUID]models.Task
	progress    map[uuid.UUID]models.TaskProgressHistory
	extensions  map[uuid.UUID]models.DeadlineExtensionRequest
	assignments map[uuid.UUID][]models.TaskAssignment
	history     []models.TaskHistory
	users       map[uuid.UUID]models.User
}

func New() *MemoryStore {
	return &MemoryStore{
		tasks:       make(map[uuid.UUID]models.Task),
		progress:    make(map[uuid.UUID]models.TaskProgressHistory),
		extensions:  make(map[uuid.UUID]models.DeadlineExtensionRequest),
		assignments: make(map[uuid.UUID][]models.TaskAssignment),
		users:       make(map[uuid.UUID]models.User),
	}
}

// Transact snapshots the maps, runs fn under the write lock, and throws
// the changes away if fn fails. Nested transactions join the outer one.
func (s *MemoryStore) Transact(ctx context.Context, fn func(tx storage.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshotState struct {
	tasks       map[uuid.UUID]models.Task
	progress    map[uuid.UUID]models.TaskProgressHistory
	extensions  map[uuid.UUID]models.DeadlineExtensionRequest
	assignments map[uuid.UUID][]models.TaskAssignment
	history     []models.TaskHistory
	users       map[uuid.UUID]models.User
}

func (s *MemoryStore) snapshot() snapshotState {
	snap := snapshotState{
		tasks:       make(map[uuid.UUID]models.Task, len(s.tasks)),
		progress:    make(map[uuid.UUID]models.TaskProgressHistory, len(s.progress)),
		extensions:  make(map[uuid.UUID]models.DeadlineExtensionRequest, len(s.extensions)),
		assignments: make(map[uuid.UUID][]models.TaskAssignment, len(s.assignments)),
		history:     append([]models.TaskHistory(nil), s.history...),
		users:       make(map[uuid.UUID]models.User, len(s.users)),
	}
	for k, v := range s.tasks {
		snap.tasks[k] = v
	}
	for k, v := range s.progress {
		snap.progress[k] = v
	}
	for k, v := range s.extensions {
		snap.extensions[k] = v
	}
	for k, v := range s.assignments {
		snap.assignments[k] = append([]models.TaskAssignment(nil), v...)
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap snapshotState) {
	s.tasks = snap.tasks
	s.progress = snap.progress
	s.extensions = snap.extensions
	s.assignments = snap.assignments
	s.history = snap.history
	s.users = snap.users
}

// memTx is the in-transaction view. The outer Transact already holds the
// write lock, so it calls the unlocked internals directly.
type memTx struct {
	s *MemoryStore
}

func (t *memTx) Transact(ctx context.Context, fn func(tx storage.Store) error) error {
	return fn(t)
}

func (t *memTx) TaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return t.s.taskByID(id)
}
func (t *memTx) CreateTask(ctx context.Context, task *models.Task) error {
	return t.s.putTask(task)
}
func (t *memTx) SaveTask(ctx context.Context, task *models.Task) error {
	return t.s.putTask(task)
}
func (t *memTx) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return t.s.deleteTask(id)
}
func (t *memTx) ProgressEntry(ctx context.Context, taskID, entryID uuid.UUID) (*models.TaskProgressHistory, error) {
	return t.s.progressEntry(taskID, entryID)
}
func (t *memTx) LastAcceptedProgress(ctx context.Context, taskID uuid.UUID) (*models.TaskProgressHistory, error) {
	return t.s.lastAcceptedProgress(taskID)
}
func (t *memTx) CreateProgressEntry(ctx context.Context, entry *models.TaskProgressHistory) error {
	return t.s.putProgress(entry)
}
func (t *memTx) SaveProgressEntry(ctx context.Context, entry *models.TaskProgressHistory) error {
	return t.s.putProgress(entry)
}
func (t *memTx) ExtensionRequest(ctx context.Context, taskID, requestID uuid.UUID) (*models.DeadlineExtensionRequest, error) {
	return t.s.extensionRequest(taskID, requestID)
}
func (t *memTx) CreateExtensionRequest(ctx context.Context, req *models.DeadlineExtensionRequest) error {
	return t.s.putExtension(req)
}
func (t *memTx) SaveExtensionRequest(ctx context.Context, req *models.DeadlineExtensionRequest) error {
	return t.s.putExtension(req)
}
func (t *memTx) Assignments(ctx context.Context, taskID uuid.UUID) ([]models.TaskAssignment, error) {
	return t.s.taskAssignments(taskID), nil
}
func (t *memTx) ReplaceAssignments(ctx context.Context, taskID uuid.UUID, assignments []models.TaskAssignment) error {
	t.s.assignments[taskID] = append([]models.TaskAssignment(nil), assignments...)
	return nil
}
func (t *memTx) AppendHistory(ctx context.Context, entry *models.TaskHistory) error {
	t.s.history = append(t.s.history, *entry)
	return nil
}
func (t *memTx) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return t.s.userByID(id)
}
func (t *memTx) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return t.s.userByEmail(email)
}
func (t *memTx) CreateUser(ctx context.Context, user *models.User) error {
	return t.s.putUser(user)
}
func (t *memTx) SaveUser(ctx context.Context, user *models.User) error {
	return t.s.putUser(user)
}
func (t *memTx) Users(ctx context.Context) ([]models.User, error) {
	return t.s.allUsers(), nil
}
func (t *memTx) ManagedUserIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	return t.s.managedUserIDs(managerID), nil
}

// --- storage.Store, direct (auto-commit) access ---

func (s *MemoryStore) TaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskByID(id)
}

func (s *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putTask(task)
}

func (s *MemoryStore) SaveTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putTask(task)
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteTask(id)
}

func (s *MemoryStore) ProgressEntry(ctx context.Context, taskID, entryID uuid.UUID) (*models.TaskProgressHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressEntry(taskID, entryID)
}

func (s *MemoryStore) LastAcceptedProgress(ctx context.Context, taskID uuid.UUID) (*models.TaskProgressHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAcceptedProgress(taskID)
}

func (s *MemoryStore) CreateProgressEntry(ctx context.Context, entry *models.TaskProgressHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putProgress(entry)
}

func (s *MemoryStore) SaveProgressEntry(ctx context.Context, entry *models.TaskProgressHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putProgress(entry)
}

func (s *MemoryStore) ExtensionRequest(ctx context.Context, taskID, requestID uuid.UUID) (*models.DeadlineExtensionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extensionRequest(taskID, requestID)
}

func (s *MemoryStore) CreateExtensionRequest(ctx context.Context, req *models.DeadlineExtensionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putExtension(req)
}

func (s *MemoryStore) SaveExtensionRequest(ctx context.Context, req *models.DeadlineExtensionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putExtension(req)
}

func (s *MemoryStore) Assignments(ctx context.Context, taskID uuid.UUID) ([]models.TaskAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskAssignments(taskID), nil
}

func (s *MemoryStore) ReplaceAssignments(ctx context.Context, taskID uuid.UUID, assignments []models.TaskAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[taskID] = append([]models.TaskAssignment(nil), assignments...)
	return nil
}

func (s *MemoryStore) AppendHistory(ctx context.Context, entry *models.TaskHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, *entry)
	return nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userByID(id)
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userByEmail(email)
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putUser(user)
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putUser(user)
}

func (s *MemoryStore) Users(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allUsers(), nil
}

func (s *MemoryStore) ManagedUserIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.managedUserIDs(managerID), nil
}

// --- unlocked internals ---

func (s *MemoryStore) taskByID(id uuid.UUID) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) putTask(task *models.Task) error {
	s.tasks[task.ID] = *task
	return nil
}

func (s *MemoryStore) deleteTask(id uuid.UUID) error {
	delete(s.tasks, id)
	delete(s.assignments, id)
	for k, p := range s.progress {
		if p.TaskID == id {
			delete(s.progress, k)
		}
	}
	for k, e := range s.extensions {
		if e.TaskID == id {
			delete(s.extensions, k)
		}
	}
	return nil
}

func (s *MemoryStore) progressEntry(taskID, entryID uuid.UUID) (*models.TaskProgressHistory, error) {
	p, ok := s.progress[entryID]
	if !ok || p.TaskID != taskID {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) lastAcceptedProgress(taskID uuid.UUID) (*models.TaskProgressHistory, error) {
	var latest *models.TaskProgressHistory
	for _, p := range s.progress {
		if p.TaskID != taskID || p.Status != models.ProgressAccepted {
			continue
		}
		p := p
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = &p
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

func (s *MemoryStore) putProgress(entry *models.TaskProgressHistory) error {
	s.progress[entry.ID] = *entry
	return nil
}

func (s *MemoryStore) extensionRequest(taskID, requestID uuid.UUID) (*models.DeadlineExtensionRequest, error) {
	e, ok := s.extensions[requestID]
	if !ok || e.TaskID != taskID {
		return nil, storage.ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) putExtension(req *models.DeadlineExtensionRequest) error {
	s.extensions[req.ID] = *req
	return nil
}

func (s *MemoryStore) taskAssignments(taskID uuid.UUID) []models.TaskAssignment {
	return append([]models.TaskAssignment(nil), s.assignments[taskID]...)
}

func (s *MemoryStore) userByID(id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) userByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemoryStore) putUser(user *models.User) error {
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) allUsers() []models.User {
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].DisplayName < users[j].DisplayName })
	return users
}

func (s *MemoryStore) managedUserIDs(managerID uuid.UUID) []uuid.UUID {
	var all []uuid.UUID
	seen := map[uuid.UUID]bool{managerID: true}
	frontier := []uuid.UUID{managerID}

	for len(frontier) > 0 {
		var next []uuid.UUID
		for _, u := range s.users {
			if u.ManagerID == nil || seen[u.ID] {
				continue
			}
			for _, m := range frontier {
				if *u.ManagerID == m {
					seen[u.ID] = true
					all = append(all, u.ID)
					next = append(next, u.ID)
					break
				}
			}
		}
		frontier = next
	}
	return all
}

// --- queries.Reader ---

func (s *MemoryStore) TaskWithUser(ctx context.Context, id uuid.UUID) (*queries.TaskRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, queries.ErrNotFound
	}
	row := s.taskRow(t)
	return &row, nil
}

func (s *MemoryStore) TaskExists(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tasks[id]
	return ok, nil
}

func (s *MemoryStore) IsUserInAssignmentChain(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.assignments[taskID] {
		if a.UserID == userID {
			return true, nil
		}
	}

	var assignees []uuid.UUID
	if t, ok := s.tasks[taskID]; ok && t.AssignedUserID != nil {
		assignees = append(assignees, *t.AssignedUserID)
	}
	for _, a := range s.assignments[taskID] {
		assignees = append(assignees, a.UserID)
	}

	for _, assignee := range assignees {
		current := assignee
		for depth := 0; depth < 32; depth++ {
			u, ok := s.users[current]
			if !ok || u.ManagerID == nil {
				break
			}
			if *u.ManagerID == userID {
				return true, nil
			}
			current = *u.ManagerID
		}
	}
	return false, nil
}

func (s *MemoryStore) Tasks(ctx context.Context, f queries.TaskFilter) ([]queries.TaskRow, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageTasks(f, nil), int64(len(s.filterTasks(f, nil))), nil
}

func (s *MemoryStore) AssignedTasks(ctx context.Context, userID uuid.UUID, f queries.TaskFilter) ([]queries.TaskRow, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assigned := func(t models.Task) bool {
		if t.AssignedUserID != nil && *t.AssignedUserID == userID {
			return true
		}
		for _, a := range s.assignments[t.ID] {
			if a.UserID == userID {
				return true
			}
		}
		return false
	}
	return s.pageTasks(f, assigned), int64(len(s.filterTasks(f, assigned))), nil
}

func (s *MemoryStore) ReminderCandidates(ctx context.Context, userID uuid.UUID) ([]queries.TaskRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visible := func(t models.Task) bool {
		if t.Status.IsTerminal() {
			return false
		}
		if t.CreatedByID == userID {
			return true
		}
		return t.AssignedUserID != nil && *t.AssignedUserID == userID
	}
	rows := s.pageTasks(queries.TaskFilter{}, visible)
	return rows, nil
}

func (s *MemoryStore) filterTasks(f queries.TaskFilter, extra func(models.Task) bool) []models.Task {
	var matched []models.Task
	for _, t := range s.tasks {
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.AssignedUserID != nil && (t.AssignedUserID == nil || *t.AssignedUserID != *f.AssignedUserID) {
			continue
		}
		if f.CreatedByID != nil && t.CreatedByID != *f.CreatedByID {
			continue
		}
		if f.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueAfter)) {
			continue
		}
		if f.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*f.DueBefore)) {
			continue
		}
		if extra != nil && !extra(t) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return matched
}

func (s *MemoryStore) pageTasks(f queries.TaskFilter, extra func(models.Task) bool) []queries.TaskRow {
	matched := s.filterTasks(f, extra)
	if f.Limit > 0 {
		start := f.Offset
		if start > len(matched) {
			start = len(matched)
		}
		end := start + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	rows := make([]queries.TaskRow, 0, len(matched))
	for _, t := range matched {
		rows = append(rows, s.taskRow(t))
	}
	return rows
}

func (s *MemoryStore) taskRow(t models.Task) queries.TaskRow {
	row := queries.TaskRow{Task: t}
	if t.AssignedUserID != nil {
		if u, ok := s.users[*t.AssignedUserID]; ok {
			email := u.Email
			row.AssignedUserEmail = &email
		}
	}
	return row
}

func (s *MemoryStore) DashboardStats(ctx context.Context, userID uuid.UUID, now time.Time) (dto.DashboardStatsDto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nearDue := now.Add(72 * time.Hour)
	var stats dto.DashboardStatsDto
	for _, t := range s.tasks {
		mine := t.CreatedByID == userID || (t.AssignedUserID != nil && *t.AssignedUserID == userID)
		if !mine {
			continue
		}
		if t.CreatedByID == userID {
			stats.TasksCreatedByUser++
		}
		if t.Status == models.StatusCompleted {
			stats.TasksCompleted++
		}
		if t.DueDate != nil && !t.Status.IsTerminal() {
			if t.DueDate.Before(now) {
				stats.TasksDelayed++
			} else if !t.DueDate.After(nearDue) {
				stats.TasksNearDueDate++
			}
		}
		switch t.Status {
		case models.StatusAssigned, models.StatusAccepted:
			stats.TasksInProgress++
		case models.StatusUnderReview:
			stats.TasksUnderReview++
		case models.StatusPendingManagerReview:
			stats.TasksPendingAcceptance++
		}
	}
	return stats, nil
}

func (s *MemoryStore) ExtensionRequests(ctx context.Context, f queries.ExtensionFilter) ([]queries.ExtensionRow, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.DeadlineExtensionRequest
	for _, e := range s.extensions {
		if f.TaskID != nil && e.TaskID != *f.TaskID {
			continue
		}
		if f.RequestedByID != nil && e.RequestedByID != *f.RequestedByID {
			continue
		}
		if f.Status != nil && e.Status != *f.Status {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if f.Limit > 0 {
		start := f.Offset
		if start > len(matched) {
			start = len(matched)
		}
		end := start + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}

	rows := make([]queries.ExtensionRow, 0, len(matched))
	for _, e := range matched {
		row := queries.ExtensionRow{DeadlineExtensionRequest: e}
		if t, ok := s.tasks[e.TaskID]; ok {
			row.TaskTitle = t.Title
		}
		if u, ok := s.users[e.RequestedByID]; ok {
			email := u.Email
			row.RequestedByEmail = &email
		}
		if e.ReviewedByID != nil {
			if u, ok := s.users[*e.ReviewedByID]; ok {
				email := u.Email
				row.ReviewedByEmail = &email
			}
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

func (s *MemoryStore) ProgressHistory(ctx context.Context, taskID uuid.UUID) ([]queries.ProgressRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.TaskProgressHistory
	for _, p := range s.progress {
		if p.TaskID == taskID {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	rows := make([]queries.ProgressRow, 0, len(matched))
	for _, p := range matched {
		row := queries.ProgressRow{TaskProgressHistory: p}
		if u, ok := s.users[p.UpdatedByID]; ok {
			email := u.Email
			row.UpdatedByEmail = &email
		}
		if p.AcceptedByID != nil {
			if u, ok := s.users[*p.AcceptedByID]; ok {
				email := u.Email
				row.AcceptedByEmail = &email
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *MemoryStore) HistoryForTask(ctx context.Context, taskID uuid.UUID) ([]models.TaskHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.TaskHistory
	for _, h := range s.history {
		if h.TaskID == taskID {
			matched = append(matched, h)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return matched, nil
}

func (s *MemoryStore) SearchManagedUsers(ctx context.Context, managerID uuid.UUID, term string) ([]dto.UserSearchResultDto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToLower(term)
	var results []dto.UserSearchResultDto
	for _, id := range s.managedUserIDs(managerID) {
		u, ok := s.users[id]
		if !ok || !u.IsActive {
			continue
		}
		if !strings.Contains(strings.ToLower(u.DisplayName), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) {
			continue
		}
		results = append(results, dto.UserSearchResultDto{
			ID:          u.ID,
			DisplayName: u.DisplayName,
			Email:       u.Email,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DisplayName < results[j].DisplayName })
	return results, nil
}
