package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanyam/TaskManagement-sub002/models"
)

// GormStore is the production Store over a relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schema for all write-model entities.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskProgressHistory{},
		&models.DeadlineExtensionRequest{},
		&models.TaskHistory{},
		&models.TaskAssignment{},
	)
}

func (s *GormStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) TaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *GormStore) CreateTask(ctx context.Context, task *models.Task) error {
	return s.db.WithContext(ctx).Create(task).Error
}

func (s *GormStore) SaveTask(ctx context.Context, task *models.Task) error {
	return s.db.WithContext(ctx).Save(task).Error
}

func (s *GormStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id).Error
}

func (s *GormStore) ProgressEntry(ctx context.Context, taskID, entryID uuid.UUID) (*models.TaskProgressHistory, error) {
	var entry models.TaskProgressHistory
	err := s.db.WithContext(ctx).First(&entry, "id = ? AND task_id = ?", entryID, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *GormStore) LastAcceptedProgress(ctx context.Context, taskID uuid.UUID) (*models.TaskProgressHistory, error) {
	var entry models.TaskProgressHistory
	err := s.db.WithContext(ctx).
		Where("task_id = ? AND status = ?", taskID, models.ProgressAccepted).
		Order("created_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *GormStore) CreateProgressEntry(ctx context.Context, entry *models.TaskProgressHistory) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) SaveProgressEntry(ctx context.Context, entry *models.TaskProgressHistory) error {
	return s.db.WithContext(ctx).Save(entry).Error
}

func (s *GormStore) ExtensionRequest(ctx context.Context, taskID, requestID uuid.UUID) (*models.DeadlineExtensionRequest, error) {
	var req models.DeadlineExtensionRequest
	err := s.db.WithContext(ctx).First(&req, "id = ? AND task_id = ?", requestID, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *GormStore) CreateExtensionRequest(ctx context.Context, req *models.DeadlineExtensionRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

func (s *GormStore) SaveExtensionRequest(ctx context.Context, req *models.DeadlineExtensionRequest) error {
	return s.db.WithContext(ctx).Save(req).Error
}

func (s *GormStore) Assignments(ctx context.Context, taskID uuid.UUID) ([]models.TaskAssignment, error) {
	var assignments []models.TaskAssignment
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Find(&assignments).Error
	return assignments, err
}

func (s *GormStore) ReplaceAssignments(ctx context.Context, taskID uuid.UUID, assignments []models.TaskAssignment) error {
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&assignments).Error
}

func (s *GormStore) AppendHistory(ctx context.Context, entry *models.TaskHistory) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

func (s *GormStore) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("display_name").Find(&users).Error
	return users, err
}

func (s *GormStore) ManagedUserIDs(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	var direct []models.User
	if err := s.db.WithContext(ctx).Where("manager_id = ?", managerID).Find(&direct).Error; err != nil {
		return nil, err
	}
	for _, u := range direct {
		ids = append(ids, u.ID)
		nested, err := s.ManagedUserIDs(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, nested...)
	}
	return ids, nil
}
