package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit fields shared by every
// persisted entity.
type BaseEntity struct {
	ID        uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	CreatedBy string     `json:"created_by"`
	UpdatedBy *string    `json:"updated_by,omitempty"`
}

func newBaseEntity() BaseEntity {
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
}

func (b *BaseEntity) SetCreatedBy(createdBy string) {
	b.CreatedBy = createdBy
}

func (b *BaseEntity) SetUpdatedBy(updatedBy string) {
	now := time.Now().UTC()
	b.UpdatedBy = &updatedBy
	b.UpdatedAt = &now
}
