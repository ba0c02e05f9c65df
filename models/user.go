package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	BaseEntity
	Email       string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	DisplayName string     `gorm:"size:255;not null" json:"display_name"`
	Password    string     `gorm:"size:255" json:"-"`
	Role        string     `gorm:"size:50;not null" json:"role"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	ManagerID   *uuid.UUID `gorm:"type:char(36);index" json:"manager_id,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func NewUser(email, displayName, role string) *User {
	return &User{
		BaseEntity:  newBaseEntity(),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		IsActive:    true,
	}
}

func (u *User) RecordLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
}

func (u *User) Deactivate() { u.IsActive = false }

func (u *User) Activate() { u.IsActive = true }
