package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Name       string     `json:"name" gorm:"not null"`
	Username   string     `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email      string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password   string     `json:"-" gorm:"not null"`
	Title      string     `json:"title"`
	Role       string     `json:"role" gorm:"size:20;not null"`
	IsAdmin    bool       `json:"isAdmin"`
	IsActive   bool       `json:"isActive"`
	IsVerified bool       `json:"isVerified"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Tasks []Task `json:"tasks,omitempty" gorm:"many2many:task_team;"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	return assignID(&u.ID)
}

// IsGlobalAdmin reports whether the user has platform-wide admin rights.
func (u *User) IsGlobalAdmin() bool {
	return u.IsAdmin || u.Role == RoleAdmin
}

// CanCreateTasks reports whether the role is one allowed to create tasks.
func (u *User) CanCreateTasks() bool {
	return u.Role == RoleAdmin || u.Role == RoleUser
}

type Token struct {
	ID        uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID    `json:"userId" gorm:"type:uuid;index;not null"`
	Purpose   TokenPurpose `json:"purpose" gorm:"size:32;index;not null"`
	TokenHash string       `json:"-" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time    `json:"expiresAt" gorm:"index;not null"`
	UsedAt    *time.Time   `json:"usedAt,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	return assignID(&t.ID)
}

// Usable reports whether the token is unexpired and not yet consumed.
func (t *Token) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

func assignID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	v, err := uuid.NewV4()
	if err != nil {
		return err
	}
	*id = v
	return nil
}
