package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Group struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"not null"`
	AdminID   uuid.UUID `json:"adminId" gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Admin   *User         `json:"admin,omitempty" gorm:"foreignKey:AdminID"`
	Members []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	return assignID(&g.ID)
}

type GroupMember struct {
	GroupID   uuid.UUID `json:"groupId" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID `json:"userId" gorm:"primaryKey;type:uuid;index"`
	Role      GroupRole `json:"role" gorm:"size:20;not null"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// All returns every table AutoMigrate must create, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&GroupMember{},
		&Task{},
		&SubTask{},
		&Activity{},
		&Notice{},
		&NoticeRecipient{},
		&Token{},
	}
}
