package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Title     string     `json:"title" gorm:"not null"`
	Stage     Stage      `json:"stage" gorm:"size:20;index;not null"`
	Priority  Priority   `json:"priority" gorm:"size:20;not null"`
	Date      time.Time  `json:"date"`
	Assets    []string   `json:"assets" gorm:"serializer:json"`
	IsTrashed bool       `json:"isTrashed" gorm:"index"`
	GroupID   *uuid.UUID `json:"groupId,omitempty" gorm:"type:uuid;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Group      *Group     `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Team       []User     `json:"team" gorm:"many2many:task_team;"`
	SubTasks   []SubTask  `json:"subTasks" gorm:"foreignKey:TaskID"`
	Activities []Activity `json:"activities,omitempty" gorm:"foreignKey:TaskID"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	return assignID(&t.ID)
}

// TeamIDs returns the ids of the loaded team members.
func (t *Task) TeamIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Team))
	for _, u := range t.Team {
		ids = append(ids, u.ID)
	}
	return ids
}

// HasMember reports whether userID is on the loaded team.
func (t *Task) HasMember(userID uuid.UUID) bool {
	for _, u := range t.Team {
		if u.ID == userID {
			return true
		}
	}
	return false
}

type SubTask struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID  `json:"taskId" gorm:"type:uuid;index;not null"`
	Title     string     `json:"title" gorm:"not null"`
	Date      *time.Time `json:"date,omitempty"`
	Tag       string     `json:"tag"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (s *SubTask) BeforeCreate(tx *gorm.DB) error {
	return assignID(&s.ID)
}

type Activity struct {
	ID       uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID   uuid.UUID    `json:"taskId" gorm:"type:uuid;index;not null"`
	Type     ActivityType `json:"type" gorm:"size:20;not null"`
	Activity string       `json:"activity"`
	Date     time.Time    `json:"date"`
	ByID     *uuid.UUID   `json:"byId" gorm:"type:uuid;index"`
	By       *User        `json:"by,omitempty" gorm:"foreignKey:ByID;constraint:OnDelete:SET NULL"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	return assignID(&a.ID)
}

type Notice struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID `json:"taskId" gorm:"type:uuid;index;not null"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`

	Task       *Task             `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	Recipients []NoticeRecipient `json:"recipients,omitempty" gorm:"foreignKey:NoticeID"`
}

func (n *Notice) BeforeCreate(tx *gorm.DB) error {
	return assignID(&n.ID)
}

// NoticeRecipient is the per-user read marker for a notice. There is at most
// one row per (notice, user).
type NoticeRecipient struct {
	NoticeID  uuid.UUID  `json:"noticeId" gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID  `json:"userId" gorm:"primaryKey;type:uuid;index"`
	IsRead    bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
