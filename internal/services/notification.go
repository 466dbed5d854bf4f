package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NoticeView is a notice as shown to one recipient.
type NoticeView struct {
	ID        uuid.UUID  `json:"id"`
	Text      string     `json:"text"`
	TaskID    uuid.UUID  `json:"taskId"`
	TaskTitle string     `json:"taskTitle"`
	IsRead    bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type NotificationService interface {
	// FanOut records one notice for task and an unread marker for every
	// member of team. It runs on tx so callers can make it part of a wider
	// transaction.
	FanOut(tx *gorm.DB, task *models.Task, team []models.User) (*models.Notice, error)
	GetUnread(ctx context.Context, userID uuid.UUID) ([]NoticeView, error)
	MarkRead(ctx context.Context, userID, noticeID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type NotificationServiceImpl struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNotificationService(db *gorm.DB) *NotificationServiceImpl {
	return &NotificationServiceImpl{db: db, now: time.Now}
}

// NoticeText renders the assignment message for a team of teamSize people.
func NoticeText(task *models.Task, teamSize int) string {
	var b strings.Builder
	b.WriteString("New task has been assigned to you")
	if teamSize > 1 {
		fmt.Fprintf(&b, " and %d others", teamSize-1)
	}
	fmt.Fprintf(&b, ". The task priority is set to %s priority, so check and act accordingly. The task date is %s. Thank you!!!",
		task.Priority, task.Date.Format("Mon Jan 02 2006"))
	return b.String()
}

func (s *NotificationServiceImpl) FanOut(tx *gorm.DB, task *models.Task, team []models.User) (*models.Notice, error) {
	notice := &models.Notice{
		TaskID: task.ID,
		Text:   NoticeText(task, len(team)),
	}
	if err := tx.Create(notice).Error; err != nil {
		return nil, fmt.Errorf("create notice: %w", err)
	}

	if len(team) == 0 {
		return notice, nil
	}

	recipients := make([]models.NoticeRecipient, 0, len(team))
	seen := make(map[uuid.UUID]bool, len(team))
	for _, member := range team {
		if seen[member.ID] {
			continue
		}
		seen[member.ID] = true
		recipients = append(recipients, models.NoticeRecipient{
			NoticeID: notice.ID,
			UserID:   member.ID,
		})
	}
	if err := tx.Create(&recipients).Error; err != nil {
		return nil, fmt.Errorf("create notice recipients: %w", err)
	}
	notice.Recipients = recipients
	return notice, nil
}

func (s *NotificationServiceImpl) GetUnread(ctx context.Context, userID uuid.UUID) ([]NoticeView, error) {
	views := []NoticeView{}
	err := s.db.WithContext(ctx).
		Table("notices").
		Select("notices.id, notices.text, notices.task_id, tasks.title AS task_title, notice_recipients.is_read, notice_recipients.read_at, notices.created_at").
		Joins("JOIN notice_recipients ON notice_recipients.notice_id = notices.id").
		Joins("LEFT JOIN tasks ON tasks.id = notices.task_id").
		Where("notice_recipients.user_id = ? AND notice_recipients.is_read = ?", userID, false).
		Order("notices.created_at DESC").
		Scan(&views).Error
	return views, err
}

// MarkRead is idempotent: it upserts the single (notice, user) marker.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID, noticeID uuid.UUID) error {
	var notice models.Notice
	err := s.db.WithContext(ctx).Select("id").Where("id = ?", noticeID).First(&notice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound("Notification not found")
	}
	if err != nil {
		return err
	}

	now := s.now()
	marker := models.NoticeRecipient{
		NoticeID: noticeID,
		UserID:   userID,
		IsRead:   true,
		ReadAt:   &now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "notice_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_read": true, "read_at": now}),
	}).Create(&marker).Error
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.NoticeRecipient{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": s.now()})
	return result.RowsAffected, result.Error
}
