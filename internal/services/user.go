package services

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/pkg/logger"
	"github.com/jastrate/task-manager/pkg/response"
	"gorm.io/gorm"
)

// UserSummary is the public projection of a user used in lists.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Title    string    `json:"title"`
	Role     string    `json:"role"`
	IsActive bool      `json:"isActive"`
}

type ProfileUpdate struct {
	ID    *uuid.UUID `json:"id"`
	Name  *string    `json:"name"`
	Title *string    `json:"title"`
	Role  *string    `json:"role"`
}

type UserService interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	GetTeamList(ctx context.Context, search string) ([]UserSummary, error)
	SearchUsers(ctx context.Context, query string) ([]UserSummary, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, actor *models.User, update ProfileUpdate) (*models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type UserServiceImpl struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserServiceImpl {
	return &UserServiceImpl{db: db}
}

func (s *UserServiceImpl) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (s *UserServiceImpl) summaries(ctx context.Context, query string, limit int) ([]UserSummary, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true)
	if query = strings.TrimSpace(query); query != "" {
		pattern := likePattern(query)
		q = q.Where(
			"LOWER(name) LIKE ? ESCAPE '!' OR LOWER(username) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!' OR LOWER(title) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern, pattern,
		)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	summaries := []UserSummary{}
	err := q.Order("name ASC").Find(&summaries).Error
	return summaries, err
}

// GetTeamList lists active users, optionally filtered by a search string.
func (s *UserServiceImpl) GetTeamList(ctx context.Context, search string) ([]UserSummary, error) {
	return s.summaries(ctx, search, 0)
}

// SearchUsers returns at most ten active users matching query.
func (s *UserServiceImpl) SearchUsers(ctx context.Context, query string) ([]UserSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, response.NewBadRequest("Search query is required")
	}
	return s.summaries(ctx, query, 10)
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the actor's own profile. Global admins may target
// another user through update.ID and are the only ones allowed to change a
// role.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, actor *models.User, update ProfileUpdate) (*models.User, error) {
	targetID := actor.ID
	if update.ID != nil && *update.ID != uuid.Nil && *update.ID != actor.ID {
		if !actor.IsGlobalAdmin() {
			return nil, response.NewForbidden("Only admins can update other users")
		}
		targetID = *update.ID
	}

	user, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, response.NewBadRequest("Name cannot be empty")
		}
		changes["name"] = name
	}
	if update.Title != nil {
		changes["title"] = strings.TrimSpace(*update.Title)
	}
	if update.Role != nil {
		if !actor.IsGlobalAdmin() {
			return nil, response.NewForbidden("Only admins can change roles")
		}
		role := strings.TrimSpace(*update.Role)
		if role != models.RoleAdmin && role != models.RoleUser {
			return nil, response.NewBadRequest("Role must be Admin or User")
		}
		changes["role"] = role
		changes["is_admin"] = role == models.RoleAdmin
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return s.GetUser(ctx, targetID)
}

func (s *UserServiceImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("is_active", active).Error; err != nil {
			return err
		}
		if active {
			return nil
		}
		return tx.Where("user_id = ? AND purpose = ?", id, models.TokenPurposeRefresh).Delete(&models.Token{}).Error
	})
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	logger.Info().Str("user_id", id.String()).Bool("active", active).Msg("user activation changed")
	return user, nil
}

// DeleteUser removes the account with its memberships, read markers and
// tokens. Groups the user administers are deleted and their tasks detached.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if actor.ID == id {
		return response.NewBadRequest("You cannot delete your own account")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []uuid.UUID
		if err := tx.Model(&models.Group{}).Where("admin_id = ?", id).Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) > 0 {
			if err := tx.Model(&models.Task{}).Where("group_id IN ?", owned).Update("group_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id IN ?", owned).Delete(&models.GroupMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", owned).Delete(&models.Group{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Activity{}).Where("by_id = ?", id).Update("by_id", nil).Error; err != nil {
			return err
		}
		for _, table := range []string{"task_team", "group_members", "notice_recipients", "tokens"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	logger.Info().Str("user_id", id.String()).Str("actor_id", actor.ID.String()).Msg("user deleted")
	return nil
}

// likePattern builds a case-insensitive containment pattern using '!' as
// the escape character.
func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(q)
	return "%" + q + "%"
}
