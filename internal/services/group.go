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

type GroupService interface {
	CreateGroup(ctx context.Context, actor *models.User, name string, memberIDs []uuid.UUID) (*models.Group, error)
	GetUserGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
	GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID, role string) (*models.GroupMember, bool, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	SetMemberRole(ctx context.Context, groupID, userID uuid.UUID, role string) (*models.GroupMember, error)
	DeleteGroup(ctx context.Context, groupID uuid.UUID) error
}

type GroupServiceImpl struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupServiceImpl {
	return &GroupServiceImpl{db: db}
}

// CreateGroup makes actor the group admin and adds memberIDs as members.
func (s *GroupServiceImpl) CreateGroup(ctx context.Context, actor *models.User, name string, memberIDs []uuid.UUID) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, response.NewBadRequest("Group name is required")
	}

	ids := uniqueIDs(memberIDs, actor.ID)
	group := &models.Group{Name: name, AdminID: actor.ID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := loadUsers(tx, ids)
		if err != nil {
			return err
		}

		if err := tx.Create(group).Error; err != nil {
			return err
		}

		members := []models.GroupMember{{GroupID: group.ID, UserID: actor.ID, Role: models.GroupRoleAdmin}}
		for _, u := range users {
			members = append(members, models.GroupMember{GroupID: group.ID, UserID: u.ID, Role: models.GroupRoleMember})
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("group_id", group.ID.String()).Str("admin_id", actor.ID.String()).Int("members", len(ids)+1).Msg("group created")
	return s.getGroup(ctx, group.ID)
}

func (s *GroupServiceImpl) getGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).
		Preload("Admin").
		Preload("Members.User").
		Where("id = ?", id).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.NewNotFound("Group not found")
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *GroupServiceImpl) GetUserGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	groups := []models.Group{}
	err := s.db.WithContext(ctx).
		Preload("Admin").
		Preload("Members.User").
		Where("id IN (?)", s.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&groups).Error
	return groups, err
}

func (s *GroupServiceImpl) GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	members := []models.GroupMember{}
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

// AddMember reports added=false when the user already belongs to the group.
func (s *GroupServiceImpl) AddMember(ctx context.Context, groupID, userID uuid.UUID, role string) (*models.GroupMember, bool, error) {
	groupRole, ok := models.ParseGroupRole(role)
	if !ok {
		return nil, false, response.NewBadRequest("Role must be Admin or Member")
	}
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, false, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, response.NewNotFound("User not found")
	}
	if err != nil {
		return nil, false, err
	}

	var existing models.GroupMember
	err = s.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&existing).Error
	if err == nil {
		existing.User = &user
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	member := &models.GroupMember{GroupID: groupID, UserID: userID, Role: groupRole}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, false, err
	}
	member.User = &user
	return member, true, nil
}

func (s *GroupServiceImpl) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.AdminID == userID {
		return response.NewBadRequest("The group admin cannot be removed from the group")
	}

	result := s.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("User is not a member of this group")
	}
	return nil
}

func (s *GroupServiceImpl) SetMemberRole(ctx context.Context, groupID, userID uuid.UUID, role string) (*models.GroupMember, error) {
	groupRole, ok := models.ParseGroupRole(role)
	if !ok || strings.TrimSpace(role) == "" {
		return nil, response.NewBadRequest("Role must be Admin or Member")
	}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.AdminID == userID && groupRole != models.GroupRoleAdmin {
		return nil, response.NewBadRequest("The group creator must remain an admin")
	}

	result := s.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", groupRole)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, response.NewNotFound("User is not a member of this group")
	}

	var member models.GroupMember
	err = s.db.WithContext(ctx).Preload("User").Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	return &member, err
}

// DeleteGroup removes the group and its memberships. Tasks that belonged to
// the group are kept and fall back to team-based access.
func (s *GroupServiceImpl) DeleteGroup(ctx context.Context, groupID uuid.UUID) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("group_id = ?", groupID).Update("group_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", groupID).Error
	})
}

// uniqueIDs drops duplicates, nil ids and any id equal to skip.
func uniqueIDs(ids []uuid.UUID, skip uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{uuid.Nil: true, skip: true}
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// loadUsers fetches every id or fails with InvalidInput naming none of them.
func loadUsers(db *gorm.DB, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, response.NewBadRequest("One or more users do not exist")
	}
	return users, nil
}
