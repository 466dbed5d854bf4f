package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/pkg/logger"
	"gorm.io/gorm"
)

type Resource string

const (
	ResourceTask  Resource = "task"
	ResourceGroup Resource = "group"
	ResourceUser  Resource = "user"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

const (
	DecisionAllowed  = "allowed"
	DecisionDenied   = "denied"
	DecisionNotFound = "not_found"
)

type AuthorizationRequest struct {
	User       *models.User `json:"-"`
	Resource   Resource     `json:"resource"`
	Action     Action       `json:"action"`
	ResourceID uuid.UUID    `json:"resource_id"`
	IPAddress  string       `json:"ip_address"`
}

type AuthorizationDecision struct {
	UserID     uuid.UUID `json:"user_id"`
	Resource   Resource  `json:"resource"`
	Action     Action    `json:"action"`
	ResourceID uuid.UUID `json:"resource_id"`
	Decision   string    `json:"decision"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

func (d *AuthorizationDecision) Allowed() bool {
	return d.Decision == DecisionAllowed
}

// AuthorizationService decides whether a user may act on a task, group or
// user record. Anything it does not explicitly allow is denied.
type AuthorizationService interface {
	IsAuthorized(ctx context.Context, request AuthorizationRequest) (*AuthorizationDecision, error)
	IsGroupAdmin(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
	IsGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
}

type AuthorizationServiceImpl struct {
	db *gorm.DB
}

func NewAuthorizationService(db *gorm.DB) *AuthorizationServiceImpl {
	return &AuthorizationServiceImpl{db: db}
}

func (s *AuthorizationServiceImpl) IsAuthorized(ctx context.Context, request AuthorizationRequest) (*AuthorizationDecision, error) {
	decision := &AuthorizationDecision{
		Resource:   request.Resource,
		Action:     request.Action,
		ResourceID: request.ResourceID,
		Decision:   DecisionDenied,
		Timestamp:  time.Now(),
	}

	if request.User == nil {
		decision.Reason = "Not authenticated"
		return decision, nil
	}
	decision.UserID = request.User.ID

	var err error
	switch request.Resource {
	case ResourceTask:
		err = s.evaluateTaskPolicy(ctx, request, decision)
	case ResourceGroup:
		err = s.evaluateGroupPolicy(ctx, request, decision)
	case ResourceUser:
		s.evaluateUserPolicy(request, decision)
	default:
		decision.Reason = fmt.Sprintf("No policy for resource %q", request.Resource)
	}
	if err != nil {
		return nil, err
	}

	s.logDecision(request, decision)
	return decision, nil
}

func (s *AuthorizationServiceImpl) evaluateTaskPolicy(ctx context.Context, request AuthorizationRequest, decision *AuthorizationDecision) error {
	if request.ResourceID == uuid.Nil {
		decision.Reason = "Task ID is required"
		return nil
	}

	var task models.Task
	err := s.db.WithContext(ctx).
		Select("id", "group_id").
		Where("id = ?", request.ResourceID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		decision.Decision = DecisionNotFound
		decision.Reason = "Task not found"
		return nil
	}
	if err != nil {
		return fmt.Errorf("load task for authorization: %w", err)
	}

	user := request.User
	if request.Action == ActionDelete && user.IsGlobalAdmin() {
		return allow(decision, "Global admin may delete any task")
	}

	if task.GroupID != nil {
		isAdmin, err := s.IsGroupAdmin(ctx, user.ID, *task.GroupID)
		if err != nil {
			return err
		}
		if isAdmin {
			return allow(decision, "Group admin")
		}
		if request.Action == ActionRead {
			if user.IsGlobalAdmin() {
				return allow(decision, "Global admin may read any task")
			}
			isMember, err := s.IsGroupMember(ctx, user.ID, *task.GroupID)
			if err != nil {
				return err
			}
			if isMember {
				return allow(decision, "Group member may read group tasks")
			}
		}
		decision.Reason = "Access denied. Only group admins can access group tasks."
		return nil
	}

	onTeam, err := s.isTeamMember(ctx, user.ID, task.ID)
	if err != nil {
		return err
	}
	if onTeam {
		return allow(decision, "Team member")
	}
	if request.Action == ActionRead && user.IsGlobalAdmin() {
		return allow(decision, "Global admin may read any task")
	}

	decision.Reason = "Access denied. You can only access your own tasks."
	return nil
}

func (s *AuthorizationServiceImpl) evaluateGroupPolicy(ctx context.Context, request AuthorizationRequest, decision *AuthorizationDecision) error {
	if request.ResourceID == uuid.Nil {
		decision.Reason = "Group ID is required"
		return nil
	}

	var group models.Group
	err := s.db.WithContext(ctx).Where("id = ?", request.ResourceID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		decision.Decision = DecisionNotFound
		decision.Reason = "Group not found"
		return nil
	}
	if err != nil {
		return fmt.Errorf("load group for authorization: %w", err)
	}

	user := request.User
	isAdmin, err := s.IsGroupAdmin(ctx, user.ID, group.ID)
	if err != nil {
		return err
	}
	if isAdmin {
		return allow(decision, "Group admin")
	}

	switch request.Action {
	case ActionRead:
		isMember, err := s.IsGroupMember(ctx, user.ID, group.ID)
		if err != nil {
			return err
		}
		if isMember || user.IsGlobalAdmin() {
			return allow(decision, "Group member")
		}
		decision.Reason = "You are not a member of this group"
	case ActionDelete:
		if user.IsGlobalAdmin() {
			return allow(decision, "Global admin may delete any group")
		}
		decision.Reason = "Only the group admin can delete this group"
	default:
		decision.Reason = "Only group admins can manage this group"
	}
	return nil
}

func (s *AuthorizationServiceImpl) evaluateUserPolicy(request AuthorizationRequest, decision *AuthorizationDecision) {
	user := request.User
	switch {
	case request.Action == ActionRead:
		allow(decision, "Authenticated users may view profiles")
	case user.IsGlobalAdmin():
		allow(decision, "Global admin")
	case request.ResourceID == user.ID && request.Action == ActionWrite:
		allow(decision, "User may edit own profile")
	default:
		decision.Reason = "Only admins can modify other users"
	}
}

// IsGroupAdmin is true for the group's creator and for members holding the
// Admin role.
func (s *AuthorizationServiceImpl) IsGroupAdmin(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ? AND admin_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check group admin: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND role = ?", groupID, userID, models.GroupRoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check group admin: %w", err)
	}
	return count > 0, nil
}

func (s *AuthorizationServiceImpl) IsGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check group membership: %w", err)
	}
	return count > 0, nil
}

func (s *AuthorizationServiceImpl) isTeamMember(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("task_team").
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check task team: %w", err)
	}
	return count > 0, nil
}

func (s *AuthorizationServiceImpl) logDecision(request AuthorizationRequest, decision *AuthorizationDecision) {
	if decision.Allowed() {
		logger.Debug().
			Str("user_id", decision.UserID.String()).
			Str("resource", string(decision.Resource)).
			Str("action", string(decision.Action)).
			Str("reason", decision.Reason).
			Msg("authorization allowed")
		return
	}
	logger.Warn().
		Str("user_id", decision.UserID.String()).
		Str("resource", string(decision.Resource)).
		Str("resource_id", decision.ResourceID.String()).
		Str("action", string(decision.Action)).
		Str("decision", decision.Decision).
		Str("reason", decision.Reason).
		Str("ip", request.IPAddress).
		Msg("authorization denied")
}

func allow(decision *AuthorizationDecision, reason string) error {
	decision.Decision = DecisionAllowed
	decision.Reason = reason
	return nil
}
