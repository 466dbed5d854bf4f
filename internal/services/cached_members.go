package services

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
)

// DashboardInvalidator drops cached dashboards. CachedTaskService is the
// usual implementation.
type DashboardInvalidator interface {
	InvalidateDashboards(ctx context.Context)
}

// CachedGroupService drops cached dashboards whenever membership changes,
// since group membership decides which tasks a dashboard counts.
type CachedGroupService struct {
	GroupService
	dashboards DashboardInvalidator
}

func NewCachedGroupService(groups GroupService, dashboards DashboardInvalidator) *CachedGroupService {
	return &CachedGroupService{GroupService: groups, dashboards: dashboards}
}

func (s *CachedGroupService) AddMember(ctx context.Context, groupID, userID uuid.UUID, role string) (*models.GroupMember, bool, error) {
	member, created, err := s.GroupService.AddMember(ctx, groupID, userID, role)
	if err == nil && created {
		s.dashboards.InvalidateDashboards(ctx)
	}
	return member, created, err
}

func (s *CachedGroupService) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	err := s.GroupService.RemoveMember(ctx, groupID, userID)
	if err == nil {
		s.dashboards.InvalidateDashboards(ctx)
	}
	return err
}

func (s *CachedGroupService) SetMemberRole(ctx context.Context, groupID, userID uuid.UUID, role string) (*models.GroupMember, error) {
	member, err := s.GroupService.SetMemberRole(ctx, groupID, userID, role)
	if err == nil {
		s.dashboards.InvalidateDashboards(ctx)
	}
	return member, err
}

func (s *CachedGroupService) DeleteGroup(ctx context.Context, groupID uuid.UUID) error {
	err := s.GroupService.DeleteGroup(ctx, groupID)
	if err == nil {
		s.dashboards.InvalidateDashboards(ctx)
	}
	return err
}

// CachedUserService drops cached dashboards when a user changes, as
// dashboards embed team names and the admin user list.
type CachedUserService struct {
	UserService
	dashboards DashboardInvalidator
}

func NewCachedUserService(users UserService, dashboards DashboardInvalidator) *CachedUserService {
	return &CachedUserService{UserService: users, dashboards: dashboards}
}

func (s *CachedUserService) UpdateProfile(ctx context.Context, actor *models.User, update ProfileUpdate) (*models.User, error) {
	user, err := s.UserService.UpdateProfile(ctx, actor, update)
	if err == nil {
		s.dashboards.InvalidateDashboards(ctx)
	}
	return user, err
}

func (s *CachedUserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.User, error) {
	user, err := s.UserService.SetActive(ctx, id, active)
	if err == nil {
		s.dashboards.InvalidateDashboards(ctx)
	}
	return user, err
}

func (s *CachedUserService) DeleteUser(ctx context.Context, actor *models.User, id uuid.UUID) error {
	err := s.UserService.DeleteUser(ctx, actor, id)
	if err == nil {
		s.dashboards.InvalidateDashboards(ctx)
	}
	return err
}
