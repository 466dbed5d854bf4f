package services

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/internal/testutil"
	"github.com/jastrate/task-manager/pkg/response"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type UserServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *UserServiceImpl
	ctx     context.Context

	admin *models.User
	alice *models.User
	bob   *models.User
}

func (s *UserServiceTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.service = NewUserService(s.db)
	s.ctx = context.Background()
	s.admin = testutil.CreateUser(s.T(), s.db, "admin", models.RoleAdmin)
	s.alice = testutil.CreateUser(s.T(), s.db, "alice", "")
	s.bob = testutil.CreateUser(s.T(), s.db, "bob", "")
}

func ptr[T any](v T) *T { return &v }

func (s *UserServiceTestSuite) TestListAndSearch() {
	users, err := s.service.GetUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 3)

	s.Require().NoError(s.db.Model(s.bob).Update("is_active", false).Error)
	team, err := s.service.GetTeamList(s.ctx, "")
	s.Require().NoError(err)
	s.Len(team, 2)

	found, err := s.service.SearchUsers(s.ctx, "ALI")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(s.alice.ID, found[0].ID)

	found, err = s.service.SearchUsers(s.ctx, "example.com")
	s.Require().NoError(err)
	s.Len(found, 2)

	_, err = s.service.SearchUsers(s.ctx, "")
	assertKind(s.T(), err, response.KindInvalidInput)
}

func (s *UserServiceTestSuite) TestGetUser() {
	got, err := s.service.GetUser(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", got.Username)

	_, err = s.service.GetUser(s.ctx, uuid.Must(uuid.NewV4()))
	assertKind(s.T(), err, response.KindNotFound)
}

func (s *UserServiceTestSuite) TestUpdateProfile() {
	got, err := s.service.UpdateProfile(s.ctx, s.alice, ProfileUpdate{Name: ptr("Alice A."), Title: ptr("Lead")})
	s.Require().NoError(err)
	s.Equal("Alice A.", got.Name)
	s.Equal("Lead", got.Title)

	_, err = s.service.UpdateProfile(s.ctx, s.alice, ProfileUpdate{Role: ptr(models.RoleAdmin)})
	assertKind(s.T(), err, response.KindForbidden)

	_, err = s.service.UpdateProfile(s.ctx, s.alice, ProfileUpdate{ID: &s.bob.ID, Name: ptr("Hacked")})
	assertKind(s.T(), err, response.KindForbidden)

	_, err = s.service.UpdateProfile(s.ctx, s.alice, ProfileUpdate{Name: ptr(" ")})
	assertKind(s.T(), err, response.KindInvalidInput)

	got, err = s.service.UpdateProfile(s.ctx, s.admin, ProfileUpdate{ID: &s.bob.ID, Role: ptr(models.RoleAdmin)})
	s.Require().NoError(err)
	s.Equal(s.bob.ID, got.ID)
	s.Equal(models.RoleAdmin, got.Role)
	s.True(got.IsAdmin)

	_, err = s.service.UpdateProfile(s.ctx, s.admin, ProfileUpdate{ID: &s.bob.ID, Role: ptr("Root")})
	assertKind(s.T(), err, response.KindInvalidInput)
}

func (s *UserServiceTestSuite) TestSetActive_RevokesRefreshTokens() {
	s.Require().NoError(s.db.Create(&models.Token{UserID: s.alice.ID, Purpose: models.TokenPurposeRefresh, TokenHash: "h1"}).Error)

	got, err := s.service.SetActive(s.ctx, s.alice.ID, false)
	s.Require().NoError(err)
	s.False(got.IsActive)

	var n int64
	s.Require().NoError(s.db.Model(&models.Token{}).Where("user_id = ?", s.alice.ID).Count(&n).Error)
	s.Zero(n)

	got, err = s.service.SetActive(s.ctx, s.alice.ID, true)
	s.Require().NoError(err)
	s.True(got.IsActive)

	_, err = s.service.SetActive(s.ctx, uuid.Must(uuid.NewV4()), true)
	assertKind(s.T(), err, response.KindNotFound)
}

func (s *UserServiceTestSuite) TestDeleteUser_Cascades() {
	owned := testutil.CreateGroup(s.T(), s.db, "Alice's", s.alice, s.bob)
	other := testutil.CreateGroup(s.T(), s.db, "Bob's", s.bob, s.alice)
	groupTask := testutil.CreateTask(s.T(), s.db, "Owned group task", &owned.ID, s.bob)
	teamTask := testutil.CreateTask(s.T(), s.db, "Shared", nil, s.alice, s.bob)
	s.Require().NoError(s.db.Create(&models.Token{UserID: s.alice.ID, Purpose: models.TokenPurposeRefresh, TokenHash: "h1"}).Error)

	assertKind(s.T(), s.service.DeleteUser(s.ctx, s.admin, s.admin.ID), response.KindInvalidInput)
	s.Require().NoError(s.service.DeleteUser(s.ctx, s.admin, s.alice.ID))

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		s.Require().NoError(s.db.Model(model).Where(query, args...).Count(&n).Error)
		return n
	}
	s.Zero(count(&models.User{}, "id = ?", s.alice.ID))
	s.Zero(count(&models.Group{}, "id = ?", owned.ID))
	s.Equal(int64(1), count(&models.Group{}, "id = ?", other.ID))
	s.Zero(count(&models.GroupMember{}, "user_id = ?", s.alice.ID))
	s.Zero(count(&models.GroupMember{}, "group_id = ?", owned.ID))
	s.Zero(count(&models.Token{}, "user_id = ?", s.alice.ID))
	s.Equal(int64(1), count(&models.Task{}, "id = ? AND group_id IS NULL", groupTask.ID))

	var team []uuid.UUID
	s.Require().NoError(s.db.Table("task_team").Where("task_id = ?", teamTask.ID).Pluck("user_id", &team).Error)
	s.Equal([]uuid.UUID{s.bob.ID}, team)

	assertKind(s.T(), s.service.DeleteUser(s.ctx, s.admin, s.alice.ID), response.KindNotFound)
}

func (s *UserServiceTestSuite) TestDeleteUser_DetachesActivities() {
	tasks := NewTaskService(s.db, NewAuthorizationService(s.db), NewNotificationService(s.db))
	task, err := tasks.CreateTask(s.ctx, s.alice, CreateTaskInput{Title: "Audit logs", Team: []uuid.UUID{s.alice.ID, s.bob.ID}})
	s.Require().NoError(err)
	_, err = tasks.PostActivity(s.ctx, s.alice, task.ID, "Started", "on it")
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteUser(s.ctx, s.admin, s.alice.ID))

	var activities []models.Activity
	s.Require().NoError(s.db.Where("task_id = ?", task.ID).Find(&activities).Error)
	s.Len(activities, 2)
	for _, a := range activities {
		s.Nil(a.ByID)
	}

	got, err := tasks.GetTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{s.bob.ID}, got.TeamIDs())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
