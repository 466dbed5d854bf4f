// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens an isolated in-memory sqlite store with every table migrated
// and foreign keys enforced. It is pinned to a single connection so the
// in-memory database survives.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.Must(uuid.NewV4()).String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Password is the plain-text password every fixture user carries.
const Password = "Secret#123"

var passwordHash []byte

// CreateUser inserts an active, verified user. role defaults to "User".
func CreateUser(t testing.TB, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	if passwordHash == nil {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		require.NoError(t, err)
		passwordHash = h
	}
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Name:       username,
		Username:   username,
		Email:      username + "@example.com",
		Password:   string(passwordHash),
		Title:      "Engineer",
		Role:       role,
		IsAdmin:    role == models.RoleAdmin,
		IsActive:   true,
		IsVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTask inserts a task owned by team, skipping the lifecycle rules.
func CreateTask(t testing.TB, db *gorm.DB, title string, groupID *uuid.UUID, team ...*models.User) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:    title,
		Stage:    models.StageTodo,
		Priority: models.PriorityNormal,
		GroupID:  groupID,
	}
	for _, u := range team {
		task.Team = append(task.Team, *u)
	}
	require.NoError(t, db.Omit("Team.*").Create(task).Error)
	return task
}

// CreateGroup inserts a group administered by admin with the given members.
func CreateGroup(t testing.TB, db *gorm.DB, name string, admin *models.User, members ...*models.User) *models.Group {
	t.Helper()

	group := &models.Group{Name: name, AdminID: admin.ID}
	require.NoError(t, db.Create(group).Error)
	require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, UserID: admin.ID, Role: models.GroupRoleAdmin}).Error)
	for _, m := range members {
		require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, UserID: m.ID, Role: models.GroupRoleMember}).Error)
	}
	return group
}
