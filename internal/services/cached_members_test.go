package services

import (
	"context"
	"testing"
	"time"

	"github.com/jastrate/task-manager/internal/cache"
	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invalidationCounter struct{ calls int }

func (c *invalidationCounter) InvalidateDashboards(ctx context.Context) { c.calls++ }

func TestCachedGroupService_MembershipRefreshesDashboard(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", "")
	bob := testutil.CreateUser(t, db, "bob", "")
	group := testutil.CreateGroup(t, db, "Platform", alice)
	testutil.CreateTask(t, db, "Rotate certificates", &group.ID, alice)

	l1 := cache.NewMultiLevelCache(nil, cache.MultiLevelConfig{L1MaxEntries: 10, L1TTL: time.Minute})
	tasks := NewCachedTaskService(NewTaskService(db, NewAuthorizationService(db), NewNotificationService(db)), l1, time.Minute)
	groups := NewCachedGroupService(NewGroupService(db), tasks)

	before, err := tasks.DashboardStatistics(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 0, before.TotalTasks)

	_, created, err := groups.AddMember(ctx, group.ID, bob.ID, "")
	require.NoError(t, err)
	require.True(t, created)

	after, err := tasks.DashboardStatistics(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, after.TotalTasks)

	require.NoError(t, groups.DeleteGroup(ctx, group.ID))

	gone, err := tasks.DashboardStatistics(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 0, gone.TotalTasks)
}

func TestCachedGroupService_InvalidatesOnlyOnChange(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", "")
	bob := testutil.CreateUser(t, db, "bob", "")
	group := testutil.CreateGroup(t, db, "Platform", alice, bob)

	counter := &invalidationCounter{}
	groups := NewCachedGroupService(NewGroupService(db), counter)

	_, created, err := groups.AddMember(ctx, group.ID, bob.ID, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0, counter.calls)

	_, err = groups.SetMemberRole(ctx, group.ID, bob.ID, "Admin")
	require.NoError(t, err)
	assert.Equal(t, 1, counter.calls)

	require.NoError(t, groups.RemoveMember(ctx, group.ID, bob.ID))
	assert.Equal(t, 2, counter.calls)

	assert.Error(t, groups.RemoveMember(ctx, group.ID, bob.ID))
	assert.Equal(t, 2, counter.calls)
}

func TestCachedUserService_InvalidatesOnWrites(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	alice := testutil.CreateUser(t, db, "alice", "")

	counter := &invalidationCounter{}
	users := NewCachedUserService(NewUserService(db), counter)

	name := "Alice Liddell"
	_, err := users.UpdateProfile(ctx, alice, ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 1, counter.calls)

	blank := " "
	_, err = users.UpdateProfile(ctx, alice, ProfileUpdate{Name: &blank})
	assert.Error(t, err)
	assert.Equal(t, 1, counter.calls)

	_, err = users.SetActive(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, counter.calls)

	require.NoError(t, users.DeleteUser(ctx, admin, alice.ID))
	assert.Equal(t, 3, counter.calls)
}
