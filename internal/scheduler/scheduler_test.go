package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jastrate/task-manager/internal/models"
	"github.com/jastrate/task-manager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeTokens(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "alice", "")
	now := time.Now()
	used := now.Add(-time.Minute)

	tokens := []models.Token{
		{UserID: user.ID, Purpose: models.TokenPurposeRefresh, TokenHash: "live", ExpiresAt: now.Add(time.Hour)},
		{UserID: user.ID, Purpose: models.TokenPurposeRefresh, TokenHash: "expired", ExpiresAt: now.Add(-time.Hour)},
		{UserID: user.ID, Purpose: models.TokenPurposeVerifyEmail, TokenHash: "used", ExpiresAt: now.Add(time.Hour), UsedAt: &used},
	}
	require.NoError(t, db.Create(&tokens).Error)

	n, err := PurgeTokens(context.Background(), db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var left []models.Token
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "live", left[0].TokenHash)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(testutil.NewDB(t))
	assert.Error(t, s.Start("not a cron spec"))
}

func TestStartAndStop(t *testing.T) {
	s := New(testutil.NewDB(t))
	require.NoError(t, s.Start("@every 1h"))
	s.Stop()
}
