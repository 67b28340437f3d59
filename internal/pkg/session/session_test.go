package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
	"github.com/wayfarer-labs/planner/internal/pkg/jwt"
	"github.com/wayfarer-labs/planner/internal/pkg/session"
	"github.com/wayfarer-labs/planner/internal/pkg/testutil"
)

func TestIssueAndRevoke(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@example.com")

	token, s, err := session.Issue(ctx, db, user.ID, " 10.0.0.1 ", "curl", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", s.IP)

	claims, err := jwt.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, claims.SessionID)

	active, err := session.IsActive(ctx, db, user.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, session.Revoke(ctx, db, user.ID, s.ID))
	active, err = session.IsActive(ctx, db, user.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, active)

	assert.ErrorIs(t, session.Revoke(ctx, db, user.ID, s.ID), gorm.ErrRecordNotFound)
}

func TestIsActiveRequiresSession(t *testing.T) {
	db := testutil.OpenDB(t)
	active, err := session.IsActive(context.Background(), db, "u", "")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestPurgeExpired(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "b@example.com")

	_, live, err := session.Issue(ctx, db, user.ID, "", "", time.Hour)
	require.NoError(t, err)
	_, old, err := session.Issue(ctx, db, user.ID, "", "", time.Hour)
	require.NoError(t, err)
	require.NoError(t, db.Model(old).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	n, err := session.PurgeExpired(ctx, db, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var ids []string
	require.NoError(t, db.Model(&models.UserSession{}).Pluck("id", &ids).Error)
	assert.Equal(t, []string{live.ID}, ids)
}
