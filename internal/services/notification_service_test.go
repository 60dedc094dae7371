package services_test

import (
	"context"
	"testing"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submitOne pushes one log through submit so both managers hold one unread
// notification each.
func submitOne(t *testing.T, f *fixture) {
	t.Helper()
	wl := f.createDraft(t)
	_, err := f.svc.Submit(context.Background(), f.leader, wl.ID)
	require.NoError(t, err)
}

func TestNotificationList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewNotificationService(f.stores.Notifications)

	submitOne(t, f)
	submitOne(t, f)

	list, err := svc.List(ctx, f.manager, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first.
	assert.GreaterOrEqual(t, list[0].ID, list[1].ID)

	// Another user's bell stays empty.
	list, err = svc.List(ctx, f.leader, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationListUnreadOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewNotificationService(f.stores.Notifications)

	submitOne(t, f)
	submitOne(t, f)

	all, err := svc.List(ctx, f.manager, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, svc.MarkRead(ctx, f.manager, all[0].ID))

	unread, err := svc.List(ctx, f.manager, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, all[1].ID, unread[0].ID)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewNotificationService(f.stores.Notifications)

	submitOne(t, f)
	list, err := svc.List(ctx, f.manager, false)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.MarkRead(ctx, f.manager, list[0].ID))
	require.NoError(t, svc.MarkRead(ctx, f.manager, list[0].ID))

	count, err := svc.UnreadCount(ctx, f.manager)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkReadChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewNotificationService(f.stores.Notifications)

	submitOne(t, f)
	list, err := svc.List(ctx, f.manager, false)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = svc.MarkRead(ctx, f.manager2, list[0].ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	err = svc.MarkRead(ctx, f.manager, 9999)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewNotificationService(f.stores.Notifications)

	submitOne(t, f)
	submitOne(t, f)
	submitOne(t, f)

	affected, err := svc.MarkAllRead(ctx, f.manager)
	require.NoError(t, err)
	assert.Equal(t, 3, affected)

	// Repeating reports zero, and the other manager's bell is untouched.
	affected, err = svc.MarkAllRead(ctx, f.manager)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)

	count, err := svc.UnreadCount(ctx, f.manager2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestUnreadCountTracksReadState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewNotificationService(f.stores.Notifications)

	count, err := svc.UnreadCount(ctx, f.manager)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	submitOne(t, f)
	submitOne(t, f)

	count, err = svc.UnreadCount(ctx, f.manager)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := svc.List(ctx, f.manager, false)
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(ctx, f.manager, list[0].ID))

	count, err = svc.UnreadCount(ctx, f.manager)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
