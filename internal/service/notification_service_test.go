package service

import (
	"context"
	"testing"
	"time"

	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_Inbox(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewNotificationRepository(db)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var ids []uint
	for i := 0; i < NotificationPageSize+2; i++ {
		n := &models.Notification{
			UserID:    alice.ID,
			Type:      models.NotificationTypeComment,
			Title:     "bob commented on your post",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, n))
		ids = append(ids, n.ID)
	}
	bobs := &models.Notification{UserID: bob.ID, Type: models.NotificationTypeCommentReply, Title: "x"}
	require.NoError(t, repo.Create(ctx, bobs))

	page, err := svc.List(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, int64(NotificationPageSize+2), page.Total)
	assert.Equal(t, int64(NotificationPageSize+2), page.Unread)
	require.Len(t, page.Notifications, NotificationPageSize)
	assert.Equal(t, ids[len(ids)-1], page.Notifications[0].ID, "newest first")

	page2, err := svc.List(ctx, alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, page2.Notifications, 2)
	assert.Equal(t, ids[0], page2.Notifications[1].ID)

	err = svc.MarkRead(ctx, alice.ID, bobs.ID)
	assertCode(t, err, models.CodeNotificationNotFound)
	err = svc.Delete(ctx, alice.ID, bobs.ID)
	assertCode(t, err, models.CodeNotificationNotFound)

	require.NoError(t, svc.MarkRead(ctx, alice.ID, ids[0]))
	unread, err := svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(NotificationPageSize+1), unread)

	updated, err := svc.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(NotificationPageSize+1), updated)

	unread, err = svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, svc.Delete(ctx, bob.ID, bobs.ID))
	empty, err := svc.List(ctx, bob.ID, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty.Notifications)
	assert.Empty(t, empty.Notifications)
}
