package service

import (
	"context"
	"testing"

	"forum/internal/models"
	"forum/internal/observability"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDispatcher knows post 10 by user 1 and comment 20 by user 2.
func newTestDispatcher(notifs *notificationRepoStub, pub *publisherStub) (*Dispatcher, *postRepoStub, *userRepoStub, *commentRepoStub) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		if id != 10 {
			return nil, models.ErrPostNotFound
		}
		return &models.Post{ID: 10, Title: "Hello world", AuthorID: 1}, nil
	}
	users := noopUserRepo()
	users.getUsernameFn = func(_ context.Context, id uint) (string, error) {
		switch id {
		case 1:
			return "alice", nil
		case 2:
			return "bob", nil
		case 3:
			return "carol", nil
		}
		return "", models.ErrUserNotFound
	}
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		if id != 20 {
			return nil, models.ErrCommentNotFound
		}
		return &models.Comment{ID: 20, PostID: 10, AuthorID: 2}, nil
	}

	var publisher NotificationPublisher
	if pub != nil {
		publisher = pub
	}
	return NewDispatcher(posts, users, comments, notifs, publisher), posts, users, comments
}

func TestDispatcher_CommentCreated(t *testing.T) {
	notifs := &notificationRepoStub{}
	pub := &publisherStub{}
	d, _, _, _ := newTestDispatcher(notifs, pub)
	counter := observability.NotificationsCreated.WithLabelValues(models.NotificationTypeComment)
	before := promtestutil.ToFloat64(counter)

	res := d.CommentCreated(context.Background(), CommentEvent{PostID: 10, ActorID: 2})
	require.NoError(t, res.Err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, before+1, promtestutil.ToFloat64(counter))

	n := res.Created[0]
	assert.Equal(t, uint(1), n.UserID)
	assert.Equal(t, models.NotificationTypeComment, n.Type)
	assert.Equal(t, "bob commented on your post", n.Title)
	assert.Equal(t, "Hello world", n.Content)
	assert.Equal(t, uint(10), *n.RelatedPostID)
	assert.Equal(t, uint(2), *n.RelatedUserID)

	require.Len(t, pub.published, 1)
	assert.Equal(t, n.ID, pub.published[0].ID)
}

func TestDispatcher_CommentOnOwnPostIsSilent(t *testing.T) {
	notifs := &notificationRepoStub{}
	d, _, _, _ := newTestDispatcher(notifs, nil)

	res := d.CommentCreated(context.Background(), CommentEvent{PostID: 10, ActorID: 1})
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Created)
	assert.Empty(t, notifs.created)
}

func TestDispatcher_Fallbacks(t *testing.T) {
	notifs := &notificationRepoStub{}
	d, posts, _, _ := newTestDispatcher(notifs, nil)
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 1}, nil
	}

	res := d.CommentCreated(context.Background(), CommentEvent{PostID: 10, ActorID: 99})
	require.NoError(t, res.Err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "Someone commented on your post", res.Created[0].Title)
	assert.Equal(t, "a post", res.Created[0].Content)
}

func TestDispatcher_MissingPostCreatesNothing(t *testing.T) {
	notifs := &notificationRepoStub{}
	d, _, _, _ := newTestDispatcher(notifs, nil)

	res := d.CommentCreated(context.Background(), CommentEvent{PostID: 404, ActorID: 2})
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Created)
}

func TestDispatcher_ReplyCreated(t *testing.T) {
	tests := []struct {
		name       string
		actorID    uint
		parentID   uint
		wantUsers  []uint
		wantTypes  []string
		wantTitles []string
	}{
		{
			name:       "third party reply notifies parent author and post author",
			actorID:    3,
			parentID:   20,
			wantUsers:  []uint{2, 1},
			wantTypes:  []string{models.NotificationTypeCommentReply, models.NotificationTypeComment},
			wantTitles: []string{"carol replied to your comment", "carol commented on your post"},
		},
		{
			name:       "post author replying notifies only the parent author",
			actorID:    1,
			parentID:   20,
			wantUsers:  []uint{2},
			wantTypes:  []string{models.NotificationTypeCommentReply},
			wantTitles: []string{"alice replied to your comment"},
		},
		{
			name:       "parent author replying to self notifies only the post author",
			actorID:    2,
			parentID:   20,
			wantUsers:  []uint{1},
			wantTypes:  []string{models.NotificationTypeComment},
			wantTitles: []string{"bob commented on your post"},
		},
		{
			name:       "missing parent still notifies the post author",
			actorID:    3,
			parentID:   404,
			wantUsers:  []uint{1},
			wantTypes:  []string{models.NotificationTypeComment},
			wantTitles: []string{"carol commented on your post"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifs := &notificationRepoStub{}
			d, _, _, _ := newTestDispatcher(notifs, nil)

			res := d.ReplyCreated(context.Background(), ReplyEvent{ParentCommentID: tt.parentID, PostID: 10, ActorID: tt.actorID})
			require.NoError(t, res.Err)
			require.Len(t, res.Created, len(tt.wantUsers))
			for i, n := range res.Created {
				assert.Equal(t, tt.wantUsers[i], n.UserID)
				assert.Equal(t, tt.wantTypes[i], n.Type)
				assert.Equal(t, tt.wantTitles[i], n.Title)
				assert.Equal(t, "Hello world", n.Content)
				assert.NotEqual(t, tt.actorID, n.UserID)
			}
		})
	}
}

func TestDispatcher_ReplyWhenParentAuthorIsPostAuthor(t *testing.T) {
	notifs := &notificationRepoStub{}
	d, _, _, comments := newTestDispatcher(notifs, nil)
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 10, AuthorID: 1}, nil
	}

	res := d.ReplyCreated(context.Background(), ReplyEvent{ParentCommentID: 20, PostID: 10, ActorID: 3})
	require.NoError(t, res.Err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, uint(1), res.Created[0].UserID)
	assert.Equal(t, models.NotificationTypeCommentReply, res.Created[0].Type)
}

func TestDispatcher_InsertFailureStopsTheRun(t *testing.T) {
	notifs := &notificationRepoStub{
		createFn: func(_ context.Context, _ *models.Notification) error { return errBoom },
	}
	pub := &publisherStub{}
	d, _, _, _ := newTestDispatcher(notifs, pub)

	res := d.ReplyCreated(context.Background(), ReplyEvent{ParentCommentID: 20, PostID: 10, ActorID: 3})
	assert.ErrorIs(t, res.Err, errBoom)
	assert.Empty(t, res.Created)
	assert.Empty(t, pub.published)
}

func TestDispatcher_LookupFailure(t *testing.T) {
	notifs := &notificationRepoStub{}
	d, _, users, _ := newTestDispatcher(notifs, nil)
	users.getUsernameFn = func(_ context.Context, _ uint) (string, error) { return "", errBoom }

	res := d.CommentCreated(context.Background(), CommentEvent{PostID: 10, ActorID: 2})
	assert.ErrorIs(t, res.Err, errBoom)
	assert.Empty(t, notifs.created)
}

func TestDispatcher_PublishFailureKeepsRow(t *testing.T) {
	notifs := &notificationRepoStub{}
	pub := &publisherStub{err: errBoom}
	d, _, _, _ := newTestDispatcher(notifs, pub)

	res := d.CommentCreated(context.Background(), CommentEvent{PostID: 10, ActorID: 2})
	assert.NoError(t, res.Err)
	assert.Len(t, res.Created, 1)
	assert.Len(t, notifs.created, 1)
}
