package service

import (
	"context"
	"errors"
	"testing"

	"forum/internal/models"
	"forum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func uintPtr(v uint) *uint { return &v }
func strPtr(v string) *string { return &v }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	lockByIDFn      func(context.Context, uint) (*models.Comment, error)
	depthFn         func(context.Context, uint) (int, error)
	listRootsFn     func(context.Context, uint, int, int) ([]*models.Comment, int64, error)
	listRepliesFn   func(context.Context, []uint) ([]*models.Comment, error)
	countByAuthorFn func(context.Context, uint) (int64, error)
	updateFn        func(context.Context, *models.Comment) error
	deleteFn        func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) LockByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.lockByIDFn(ctx, id)
}
func (s *commentRepoStub) Depth(ctx context.Context, id uint) (int, error) {
	return s.depthFn(ctx, id)
}
func (s *commentRepoStub) ListRoots(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	return s.listRootsFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentIDs []uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentIDs)
}
func (s *commentRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) Transaction(_ context.Context, fn func(repo repository.CommentRepository) error) error {
	return fn(s)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id, PostID: 1}, nil },
		lockByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1}, nil
		},
		depthFn: func(_ context.Context, _ uint) (int, error) { return 0, nil },
		listRootsFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, int64, error) {
			return nil, 0, nil
		},
		listRepliesFn:   func(_ context.Context, _ []uint) ([]*models.Comment, error) { return nil, nil },
		countByAuthorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	countByAuthorFn func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error {
	return s.createFn(ctx, p)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Title: "A post", AuthorID: 1}, nil
		},
		countByAuthorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn     func(context.Context, uint) (*models.User, error)
	getUsernameFn func(context.Context, uint) (string, error)
	isAdminFn     func(context.Context, uint) (bool, error)
}

func (s *userRepoStub) Create(_ context.Context, _ *models.User) error { return nil }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetUsername(ctx context.Context, id uint) (string, error) {
	return s.getUsernameFn(ctx, id)
}
func (s *userRepoStub) IsAdmin(ctx context.Context, id uint) (bool, error) {
	return s.isAdminFn(ctx, id)
}
func (s *userRepoStub) AddExp(_ context.Context, _ uint, _ int) error { return nil }
func (s *userRepoStub) UsernameTaken(_ context.Context, _ string, _ uint) (bool, error) {
	return false, nil
}
func (s *userRepoStub) TagTaken(_ context.Context, _ string, _ uint) (bool, error) { return false, nil }
func (s *userRepoStub) UpdateProfile(_ context.Context, _ uint, _ map[string]any) error {
	return nil
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getUsernameFn: func(_ context.Context, _ uint) (string, error) { return "user", nil },
		isAdminFn:     func(_ context.Context, _ uint) (bool, error) { return false, nil },
	}
}

// notificationRepoStub records created notifications and can be made to fail.
type notificationRepoStub struct {
	created  []models.Notification
	createFn func(context.Context, *models.Notification) error
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	if s.createFn != nil {
		if err := s.createFn(ctx, n); err != nil {
			return err
		}
	}
	n.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *n)
	return nil
}
func (s *notificationRepoStub) ListByUser(_ context.Context, _ uint, _, _ int) ([]models.Notification, error) {
	return s.created, nil
}
func (s *notificationRepoStub) Counts(_ context.Context, _ uint) (int64, int64, error) {
	return int64(len(s.created)), int64(len(s.created)), nil
}
func (s *notificationRepoStub) MarkRead(_ context.Context, _, _ uint) error         { return nil }
func (s *notificationRepoStub) MarkAllRead(_ context.Context, _ uint) (int64, error) { return 0, nil }
func (s *notificationRepoStub) Delete(_ context.Context, _, _ uint) error           { return nil }

// publisherStub records published notifications.
type publisherStub struct {
	published []models.Notification
	err       error
}

func (p *publisherStub) PublishNotification(_ context.Context, n *models.Notification) error {
	p.published = append(p.published, *n)
	return p.err
}

// notifierStub is a stub for CommentNotifier.
type notifierStub struct {
	comments []CommentEvent
	replies  []ReplyEvent
	result   DispatchResult
}

func (n *notifierStub) CommentCreated(_ context.Context, ev CommentEvent) DispatchResult {
	n.comments = append(n.comments, ev)
	return n.result
}

func (n *notifierStub) ReplyCreated(_ context.Context, ev ReplyEvent) DispatchResult {
	n.replies = append(n.replies, ev)
	return n.result
}
