package service

import (
	"context"
	"errors"
	"fmt"

	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	fallbackUsername  = "Someone"
	fallbackPostTitle = "a post"
)

// NotificationPublisher pushes a persisted notification to live listeners.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// CommentEvent describes a new root comment.
type CommentEvent struct {
	PostID  uint
	ActorID uint
}

// ReplyEvent describes a new reply to ParentCommentID.
type ReplyEvent struct {
	ParentCommentID uint
	PostID          uint
	ActorID         uint
}

// DispatchResult lists the notifications that were persisted. Err is the
// first failure of the run; later notifications of the same run are skipped.
type DispatchResult struct {
	Created []models.Notification
	Err     error
}

// Dispatcher decides who hears about a new comment and writes their inbox rows.
type Dispatcher struct {
	posts         repository.PostRepository
	users         repository.UserRepository
	comments      repository.CommentRepository
	notifications repository.NotificationRepository
	publisher     NotificationPublisher
}

func NewDispatcher(
	posts repository.PostRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
	publisher NotificationPublisher,
) *Dispatcher {
	return &Dispatcher{
		posts:         posts,
		users:         users,
		comments:      comments,
		notifications: notifications,
		publisher:     publisher,
	}
}

type postSummary struct {
	found    bool
	authorID uint
	title    string
}

// CommentCreated notifies the post author about a new root comment.
func (d *Dispatcher) CommentCreated(ctx context.Context, ev CommentEvent) (res DispatchResult) {
	ctx, span := observability.StartSpan(ctx, "dispatcher.CommentCreated",
		attribute.Int("post.id", int(ev.PostID)),
		attribute.Int("actor.id", int(ev.ActorID)),
	)
	defer func() { observability.EndSpan(span, res.Err) }()

	var (
		post     postSummary
		username string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		post, err = d.lookupPost(gctx, ev.PostID)
		return err
	})
	g.Go(func() (err error) {
		username, err = d.lookupUsername(gctx, ev.ActorID)
		return err
	})
	if err := g.Wait(); err != nil {
		res.Err = err
		return res
	}

	if !post.found || post.authorID == ev.ActorID {
		return res
	}
	d.notify(ctx, &res, &models.Notification{
		UserID:        post.authorID,
		Type:          models.NotificationTypeComment,
		Title:         username + " commented on your post",
		Content:       post.title,
		RelatedPostID: &ev.PostID,
		RelatedUserID: &ev.ActorID,
	})
	return res
}

// ReplyCreated notifies the parent comment's author and, when it is someone
// else, the post author.
func (d *Dispatcher) ReplyCreated(ctx context.Context, ev ReplyEvent) (res DispatchResult) {
	ctx, span := observability.StartSpan(ctx, "dispatcher.ReplyCreated",
		attribute.Int("post.id", int(ev.PostID)),
		attribute.Int("parent.id", int(ev.ParentCommentID)),
		attribute.Int("actor.id", int(ev.ActorID)),
	)
	defer func() { observability.EndSpan(span, res.Err) }()

	var (
		parentAuthorID uint
		parentFound    bool
		username       string
		post           postSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		parent, err := d.comments.GetByID(gctx, ev.ParentCommentID)
		if errors.Is(err, models.ErrCommentNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("look up parent comment: %w", err)
		}
		parentAuthorID, parentFound = parent.AuthorID, true
		return nil
	})
	g.Go(func() (err error) {
		username, err = d.lookupUsername(gctx, ev.ActorID)
		return err
	})
	g.Go(func() (err error) {
		post, err = d.lookupPost(gctx, ev.PostID)
		return err
	})
	if err := g.Wait(); err != nil {
		res.Err = err
		return res
	}

	if parentFound && parentAuthorID != ev.ActorID {
		ok := d.notify(ctx, &res, &models.Notification{
			UserID:        parentAuthorID,
			Type:          models.NotificationTypeCommentReply,
			Title:         username + " replied to your comment",
			Content:       post.title,
			RelatedPostID: &ev.PostID,
			RelatedUserID: &ev.ActorID,
		})
		if !ok {
			return res
		}
	}

	if post.found && post.authorID != ev.ActorID && (!parentFound || post.authorID != parentAuthorID) {
		d.notify(ctx, &res, &models.Notification{
			UserID:        post.authorID,
			Type:          models.NotificationTypeComment,
			Title:         username + " commented on your post",
			Content:       post.title,
			RelatedPostID: &ev.PostID,
			RelatedUserID: &ev.ActorID,
		})
	}
	return res
}

// notify persists n, then publishes it. It reports whether the row was written.
func (d *Dispatcher) notify(ctx context.Context, res *DispatchResult, n *models.Notification) bool {
	if n.UserID == 0 || (n.RelatedUserID != nil && n.UserID == *n.RelatedUserID) {
		return true
	}
	if err := d.notifications.Create(ctx, n); err != nil {
		res.Err = fmt.Errorf("create %s notification for user %d: %w", n.Type, n.UserID, err)
		return false
	}
	res.Created = append(res.Created, *n)
	observability.NotificationsCreated.WithLabelValues(n.Type).Inc()

	if d.publisher != nil {
		if err := d.publisher.PublishNotification(ctx, n); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish notification",
				"notification_id", n.ID, "user_id", n.UserID, "error", err)
		}
	}
	return true
}

func (d *Dispatcher) lookupPost(ctx context.Context, postID uint) (postSummary, error) {
	post, err := d.posts.GetByID(ctx, postID)
	if errors.Is(err, models.ErrPostNotFound) {
		return postSummary{title: fallbackPostTitle}, nil
	}
	if err != nil {
		return postSummary{}, fmt.Errorf("look up post: %w", err)
	}
	title := post.Title
	if title == "" {
		title = fallbackPostTitle
	}
	return postSummary{found: post.AuthorID != 0, authorID: post.AuthorID, title: title}, nil
}

func (d *Dispatcher) lookupUsername(ctx context.Context, userID uint) (string, error) {
	username, err := d.users.GetUsername(ctx, userID)
	if errors.Is(err, models.ErrUserNotFound) {
		return fallbackUsername, nil
	}
	if err != nil {
		return "", fmt.Errorf("look up username: %w", err)
	}
	if username == "" {
		return fallbackUsername, nil
	}
	return username, nil
}
