package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxCommentLen = 10000

	// Replies are fetched one level below roots and never deeper.
	maxReplyDepth = 1
)

// CommentNotifier is the part of the Dispatcher the comment service needs.
type CommentNotifier interface {
	CommentCreated(ctx context.Context, ev CommentEvent) DispatchResult
	ReplyCreated(ctx context.Context, ev ReplyEvent) DispatchResult
}

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	notifier    CommentNotifier
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ParentID *uint
}

type ReplyInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	notifier CommentNotifier,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		notifier:    notifier,
		isAdmin:     isAdmin,
	}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return content, nil
}

// CreateComment adds a root comment, or a reply when ParentID is set.
// A zero ParentID is treated as absent.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (view *models.CommentView, err error) {
	if in.ParentID != nil && *in.ParentID == 0 {
		in.ParentID = nil
	}
	ctx, span := observability.StartSpan(ctx, "comment.Create",
		attribute.Int("post.id", int(in.PostID)),
		attribute.Bool("comment.is_reply", in.ParentID != nil),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  content,
		AuthorID: in.UserID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
	}
	if err := s.insert(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	// Only the post author hears about comments made here, parented or not.
	// Reply notifications belong to ReplyToComment.
	s.dispatchComment(ctx, CommentEvent{PostID: in.PostID, ActorID: in.UserID})

	return models.NewCommentView(created), nil
}

// ReplyToComment adds a reply under CommentID on the same post.
func (s *CommentService) ReplyToComment(ctx context.Context, in ReplyInput) (view *models.CommentView, err error) {
	ctx, span := observability.StartSpan(ctx, "comment.Reply",
		attribute.Int("parent.id", int(in.CommentID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	parent, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	parentID := parent.ID
	comment := &models.Comment{
		Content:  content,
		AuthorID: in.UserID,
		PostID:   parent.PostID,
		ParentID: &parentID,
	}
	if err := s.insert(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	s.dispatchReply(ctx, ReplyEvent{ParentCommentID: parent.ID, PostID: parent.PostID, ActorID: in.UserID})
	return models.NewCommentView(created), nil
}

// insert writes comment in a transaction. For replies the parent row is
// locked first so its depth cannot change between the check and the insert.
func (s *CommentService) insert(ctx context.Context, comment *models.Comment) error {
	err := s.commentRepo.Transaction(ctx, func(repo repository.CommentRepository) error {
		if comment.ParentID != nil {
			parent, err := repo.LockByID(ctx, *comment.ParentID)
			if err != nil {
				return err
			}
			if parent.PostID != comment.PostID {
				return models.NewInvalidArgumentError(models.CodeInvalidParent, "Parent comment belongs to another post")
			}
			depth, err := repo.Depth(ctx, parent.ID)
			if err != nil {
				return err
			}
			if depth >= maxReplyDepth {
				return models.ErrMaxDepthReached
			}
		}
		return repo.Create(ctx, comment)
	})
	if err != nil {
		if models.IsCode(err, models.CodeMaxDepthReached) {
			observability.CommentDepthRejections.Inc()
		}
		return err
	}

	kind := "root"
	if comment.ParentID != nil {
		kind = "reply"
	}
	observability.CommentsCreated.WithLabelValues(kind).Inc()
	return nil
}

func (s *CommentService) dispatchComment(ctx context.Context, ev CommentEvent) {
	if s.notifier == nil {
		return
	}
	res := s.notifier.CommentCreated(ctx, ev)
	if res.Err != nil {
		observability.NotificationDispatchFailures.WithLabelValues("comment").Inc()
		middleware.Logger.WarnContext(ctx, "comment notification dispatch failed",
			"post_id", ev.PostID, "actor_id", ev.ActorID,
			"created", len(res.Created), "error", res.Err)
	}
}

func (s *CommentService) dispatchReply(ctx context.Context, ev ReplyEvent) {
	if s.notifier == nil {
		return
	}
	res := s.notifier.ReplyCreated(ctx, ev)
	if res.Err != nil {
		observability.NotificationDispatchFailures.WithLabelValues("reply").Inc()
		middleware.Logger.WarnContext(ctx, "reply notification dispatch failed",
			"post_id", ev.PostID, "parent_id", ev.ParentCommentID, "actor_id", ev.ActorID,
			"created", len(res.Created), "error", res.Err)
	}
}

// ListComments returns one page of root comments with their direct replies.
// A page below 1 is treated as page 1.
func (s *CommentService) ListComments(ctx context.Context, postID uint, page int) (*models.CommentPage, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	roots, total, err := s.commentRepo.ListRoots(ctx, postID, models.CommentPageSize, (page-1)*models.CommentPageSize)
	if err != nil {
		return nil, err
	}

	views := make([]*models.CommentView, 0, len(roots))
	for _, root := range roots {
		views = append(views, models.NewCommentView(root))
	}
	if err := s.attachReplies(ctx, views, 0, maxReplyDepth); err != nil {
		return nil, err
	}

	return &models.CommentPage{Comments: views, Total: total, Page: page}, nil
}

// attachReplies fills Replies for every view at level and recurses until
// maxDepth, issuing one query per level.
func (s *CommentService) attachReplies(ctx context.Context, views []*models.CommentView, level, maxDepth int) error {
	if level >= maxDepth || len(views) == 0 {
		return nil
	}

	byID := make(map[uint]*models.CommentView, len(views))
	ids := make([]uint, 0, len(views))
	for _, v := range views {
		byID[v.ID] = v
		ids = append(ids, v.ID)
	}

	replies, err := s.commentRepo.ListReplies(ctx, ids)
	if err != nil {
		return err
	}

	next := make([]*models.CommentView, 0, len(replies))
	for _, r := range replies {
		if r.ParentID == nil {
			continue
		}
		parent, ok := byID[*r.ParentID]
		if !ok {
			continue
		}
		child := models.NewCommentView(r)
		parent.Replies = append(parent.Replies, child)
		next = append(next, child)
	}
	return s.attachReplies(ctx, next, level+1, maxDepth)
}

// UpdateComment replaces the content of the caller's own comment.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.CommentView, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	updated, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	return models.NewCommentView(updated), nil
}

// DeleteComment removes a comment and its replies. Admins may delete any comment.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != in.UserID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own comments")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}

	return s.commentRepo.Delete(ctx, in.CommentID)
}
