// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forum/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxDepthWalk bounds the parent-chain walk so cyclic rows cannot loop forever.
const maxDepthWalk = 10

// raiseExceptionCode is the SQLSTATE raised by the comments_depth_guard trigger.
const raiseExceptionCode = "P0001"

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// LockByID loads the comment and holds a row lock until the surrounding transaction ends.
	LockByID(ctx context.Context, id uint) (*models.Comment, error)
	// Depth counts parent hops from id up to a root comment.
	Depth(ctx context.Context, id uint) (int, error)
	ListRoots(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error)
	ListReplies(ctx context.Context, parentIDs []uint) ([]*models.Comment, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	// Delete removes the comment and any replies to it.
	Delete(ctx context.Context, id uint) error
	// Transaction runs fn against a repository bound to a single database transaction.
	Transaction(ctx context.Context, fn func(repo CommentRepository) error) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Transaction(ctx context.Context, fn func(repo CommentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&commentRepository{db: tx})
	})
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
	if err != nil {
		return translateCommentWriteError(err)
	}
	return nil
}

// translateCommentWriteError turns comments_depth_guard violations into domain errors.
func translateCommentWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == raiseExceptionCode {
		switch pgErr.Message {
		case models.CodeMaxDepthReached:
			return models.ErrMaxDepthReached
		case models.CodeInvalidParent:
			return models.NewInvalidArgumentError(models.CodeInvalidParent, "Parent comment belongs to another post")
		}
	}
	return fmt.Errorf("write comment: %w", err)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment %d: %w", id, err)
	}
	return &comment, nil
}

func (r *commentRepository) LockByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCommentNotFound
		}
		return nil, fmt.Errorf("lock comment %d: %w", id, err)
	}
	return &comment, nil
}

func (r *commentRepository) Depth(ctx context.Context, id uint) (int, error) {
	depth := 0
	current := id
	for depth < maxDepthWalk {
		var row struct{ ParentID *uint }
		err := r.db.WithContext(ctx).Model(&models.Comment{}).
			Select("parent_id").
			Where("id = ?", current).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if depth == 0 {
				return 0, models.ErrCommentNotFound
			}
			break
		}
		if err != nil {
			return 0, fmt.Errorf("walk comment %d: %w", current, err)
		}
		if row.ParentID == nil {
			break
		}
		current = *row.ParentID
		depth++
	}
	return depth, nil
}

func (r *commentRepository) ListRoots(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count root comments: %w", err)
	}

	var roots []*models.Comment
	err := db.Preload("Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&roots).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list root comments: %w", err)
	}
	return roots, total, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []uint) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var replies []*models.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").Order("id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

func (r *commentRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("author_id = ?", authorID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count comments by author: %w", err)
	}
	return n, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]any{"content": comment.Content, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("update comment %d: %w", comment.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrCommentNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete replies of %d: %w", id, err)
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete comment %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrCommentNotFound
		}
		return nil
	})
}
