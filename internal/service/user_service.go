package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"forum/internal/models"
	"forum/internal/repository"

	"golang.org/x/sync/errgroup"
)

type UserService struct {
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

const (
	maxUsernameLen = 64
	maxTagLen      = 32
	maxBioLen      = 500
)

// UpdateProfileInput carries the fields to change. Nil fields are left alone.
type UpdateProfileInput struct {
	UserID   uint
	Username *string
	Avatar   *string
	Bio      *string
	Tag      *string
}

// GetPublicProfile returns the visitor-facing profile with activity counts.
func (s *UserService) GetPublicProfile(ctx context.Context, userID uint) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.publicProfile(ctx, user)
}

// GetProfile returns the caller's own profile, including private fields.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.OwnProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public, err := s.publicProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.OwnProfile{PublicProfile: *public, Email: user.Email, UpdatedAt: user.UpdatedAt}, nil
}

// UpdateProfile changes the caller's username, avatar, bio or tag.
// Usernames and non-empty tags must be unique.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.OwnProfile, error) {
	current, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, 4)
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, models.NewValidationError("Username is required")
		}
		if utf8.RuneCountInString(username) > maxUsernameLen {
			return nil, models.NewValidationError("Username too long (max 64 characters)")
		}
		if username != current.Username {
			taken, err := s.userRepo.UsernameTaken(ctx, username, in.UserID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, models.NewInvalidArgumentError(models.CodeUsernameExists, "Username already taken")
			}
			fields["username"] = username
		}
	}
	if in.Tag != nil {
		tag := strings.TrimSpace(*in.Tag)
		if utf8.RuneCountInString(tag) > maxTagLen {
			return nil, models.NewValidationError("Tag too long (max 32 characters)")
		}
		if tag != current.Tag {
			if tag != "" {
				taken, err := s.userRepo.TagTaken(ctx, tag, in.UserID)
				if err != nil {
					return nil, err
				}
				if taken {
					return nil, models.NewInvalidArgumentError(models.CodeTagExists, "Tag already taken")
				}
			}
			fields["tag"] = tag
		}
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		fields["bio"] = *in.Bio
	}
	if in.Avatar != nil {
		fields["avatar"] = strings.TrimSpace(*in.Avatar)
	}

	if err := s.userRepo.UpdateProfile(ctx, in.UserID, fields); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, in.UserID)
}

func (s *UserService) publicProfile(ctx context.Context, user *models.User) (*models.PublicProfile, error) {
	userID := user.ID
	var posts, comments int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = s.postRepo.CountByAuthor(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		comments, err = s.commentRepo.CountByAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.PublicProfile{
		ID:           user.ID,
		Username:     user.Username,
		Avatar:       user.Avatar,
		Bio:          user.Bio,
		Tag:          user.Tag,
		Exp:          user.Exp,
		Level:        models.LevelForExp(user.Exp),
		JoinDate:     user.CreatedAt,
		PostCount:    posts,
		CommentCount: comments,
	}, nil
}

func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	return s.userRepo.IsAdmin(ctx, userID)
}
