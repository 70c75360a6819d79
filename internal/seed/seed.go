// Package seed populates a development database with demo users, posts and
// comment threads. Comments go through the comment service so the depth rule
// holds and notifications are generated the same way the API generates them.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"forum/internal/auth"
	"forum/internal/models"
	"forum/internal/repository"
	"forum/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded user can log in with.
const DemoPassword = "password123"

// Options configures a seeding run.
type Options struct {
	NumUsers        int
	PostsPerUser    int
	CommentsPerPost int
	RepliesPerRoot  int
	// SkipBcrypt stores the plain demo password. Tests use it to stay fast.
	SkipBcrypt bool
	// RandSeed makes generated content reproducible when non-zero.
	RandSeed int64
}

// Result summarizes what a run created.
type Result struct {
	Users         []*models.User
	Posts         int
	Comments      int
	Replies       int
	Notifications int64
}

// Seeder writes demo data through the repositories and services.
type Seeder struct {
	db       *gorm.DB
	opts     Options
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	comments *service.CommentService
}

// NewSeeder creates a Seeder bound to db. Live publishing is disabled.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.RandSeed == 0 {
		opts.RandSeed = time.Now().UnixNano()
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dispatcher := service.NewDispatcher(postRepo, userRepo, commentRepo, notificationRepo, nil)

	return &Seeder{
		db:       db,
		opts:     opts,
		faker:    gofakeit.New(opts.RandSeed),
		users:    userRepo,
		posts:    postRepo,
		comments: service.NewCommentService(commentRepo, postRepo, dispatcher, userRepo.IsAdmin),
	}
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("Clearing existing data...")
	tables := []any{
		&models.Notification{},
		&models.DailyTask{},
		&models.Comment{},
		&models.Post{},
		&models.User{},
	}
	for _, m := range tables {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

// Run creates users, then posts for each user, then root comments and
// replies from random other users.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	users, err := s.createUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	res.Users = users
	log.Printf("%d users created", len(users))
	if len(users) == 0 {
		return res, nil
	}

	for _, author := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			post := &models.Post{
				Title:    s.faker.Sentence(5),
				Content:  s.faker.Paragraph(1, 3, 8, "\n"),
				AuthorID: author.ID,
			}
			if err := s.posts.Create(ctx, post); err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			res.Posts++

			if err := s.createThread(ctx, post.ID, users, res); err != nil {
				return nil, err
			}
		}
	}
	log.Printf("%d posts, %d comments, %d replies created", res.Posts, res.Comments, res.Replies)

	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Count(&res.Notifications).Error; err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	return res, nil
}

func (s *Seeder) createThread(ctx context.Context, postID uint, users []*models.User, res *Result) error {
	for i := 0; i < s.opts.CommentsPerPost; i++ {
		root, err := s.comments.CreateComment(ctx, service.CreateCommentInput{
			UserID:  s.pick(users).ID,
			PostID:  postID,
			Content: s.faker.Sentence(12),
		})
		if err != nil {
			return fmt.Errorf("create comment on post %d: %w", postID, err)
		}
		res.Comments++

		for j := 0; j < s.opts.RepliesPerRoot; j++ {
			if _, err := s.comments.ReplyToComment(ctx, service.ReplyInput{
				UserID:    s.pick(users).ID,
				CommentID: root.ID,
				Content:   s.faker.Sentence(8),
			}); err != nil {
				return fmt.Errorf("reply to comment %d: %w", root.ID, err)
			}
			res.Replies++
		}
	}
	return nil
}

func (s *Seeder) createUsers(ctx context.Context) ([]*models.User, error) {
	password := DemoPassword
	if !s.opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		username := fmt.Sprintf("%s%d", s.faker.Username(), i)
		if len(username) > 64 {
			username = username[len(username)-64:]
		}
		u := &models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: password,
			Bio:      s.faker.Sentence(10),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", s.faker.UUID()),
			Exp:      s.faker.Number(0, 500),
			IsAdmin:  i == 0,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Seeder) pick(users []*models.User) *models.User {
	return users[s.faker.Number(0, len(users)-1)]
}

// DevTokens issues a bearer token per seeded user for local testing.
func DevTokens(secret string, users []*models.User, ttl time.Duration) (map[string]string, error) {
	tokens := make(map[string]string, len(users))
	for _, u := range users {
		token, err := auth.IssueToken(secret, u.ID, u.Username, ttl)
		if err != nil {
			return nil, fmt.Errorf("issue token for %s: %w", u.Username, err)
		}
		tokens[u.Username] = token
	}
	return tokens, nil
}
