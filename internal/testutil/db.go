// Package testutil holds fixtures shared by repository, service and server tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"forum/internal/database"
	"forum/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with the full schema and
// foreign keys enabled. A single connection keeps every query on the same
// database; code under test must not query outside an open transaction.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateUser inserts a user with a unique email derived from username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Avatar:   "/avatars/" + username + ".png",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post authored by authorID.
func CreatePost(t testing.TB, db *gorm.DB, authorID uint, title string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: "body of " + title, AuthorID: authorID}
	require.NoError(t, db.Omit("Author").Create(p).Error)
	return p
}

// CreateComment inserts a comment directly, bypassing depth checks. createdAt
// controls ordering in list tests.
func CreateComment(t testing.TB, db *gorm.DB, postID, authorID uint, parentID *uint, content string, createdAt time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{
		Content:   content,
		AuthorID:  authorID,
		PostID:    postID,
		ParentID:  parentID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Omit("Author", "Post", "Parent").Create(c).Error)
	return c
}
