package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"forum/internal/models"
	"forum/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateMapsDepthTrigger(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		wantCode string
	}{
		{"depth guard", &pgconn.PgError{Code: "P0001", Message: "MAX_DEPTH_REACHED"}, models.CodeMaxDepthReached},
		{"cross-post parent", &pgconn.PgError{Code: "P0001", Message: "INVALID_PARENT"}, models.CodeInvalidParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewCommentRepository(db)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).WillReturnError(tt.dbErr)
			mock.ExpectRollback()

			err := repo.Create(context.Background(), &models.Comment{Content: "x", AuthorID: 1, PostID: 1, ParentID: uintPtr(5)})
			assert.True(t, models.IsCode(err, tt.wantCode), "got %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentRepository_CreateWrapsOtherErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Comment{Content: "x", AuthorID: 1, PostID: 1})
	assert.ErrorIs(t, err, boom)
	var appErr *models.AppError
	assert.False(t, errors.As(err, &appErr))
}

func TestCommentRepository_LockByIDUsesForUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "comments" WHERE "comments"."id" = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "parent_id"}).AddRow(3, 1, nil))

	c, err := repo.LockByID(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, c.IsRoot())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Depth(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "u1")
	p := testutil.CreatePost(t, db, u.ID, "p")
	now := time.Now().UTC()

	root := testutil.CreateComment(t, db, p.ID, u.ID, nil, "root", now)
	reply := testutil.CreateComment(t, db, p.ID, u.ID, &root.ID, "reply", now)
	deep := testutil.CreateComment(t, db, p.ID, u.ID, &reply.ID, "legacy deep row", now)

	d, err := repo.Depth(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	d, err = repo.Depth(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	d, err = repo.Depth(ctx, deep.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	_, err = repo.Depth(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrCommentNotFound)
}

func TestCommentRepository_DepthStopsOnCycle(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)

	u := testutil.CreateUser(t, db, "u1")
	p := testutil.CreatePost(t, db, u.ID, "p")
	a := testutil.CreateComment(t, db, p.ID, u.ID, nil, "a", time.Now())
	b := testutil.CreateComment(t, db, p.ID, u.ID, &a.ID, "b", time.Now())
	require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", a.ID).Update("parent_id", b.ID).Error)

	d, err := repo.Depth(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, maxDepthWalk, d)
}

func TestCommentRepository_ListRootsAndReplies(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "alice")
	p := testutil.CreatePost(t, db, u.ID, "p")
	other := testutil.CreatePost(t, db, u.ID, "other")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	second := testutil.CreateComment(t, db, p.ID, u.ID, nil, "second", base.Add(2*time.Minute))
	first := testutil.CreateComment(t, db, p.ID, u.ID, nil, "first", base.Add(time.Minute))
	third := testutil.CreateComment(t, db, p.ID, u.ID, nil, "third", base.Add(3*time.Minute))
	testutil.CreateComment(t, db, other.ID, u.ID, nil, "elsewhere", base)
	lateReply := testutil.CreateComment(t, db, p.ID, u.ID, &first.ID, "late reply", base.Add(10*time.Minute))
	earlyReply := testutil.CreateComment(t, db, p.ID, u.ID, &first.ID, "early reply", base.Add(5*time.Minute))

	roots, total, err := repo.ListRoots(ctx, p.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, roots, 2)
	assert.Equal(t, first.ID, roots[0].ID)
	assert.Equal(t, second.ID, roots[1].ID)
	assert.Equal(t, "alice", roots[0].Author.Username)

	roots, _, err = repo.ListRoots(ctx, p.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, third.ID, roots[0].ID)

	replies, err := repo.ListReplies(ctx, []uint{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, earlyReply.ID, replies[0].ID)
	assert.Equal(t, lateReply.ID, replies[1].ID)

	none, err := repo.ListReplies(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCommentRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "u")
	p := testutil.CreatePost(t, db, u.ID, "p")
	root := testutil.CreateComment(t, db, p.ID, u.ID, nil, "root", time.Now())
	testutil.CreateComment(t, db, p.ID, u.ID, &root.ID, "r1", time.Now())
	testutil.CreateComment(t, db, p.ID, u.ID, &root.ID, "r2", time.Now())
	keep := testutil.CreateComment(t, db, p.ID, u.ID, nil, "keep", time.Now())

	root.Content = "edited"
	require.NoError(t, repo.Update(ctx, root))
	got, err := repo.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	assert.ErrorIs(t, repo.Update(ctx, &models.Comment{ID: 404, Content: "x"}), models.ErrCommentNotFound)

	require.NoError(t, repo.Delete(ctx, root.ID))
	var remaining int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	_, err = repo.GetByID(ctx, keep.ID)
	assert.NoError(t, err)
	assert.ErrorIs(t, repo.Delete(ctx, root.ID), models.ErrCommentNotFound)
}

func TestCommentRepository_TransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "u")
	p := testutil.CreatePost(t, db, u.ID, "p")

	sentinel := errors.New("abort")
	err := repo.Transaction(ctx, func(tx CommentRepository) error {
		if err := tx.Create(ctx, &models.Comment{Content: "c", AuthorID: u.ID, PostID: p.ID}); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	n, err := repo.CountByAuthor(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentRepository_PostDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)

	u := testutil.CreateUser(t, db, "u")
	p := testutil.CreatePost(t, db, u.ID, "p")
	root := testutil.CreateComment(t, db, p.ID, u.ID, nil, "root", time.Now())
	testutil.CreateComment(t, db, p.ID, u.ID, &root.ID, "reply", time.Now())

	require.NoError(t, db.Delete(&models.Post{}, p.ID).Error)

	n, err := repo.CountByAuthor(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
