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

func TestDailyTaskService_CompleteOncePerDay(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDailyTaskService(repository.NewDailyTaskRepository(db), repository.NewUserRepository(db))
	day := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "alice")

	today, err := svc.GetToday(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", today.Tasks.TaskDate)
	assert.False(t, today.Tasks.CheckinCompleted)
	assert.Zero(t, today.Exp)

	first, err := svc.Complete(ctx, u.ID, models.TaskCheckin)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, models.DailyTaskExp, first.ExpAdded)
	assert.Equal(t, models.DailyTaskExp, first.Exp)
	assert.True(t, first.Tasks.CheckinCompleted)

	again, err := svc.Complete(ctx, u.ID, models.TaskCheckin)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Zero(t, again.ExpAdded)
	assert.Equal(t, models.DailyTaskExp, again.Exp)

	day = day.Add(time.Hour)
	nextDay, err := svc.Complete(ctx, u.ID, models.TaskCheckin)
	require.NoError(t, err)
	assert.False(t, nextDay.AlreadyCompleted)
	assert.Equal(t, "2024-06-02", nextDay.Tasks.TaskDate)
	assert.Equal(t, 2*models.DailyTaskExp, nextDay.Exp)
}

func TestDailyTaskService_UnknownTask(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewDailyTaskService(repository.NewDailyTaskRepository(db), repository.NewUserRepository(db))
	u := testutil.CreateUser(t, db, "alice")

	_, err := svc.Complete(context.Background(), u.ID, "sleep")
	assertCode(t, err, models.CodeInvalidTask)
}
