package repository

import (
	"context"
	"fmt"

	"forum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyTaskRepository stores per-day task completion and grants experience.
type DailyTaskRepository interface {
	GetOrCreate(ctx context.Context, userID uint, date string) (*models.DailyTask, error)
	// Complete marks taskType done for the day and adds exp to the user, once.
	// completedNow is false when the task was already done.
	Complete(ctx context.Context, userID uint, date, taskType string, exp int) (task *models.DailyTask, completedNow bool, err error)
}

type dailyTaskRepository struct {
	db *gorm.DB
}

// NewDailyTaskRepository creates a new daily task repository
func NewDailyTaskRepository(db *gorm.DB) DailyTaskRepository {
	return &dailyTaskRepository{db: db}
}

func getOrCreateTask(tx *gorm.DB, userID uint, date string) (*models.DailyTask, error) {
	seed := models.DailyTask{UserID: userID, TaskDate: date}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_date"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return nil, fmt.Errorf("create daily task row: %w", err)
	}

	var task models.DailyTask
	if err := tx.Where("user_id = ? AND task_date = ?", userID, date).Take(&task).Error; err != nil {
		return nil, fmt.Errorf("load daily task row: %w", err)
	}
	return &task, nil
}

func (r *dailyTaskRepository) GetOrCreate(ctx context.Context, userID uint, date string) (*models.DailyTask, error) {
	return getOrCreateTask(r.db.WithContext(ctx), userID, date)
}

func (r *dailyTaskRepository) Complete(ctx context.Context, userID uint, date, taskType string, exp int) (*models.DailyTask, bool, error) {
	if !models.ValidTask(taskType) {
		return nil, false, models.NewInvalidArgumentError(models.CodeInvalidTask, "Unknown task type")
	}

	var (
		task         *models.DailyTask
		completedNow bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = getOrCreateTask(tx, userID, date)
		if err != nil {
			return err
		}
		if task.Completed(taskType) {
			return nil
		}

		column := task.Column(taskType)
		res := tx.Model(&models.DailyTask{}).
			Where("id = ? AND "+column+" = ?", task.ID, false).
			Update(column, true)
		if res.Error != nil {
			return fmt.Errorf("complete task %s: %w", taskType, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		upd := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("exp", gorm.Expr("exp + ?", exp))
		if upd.Error != nil {
			return fmt.Errorf("grant exp: %w", upd.Error)
		}
		if upd.RowsAffected == 0 {
			return models.ErrUserNotFound
		}

		task.MarkCompleted(taskType)
		completedNow = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return task, completedNow, nil
}
