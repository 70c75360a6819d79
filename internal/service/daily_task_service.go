package service

import (
	"context"
	"time"

	"forum/internal/models"
	"forum/internal/repository"
)

// DailyTasksView is today's task flags plus the user's total experience.
type DailyTasksView struct {
	Tasks *models.DailyTask `json:"tasks"`
	Exp   int               `json:"exp"`
}

// CompleteTaskResult reports the outcome of completing a daily task.
type CompleteTaskResult struct {
	DailyTasksView
	AlreadyCompleted bool `json:"alreadyCompleted"`
	ExpAdded         int  `json:"expAdded"`
}

type DailyTaskService struct {
	taskRepo repository.DailyTaskRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewDailyTaskService(taskRepo repository.DailyTaskRepository, userRepo repository.UserRepository) *DailyTaskService {
	return &DailyTaskService{taskRepo: taskRepo, userRepo: userRepo, now: time.Now}
}

// GetToday returns today's flags, creating the row on first access.
func (s *DailyTaskService) GetToday(ctx context.Context, userID uint) (*DailyTasksView, error) {
	task, err := s.taskRepo.GetOrCreate(ctx, userID, models.TaskDateFor(s.now()))
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DailyTasksView{Tasks: task, Exp: user.Exp}, nil
}

// Complete marks taskType done for today. Experience is granted only the
// first time per day.
func (s *DailyTaskService) Complete(ctx context.Context, userID uint, taskType string) (*CompleteTaskResult, error) {
	if !models.ValidTask(taskType) {
		return nil, models.NewInvalidArgumentError(models.CodeInvalidTask, "Unknown task type")
	}

	task, completedNow, err := s.taskRepo.Complete(ctx, userID, models.TaskDateFor(s.now()), taskType, models.DailyTaskExp)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &CompleteTaskResult{
		DailyTasksView:   DailyTasksView{Tasks: task, Exp: user.Exp},
		AlreadyCompleted: !completedNow,
	}
	if completedNow {
		res.ExpAdded = models.DailyTaskExp
	}
	return res, nil
}
