package service

import (
	"context"

	"forum/internal/models"
	"forum/internal/repository"
)

// NotificationPageSize is the number of inbox entries per page.
const NotificationPageSize = 20

// NotificationService serves a user's own inbox.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the newest notifications first.
func (s *NotificationService) List(ctx context.Context, userID uint, page int) (*models.NotificationPage, error) {
	if page < 1 {
		page = 1
	}

	items, err := s.repo.ListByUser(ctx, userID, NotificationPageSize, (page-1)*NotificationPageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}

	total, unread, err := s.repo.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.NotificationPage{
		Notifications: items,
		Total:         total,
		Unread:        unread,
		Page:          page,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	_, unread, err := s.repo.Counts(ctx, userID)
	return unread, err
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uint) error {
	return s.repo.Delete(ctx, userID, notificationID)
}
