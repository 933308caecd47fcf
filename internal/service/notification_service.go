package service

import (
	"errors"
	"looknest/internal/model"
	"looknest/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService 持久化通知的查询与已读标记
// 注意: 这里只管Notification记录 推送事件由各mutation服务自行触发
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) List(recipientID uint, limit, offset int) ([]*model.Notification, error) {
	return s.notificationRepo.FindByRecipient(recipientID, limit, offset)
}

func (s *NotificationService) UnreadCount(recipientID uint) (int64, error) {
	return s.notificationRepo.CountUnread(recipientID)
}

// MarkRead 只能标记自己的通知
func (s *NotificationService) MarkRead(actorID, notificationID uint) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != actorID {
		return ErrNotOwner
	}

	return s.notificationRepo.MarkRead(notificationID)
}

func (s *NotificationService) MarkAllRead(recipientID uint) error {
	return s.notificationRepo.MarkAllRead(recipientID)
}
