package service

import (
	"errors"
	"fmt"
	"looknest/internal/model"
	"looknest/internal/push"
	"looknest/internal/repository"
	"looknest/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCannotFollow    = errors.New("cannot follow yourself")
	ErrAlreadyFollowed = errors.New("already following or requested")
	ErrRequestNotFound = errors.New("follow request not found")
)

// FollowService 关注关系
// 公开账号直接生效 私密账号先创建pending请求 被接受后生效
type FollowService struct {
	followRepo       *repository.FollowRepository
	userRepo         *repository.UserRepository
	notificationRepo *repository.NotificationRepository
	notifier         *push.Notifier
}

func NewFollowService(
	followRepo *repository.FollowRepository,
	userRepo *repository.UserRepository,
	notificationRepo *repository.NotificationRepository,
	notifier *push.Notifier,
) *FollowService {
	return &FollowService{
		followRepo:       followRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
	}
}

// Follow 关注一个用户 返回生效的关注记录
func (s *FollowService) Follow(followerID, followedID uint) (*model.Follow, error) {
	if followerID == followedID {
		return nil, ErrCannotFollow
	}

	target, err := s.userRepo.FindByID(followedID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.followRepo.FindPair(followerID, followedID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyFollowed
	}

	follow := &model.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		Status:     model.FollowStatusAccepted,
	}
	notificationType := model.NotificationTypeFollow
	if target.Private {
		follow.Status = model.FollowStatusPending
		notificationType = model.NotificationTypeFollowRequest
	}

	if err := s.followRepo.Create(follow); err != nil {
		return nil, fmt.Errorf("failed to save follow: %w", err)
	}

	s.createNotification(followedID, followerID, notificationType)

	// 提交成功后再推送
	if follow.Status == model.FollowStatusAccepted {
		// 自动接受: 双方的列表都变了
		s.notifier.FollowAccepted(followerID, followedID)
	} else {
		s.notifier.FollowRequested(followedID)
	}

	return follow, nil
}

// Accept 接受关注请求 只有被关注者能接受
func (s *FollowService) Accept(actorID, requestID uint) error {
	follow, err := s.followRepo.FindByID(requestID)
	if err != nil {
		return err
	}
	if follow == nil || follow.Status != model.FollowStatusPending {
		return ErrRequestNotFound
	}
	if follow.FollowedID != actorID {
		return ErrNotOwner
	}

	follow.Status = model.FollowStatusAccepted
	if err := s.followRepo.Update(follow); err != nil {
		return err
	}

	s.createNotification(follow.FollowerID, actorID, model.NotificationTypeFollow)

	// 两边都要刷新各自的列表
	s.notifier.FollowAccepted(follow.FollowerID, follow.FollowedID)
	return nil
}

// Reject 拒绝关注请求 不产生任何推送
func (s *FollowService) Reject(actorID, requestID uint) error {
	follow, err := s.followRepo.FindByID(requestID)
	if err != nil {
		return err
	}
	if follow == nil || follow.Status != model.FollowStatusPending {
		return ErrRequestNotFound
	}
	if follow.FollowedID != actorID {
		return ErrNotOwner
	}

	return s.followRepo.Delete(follow)
}

// Unfollow 取消关注(或撤回请求)
func (s *FollowService) Unfollow(followerID, followedID uint) error {
	follow, err := s.followRepo.FindPair(followerID, followedID)
	if err != nil {
		return err
	}
	if follow == nil {
		return ErrRequestNotFound
	}

	accepted := follow.Status == model.FollowStatusAccepted
	if err := s.followRepo.Delete(follow); err != nil {
		return err
	}

	if accepted {
		s.notifier.FollowRemoved(followerID, followedID)
	}
	return nil
}

func (s *FollowService) Following(userID uint) ([]*model.Follow, error) {
	return s.followRepo.FindFollowing(userID)
}

func (s *FollowService) Followers(userID uint) ([]*model.Follow, error) {
	return s.followRepo.FindFollowers(userID)
}

func (s *FollowService) PendingRequests(userID uint) ([]*model.Follow, error) {
	return s.followRepo.FindPendingRequests(userID)
}

func (s *FollowService) createNotification(recipientID, senderID uint, notificationType string) {
	message := "started following you"
	if notificationType == model.NotificationTypeFollowRequest {
		message = "requested to follow you"
	}
	notification := &model.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notificationType,
		Message:     message,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		// 通知记录失败不回滚关注
		logger.L.Error("Failed to save follow notification",
			zap.Uint("recipientID", recipientID), zap.Error(err))
	}
}
