package repository

import (
	"errors"
	"looknest/internal/model"
	"looknest/pkg/db"

	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository() *FollowRepository {
	return &FollowRepository{db: db.DB}
}

func (r *FollowRepository) Create(follow *model.Follow) error {
	return r.db.Create(follow).Error
}

func (r *FollowRepository) Update(follow *model.Follow) error {
	return r.db.Save(follow).Error
}

func (r *FollowRepository) Delete(follow *model.Follow) error {
	return r.db.Delete(follow).Error
}

func (r *FollowRepository) FindByID(id uint) (*model.Follow, error) {
	var follow model.Follow
	if err := r.db.First(&follow, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

// 查找两个用户之间的关注关系(含pending)
func (r *FollowRepository) FindPair(followerID, followedID uint) (*model.Follow, error) {
	var follow model.Follow
	err := r.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

// 用户关注的人
func (r *FollowRepository) FindFollowing(followerID uint) ([]*model.Follow, error) {
	var follows []*model.Follow
	err := r.db.Preload("Followed").
		Where("follower_id = ? AND status = ?", followerID, model.FollowStatusAccepted).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

// 关注该用户的人
func (r *FollowRepository) FindFollowers(followedID uint) ([]*model.Follow, error) {
	var follows []*model.Follow
	err := r.db.Preload("Follower").
		Where("followed_id = ? AND status = ?", followedID, model.FollowStatusAccepted).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

// 待处理的关注请求
func (r *FollowRepository) FindPendingRequests(followedID uint) ([]*model.Follow, error) {
	var follows []*model.Follow
	err := r.db.Preload("Follower").
		Where("followed_id = ? AND status = ?", followedID, model.FollowStatusPending).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}
