package repository

import (
	"errors"
	"looknest/internal/model"
	"looknest/pkg/db"

	"gorm.io/gorm"
)

// PhotoRepository 处理照片及点赞的持久化
type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository() *PhotoRepository {
	return &PhotoRepository{db: db.DB}
}

func (r *PhotoRepository) Create(photo *model.Photo) error {
	return r.db.Create(photo).Error
}

func (r *PhotoRepository) Delete(photo *model.Photo) error {
	return r.db.Delete(photo).Error
}

// 通过ID查找照片
func (r *PhotoRepository) FindByID(id uint) (*model.Photo, error) {
	var photo model.Photo
	if err := r.db.Preload("Owner").First(&photo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // 照片不存在
		}
		return nil, err
	}
	return &photo, nil
}

// 按创建时间倒序返回所有照片
func (r *PhotoRepository) FindAll(limit, offset int) ([]*model.Photo, error) {
	var photos []*model.Photo
	err := r.db.Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// 返回指定用户的照片
func (r *PhotoRepository) FindByOwner(ownerID uint, limit, offset int) ([]*model.Photo, error) {
	var photos []*model.Photo
	err := r.db.Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// AddLike 幂等由唯一主键保证 重复点赞返回错误
func (r *PhotoRepository) AddLike(photoID, userID uint) error {
	return r.db.Create(&model.Like{PhotoID: photoID, UserID: userID}).Error
}

func (r *PhotoRepository) RemoveLike(photoID, userID uint) error {
	return r.db.Where("photo_id = ? AND user_id = ?", photoID, userID).Delete(&model.Like{}).Error
}

func (r *PhotoRepository) HasLiked(photoID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Like{}).
		Where("photo_id = ? AND user_id = ?", photoID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PhotoRepository) CountLikes(photoID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Like{}).Where("photo_id = ?", photoID).Count(&count).Error
	return count, err
}

func (r *PhotoRepository) SavePhoto(photoID, userID uint) error {
	return r.db.Create(&model.SavedPhoto{PhotoID: photoID, UserID: userID}).Error
}

func (r *PhotoRepository) UnsavePhoto(photoID, userID uint) error {
	return r.db.Where("photo_id = ? AND user_id = ?", photoID, userID).Delete(&model.SavedPhoto{}).Error
}

func (r *PhotoRepository) HasSaved(photoID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.SavedPhoto{}).
		Where("photo_id = ? AND user_id = ?", photoID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// 用户收藏的照片 按收藏时间倒序
func (r *PhotoRepository) FindSavedByUser(userID uint, limit, offset int) ([]*model.Photo, error) {
	var photos []*model.Photo
	err := r.db.Preload("Owner").
		Joins("JOIN saved_photos ON saved_photos.photo_id = photos.id").
		Where("saved_photos.user_id = ?", userID).
		Order("saved_photos.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}
