package repository

import (
	"errors"
	"looknest/internal/model"
	"looknest/pkg/db"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{db: db.DB}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) Update(comment *model.Comment) error {
	return r.db.Save(comment).Error
}

func (r *CommentRepository) Delete(comment *model.Comment) error {
	return r.db.Delete(comment).Error
}

func (r *CommentRepository) FindByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // 评论不存在
		}
		return nil, err
	}
	return &comment, nil
}

// 某张照片的评论 按时间正序
func (r *CommentRepository) FindByPhoto(photoID uint) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Preload("Author").
		Where("photo_id = ?", photoID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
