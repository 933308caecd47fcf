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
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotOwner        = errors.New("not authorized")
	ErrAlreadySaved    = errors.New("photo already saved")
)

// PhotoService 照片的上传/删除/点赞/评论
// 每个成功提交的变更之后通过Notifier产生推送事件 推送失败不影响请求结果
type PhotoService struct {
	photoRepo        *repository.PhotoRepository
	commentRepo      *repository.CommentRepository
	notificationRepo *repository.NotificationRepository
	notifier         *push.Notifier
}

func NewPhotoService(
	photoRepo *repository.PhotoRepository,
	commentRepo *repository.CommentRepository,
	notificationRepo *repository.NotificationRepository,
	notifier *push.Notifier,
) *PhotoService {
	return &PhotoService{
		photoRepo:        photoRepo,
		commentRepo:      commentRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
	}
}

type UploadRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	ImageURL    string `json:"image_url" binding:"required"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// Upload 上传新照片 成功后通知上传者自己的其他会话
func (s *PhotoService) Upload(ownerID uint, req UploadRequest) (*model.Photo, error) {
	photo := &model.Photo{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		OwnerID:     ownerID,
	}

	if err := s.photoRepo.Create(photo); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	s.notifier.PhotoUploaded(ownerID)
	return photo, nil
}

// Delete 只有所有者能删除
func (s *PhotoService) Delete(actorID, photoID uint) error {
	photo, err := s.photoRepo.FindByID(photoID)
	if err != nil {
		return err
	}
	if photo == nil {
		return ErrPhotoNotFound
	}
	if photo.OwnerID != actorID {
		return ErrNotOwner
	}

	if err := s.photoRepo.Delete(photo); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	s.notifier.PhotoDeleted(actorID)
	return nil
}

func (s *PhotoService) GetPhoto(photoID uint) (*model.Photo, error) {
	photo, err := s.photoRepo.FindByID(photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}

	comments, err := s.commentRepo.FindByPhoto(photoID)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		photo.Comments = append(photo.Comments, *c)
	}
	return photo, nil
}

func (s *PhotoService) ListPhotos(limit, offset int) ([]*model.Photo, error) {
	return s.photoRepo.FindAll(limit, offset)
}

func (s *PhotoService) ListByOwner(ownerID uint, limit, offset int) ([]*model.Photo, error) {
	return s.photoRepo.FindByOwner(ownerID, limit, offset)
}

// ToggleLike 点赞或取消点赞 返回操作后的点赞状态和数量
// 点赞他人照片时落库一条通知并推送 取消点赞不通知
func (s *PhotoService) ToggleLike(actorID, photoID uint) (bool, int64, error) {
	photo, err := s.photoRepo.FindByID(photoID)
	if err != nil {
		return false, 0, err
	}
	if photo == nil {
		return false, 0, ErrPhotoNotFound
	}

	liked, err := s.photoRepo.HasLiked(photoID, actorID)
	if err != nil {
		return false, 0, err
	}

	if liked {
		if err := s.photoRepo.RemoveLike(photoID, actorID); err != nil {
			return false, 0, err
		}
	} else {
		if err := s.photoRepo.AddLike(photoID, actorID); err != nil {
			return false, 0, err
		}

		// 给自己的照片点赞不产生通知
		if photo.OwnerID != actorID {
			notification := &model.Notification{
				RecipientID: photo.OwnerID,
				SenderID:    actorID,
				Type:        model.NotificationTypeLike,
				Message:     fmt.Sprintf("liked your photo %q", photo.Title),
				PhotoID:     photo.ID,
			}
			if err := s.notificationRepo.Create(notification); err != nil {
				// 通知记录失败不回滚点赞
				logger.L.Error("Failed to save like notification",
					zap.Uint("photoID", photoID), zap.Error(err))
			}
		}
	}

	// 推送在提交之后 Notifier内部处理自我通知抑制
	s.notifier.PhotoLiked(photo.OwnerID, actorID)

	count, err := s.photoRepo.CountLikes(photoID)
	if err != nil {
		return !liked, 0, err
	}
	return !liked, count, nil
}

// Save 收藏照片 重复收藏返回ErrAlreadySaved 收藏不产生推送
func (s *PhotoService) Save(actorID, photoID uint) error {
	photo, err := s.photoRepo.FindByID(photoID)
	if err != nil {
		return err
	}
	if photo == nil {
		return ErrPhotoNotFound
	}

	saved, err := s.photoRepo.HasSaved(photoID, actorID)
	if err != nil {
		return err
	}
	if saved {
		return ErrAlreadySaved
	}

	return s.photoRepo.SavePhoto(photoID, actorID)
}

// Unsave 取消收藏 未收藏时是no-op
func (s *PhotoService) Unsave(actorID, photoID uint) error {
	return s.photoRepo.UnsavePhoto(photoID, actorID)
}

// ListSaved 用户收藏的照片
func (s *PhotoService) ListSaved(userID uint, limit, offset int) ([]*model.Photo, error) {
	return s.photoRepo.FindSavedByUser(userID, limit, offset)
}

// AddComment 评论照片 评论他人照片时落库通知并推送
func (s *PhotoService) AddComment(actorID, photoID uint, req CommentRequest) (*model.Comment, error) {
	photo, err := s.photoRepo.FindByID(photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}

	comment := &model.Comment{
		PhotoID:  photoID,
		AuthorID: actorID,
		Text:     req.Text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	if photo.OwnerID != actorID {
		notification := &model.Notification{
			RecipientID: photo.OwnerID,
			SenderID:    actorID,
			Type:        model.NotificationTypeComment,
			Message:     fmt.Sprintf("commented on your photo %q: %q", photo.Title, req.Text),
			PhotoID:     photo.ID,
		}
		if err := s.notificationRepo.Create(notification); err != nil {
			logger.L.Error("Failed to save comment notification",
				zap.Uint("photoID", photoID), zap.Error(err))
		}
	}

	s.notifier.PhotoCommented(photo.OwnerID, actorID)
	return comment, nil
}

// EditComment 只有作者能编辑
func (s *PhotoService) EditComment(actorID, commentID uint, req CommentRequest) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.AuthorID != actorID {
		return nil, ErrNotOwner
	}

	comment.Text = req.Text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment 只有作者能删除
func (s *PhotoService) DeleteComment(actorID, commentID uint) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.AuthorID != actorID {
		return ErrNotOwner
	}

	return s.commentRepo.Delete(comment)
}
