package api

import (
	"errors"
	"net/http"
	"strconv"

	"looknest/internal/model"
	"looknest/internal/service"
	"looknest/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PhotoHandler struct {
	photoService *service.PhotoService
}

func NewPhotoHandler(photoService *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

func (h *PhotoHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req service.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.L.Warn("Failed to bind Upload request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	photo, err := h.photoService.Upload(userID, req)
	if err != nil {
		logger.L.Error("Error uploading photo via service", zap.Error(err), zap.Uint("ownerID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Photo uploaded successfully",
		"photo":   photoResponse(photo),
	})
}

func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	limit, offset, ok := getPagination(c)
	if !ok {
		return
	}

	photos, err := h.photoService.ListPhotos(limit, offset)
	if err != nil {
		logger.L.Error("Error listing photos from service", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve photos"})
		return
	}

	responsePhotos := make([]gin.H, 0, len(photos))
	for _, p := range photos {
		responsePhotos = append(responsePhotos, photoResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{"photos": responsePhotos})
}

func (h *PhotoHandler) GetPhoto(c *gin.Context) {
	photoID, ok := getIDFromParam(c, "photo_id")
	if !ok {
		return
	}

	photo, err := h.photoService.GetPhoto(photoID)
	if err != nil {
		if errors.Is(err, service.ErrPhotoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		} else {
			logger.L.Error("Error getting photo from service", zap.Error(err), zap.Uint("photoID", photoID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve photo"})
		}
		return
	}

	resp := photoResponse(photo)
	comments := make([]gin.H, 0, len(photo.Comments))
	for _, cm := range photo.Comments {
		comments = append(comments, gin.H{
			"id":         cm.ID,
			"author_id":  cm.AuthorID,
			"text":       cm.Text,
			"created_at": cm.CreatedAt,
		})
	}
	resp["comments"] = comments

	c.JSON(http.StatusOK, gin.H{"photo": resp})
}

func (h *PhotoHandler) ListUserPhotos(c *gin.Context) {
	ownerID, ok := getIDFromParam(c, "user_id")
	if !ok {
		return
	}

	limit, offset, ok := getPagination(c)
	if !ok {
		return
	}

	photos, err := h.photoService.ListByOwner(ownerID, limit, offset)
	if err != nil {
		logger.L.Error("Error listing user photos from service", zap.Error(err), zap.Uint("ownerID", ownerID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve photos"})
		return
	}

	responsePhotos := make([]gin.H, 0, len(photos))
	for _, p := range photos {
		responsePhotos = append(responsePhotos, photoResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{"photos": responsePhotos})
}

func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	photoID, ok := getIDFromParam(c, "photo_id")
	if !ok {
		return
	}

	if err := h.photoService.Delete(userID, photoID); err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete this photo"})
		default:
			logger.L.Error("Error deleting photo via service", zap.Error(err), zap.Uint("photoID", photoID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted successfully"})
}

func (h *PhotoHandler) ToggleLike(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	photoID, ok := getIDFromParam(c, "photo_id")
	if !ok {
		return
	}

	liked, count, err := h.photoService.ToggleLike(userID, photoID)
	if err != nil {
		if errors.Is(err, service.ErrPhotoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		} else {
			logger.L.Error("Error toggling like via service", zap.Error(err), zap.Uint("photoID", photoID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":      liked,
		"like_count": count,
	})
}

func (h *PhotoHandler) SavePhoto(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	photoID, ok := getIDFromParam(c, "photo_id")
	if !ok {
		return
	}

	if err := h.photoService.Save(userID, photoID); err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		case errors.Is(err, service.ErrAlreadySaved):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.L.Error("Error saving photo via service", zap.Error(err), zap.Uint("photoID", photoID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo saved successfully"})
}

func (h *PhotoHandler) UnsavePhoto(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	photoID, ok := getIDFromParam(c, "photo_id")
	if !ok {
		return
	}

	if err := h.photoService.Unsave(userID, photoID); err != nil {
		logger.L.Error("Error unsaving photo via service", zap.Error(err), zap.Uint("photoID", photoID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo unsaved successfully"})
}

func (h *PhotoHandler) ListSavedPhotos(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	limit, offset, ok := getPagination(c)
	if !ok {
		return
	}

	photos, err := h.photoService.ListSaved(userID, limit, offset)
	if err != nil {
		logger.L.Error("Error listing saved photos from service", zap.Error(err), zap.Uint("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve saved photos"})
		return
	}

	responsePhotos := make([]gin.H, 0, len(photos))
	for _, p := range photos {
		responsePhotos = append(responsePhotos, photoResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{"photos": responsePhotos})
}

func (h *PhotoHandler) AddComment(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	photoID, ok := getIDFromParam(c, "photo_id")
	if !ok {
		return
	}

	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	comment, err := h.photoService.AddComment(userID, photoID, req)
	if err != nil {
		if errors.Is(err, service.ErrPhotoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		} else {
			logger.L.Error("Error adding comment via service", zap.Error(err), zap.Uint("photoID", photoID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": gin.H{
			"id":         comment.ID,
			"photo_id":   comment.PhotoID,
			"author_id":  comment.AuthorID,
			"text":       comment.Text,
			"created_at": comment.CreatedAt,
		},
	})
}

func (h *PhotoHandler) EditComment(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	commentID, ok := getIDFromParam(c, "comment_id")
	if !ok {
		return
	}

	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	comment, err := h.photoService.EditComment(userID, commentID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit this comment"})
		default:
			logger.L.Error("Error editing comment via service", zap.Error(err), zap.Uint("commentID", commentID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit comment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully",
		"comment": gin.H{
			"id":   comment.ID,
			"text": comment.Text,
		},
	})
}

func (h *PhotoHandler) DeleteComment(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	commentID, ok := getIDFromParam(c, "comment_id")
	if !ok {
		return
	}

	if err := h.photoService.DeleteComment(userID, commentID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete this comment"})
		default:
			logger.L.Error("Error deleting comment via service", zap.Error(err), zap.Uint("commentID", commentID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func photoResponse(p *model.Photo) gin.H {
	resp := gin.H{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"image_url":   p.ImageURL,
		"owner_id":    p.OwnerID,
		"created_at":  p.CreatedAt,
	}
	if p.Owner.ID != 0 {
		resp["owner_username"] = p.Owner.Username
	}
	return resp
}

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	userID, ok := userIDValue.(uint)
	if !ok {
		logger.L.Error("Invalid userID type in context", zap.Any("userIDValue", userIDValue))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID in context"})
		return 0, false
	}
	return userID, true
}

func getIDFromParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id64, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id64), true
}

func getPagination(c *gin.Context) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset parameter"})
		return 0, 0, false
	}
	return limit, offset, true
}
