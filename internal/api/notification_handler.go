package api

import (
	"errors"
	"net/http"

	"looknest/internal/service"
	"looknest/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	limit, offset, ok := getPagination(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.List(userID, limit, offset)
	if err != nil {
		logger.L.Error("Error listing notifications from service", zap.Error(err), zap.Uint("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	resp := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		entry := gin.H{
			"id":         n.ID,
			"sender_id":  n.SenderID,
			"type":       n.Type,
			"message":    n.Message,
			"read":       n.Read,
			"created_at": n.CreatedAt,
		}
		if n.PhotoID != 0 {
			entry["photo_id"] = n.PhotoID
		}
		resp = append(resp, entry)
	}

	c.JSON(http.StatusOK, gin.H{"notifications": resp})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		logger.L.Error("Error counting unread notifications", zap.Error(err), zap.Uint("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	notificationID, ok := getIDFromParam(c, "notification_id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(userID, notificationID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the recipient can mark this notification"})
		default:
			logger.L.Error("Error marking notification read", zap.Error(err), zap.Uint("notificationID", notificationID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(userID); err != nil {
		logger.L.Error("Error marking all notifications read", zap.Error(err), zap.Uint("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
