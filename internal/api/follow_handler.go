package api

import (
	"errors"
	"net/http"

	"looknest/internal/model"
	"looknest/internal/service"
	"looknest/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
	}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	targetID, ok := getIDFromParam(c, "user_id")
	if !ok {
		return
	}

	follow, err := h.followService.Follow(userID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotFollow):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, service.ErrAlreadyFollowed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.L.Error("Error creating follow via service", zap.Error(err),
				zap.Uint("followerID", userID), zap.Uint("followedID", targetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"follow": gin.H{
			"id":          follow.ID,
			"followed_id": follow.FollowedID,
			"status":      follow.Status,
		},
	})
}

func (h *FollowHandler) Accept(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	requestID, ok := getIDFromParam(c, "request_id")
	if !ok {
		return
	}

	if err := h.followService.Accept(userID, requestID); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Follow request not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the request target can accept"})
		default:
			logger.L.Error("Error accepting follow request via service", zap.Error(err), zap.Uint("requestID", requestID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept follow request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Follow request accepted"})
}

func (h *FollowHandler) Reject(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	requestID, ok := getIDFromParam(c, "request_id")
	if !ok {
		return
	}

	if err := h.followService.Reject(userID, requestID); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Follow request not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the request target can reject"})
		default:
			logger.L.Error("Error rejecting follow request via service", zap.Error(err), zap.Uint("requestID", requestID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject follow request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Follow request rejected"})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	targetID, ok := getIDFromParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.followService.Unfollow(userID, targetID); err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not following this user"})
		} else {
			logger.L.Error("Error removing follow via service", zap.Error(err),
				zap.Uint("followerID", userID), zap.Uint("followedID", targetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully"})
}

func (h *FollowHandler) Following(c *gin.Context) {
	userID, ok := getIDFromParam(c, "user_id")
	if !ok {
		return
	}

	follows, err := h.followService.Following(userID)
	if err != nil {
		logger.L.Error("Error listing following from service", zap.Error(err), zap.Uint("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve following"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": followsResponse(follows, false)})
}

func (h *FollowHandler) Followers(c *gin.Context) {
	userID, ok := getIDFromParam(c, "user_id")
	if !ok {
		return
	}

	follows, err := h.followService.Followers(userID)
	if err != nil {
		logger.L.Error("Error listing followers from service", zap.Error(err), zap.Uint("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve followers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": followsResponse(follows, true)})
}

func (h *FollowHandler) PendingRequests(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	follows, err := h.followService.PendingRequests(userID)
	if err != nil {
		logger.L.Error("Error listing pending requests from service", zap.Error(err), zap.Uint("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve follow requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": followsResponse(follows, true)})
}

// followsResponse 序列化关注关系列表 asFollowers 为真时呈现发起方 否则呈现被关注方
func followsResponse(follows []*model.Follow, asFollowers bool) []gin.H {
	resp := make([]gin.H, 0, len(follows))
	for _, f := range follows {
		entry := gin.H{
			"id":         f.ID,
			"status":     f.Status,
			"created_at": f.CreatedAt,
		}
		if asFollowers {
			entry["user_id"] = f.FollowerID
		} else {
			entry["user_id"] = f.FollowedID
		}
		resp = append(resp, entry)
	}
	return resp
}
