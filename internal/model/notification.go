package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationTypeLike          = "like"
	NotificationTypeComment       = "comment"
	NotificationTypeFollow        = "follow"
	NotificationTypeFollowRequest = "follow_request"
)

// Notification 持久化的通知记录 与推送事件(event.Event)生命周期相互独立:
// 接收者离线时事件丢失 而通知记录保留 等待下次拉取
type Notification struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RecipientID uint           `gorm:"not null;index" json:"recipient_id"`
	SenderID    uint           `gorm:"not null" json:"sender_id"`
	Type        string         `gorm:"type:varchar(30);not null" json:"type"`
	Message     string         `gorm:"type:varchar(500)" json:"message"`
	PhotoID     uint           `gorm:"default:0" json:"photo_id,omitempty"`
	Read        bool           `gorm:"default:false;index" json:"read"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender"`
}
