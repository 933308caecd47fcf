package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	FollowStatusPending  = "pending"
	FollowStatusAccepted = "accepted"
)

// Follow 关注关系 目标账号为私密时先处于pending状态
type Follow struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FollowerID uint           `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowedID uint           `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"followed_id"`
	Status     string         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower"`
	Followed User `gorm:"foreignKey:FollowedID" json:"followed"`
}
