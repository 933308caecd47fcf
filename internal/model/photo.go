package model

import (
	"time"

	"gorm.io/gorm"
)

type Photo struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"type:text;not null" json:"image_url"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Owner    User      `gorm:"foreignKey:OwnerID" json:"owner"`
	Comments []Comment `gorm:"foreignKey:PhotoID" json:"comments,omitempty"`
}

// Like 点赞记录 每个用户对一张照片最多一条
type Like struct {
	PhotoID   uint      `gorm:"primaryKey;autoIncrement:false" json:"photo_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Photo Photo `gorm:"foreignKey:PhotoID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

// SavedPhoto 收藏记录 每个用户对一张照片最多收藏一次
type SavedPhoto struct {
	PhotoID   uint      `gorm:"primaryKey;autoIncrement:false" json:"photo_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Photo Photo `gorm:"foreignKey:PhotoID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}
