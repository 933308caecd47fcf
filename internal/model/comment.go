package model

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PhotoID   uint           `gorm:"not null;index" json:"photo_id"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Photo  Photo `gorm:"foreignKey:PhotoID" json:"-"`
	Author User  `gorm:"foreignKey:AuthorID" json:"author"`
}
