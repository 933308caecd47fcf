package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FullName     string `gorm:"type:varchar(100)" json:"full_name"`
	Username     string `gorm:"type:varchar(30);not null;uniqueIndex" json:"username"`
	Email        string `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Password     string `gorm:"type:varchar(100);not null" json:"-"`
	Bio          string `gorm:"type:varchar(500)" json:"bio"`
	ProfileImage string `gorm:"type:varchar(255)" json:"profile_image"`
	// Settings 自由格式的用户设置 JSON对象 服务层负责编解码与浅合并
	Settings string `gorm:"type:json" json:"-"`
	// Private为true时 关注需要对方确认
	Private   bool           `gorm:"default:false" json:"private"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
