package models

import "time"

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:ux_tags_user_name,unique;not null" json:"user_id"`
	Name      string    `gorm:"type:varchar(100);index:ux_tags_user_name,unique;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
