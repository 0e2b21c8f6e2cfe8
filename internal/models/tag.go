package models

import "time"

type Tag struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WatchedTag links a user to a tag they follow.
type WatchedTag struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"uniqueIndex:idx_watched_user_tag" json:"user_id"`
	TagID     int       `gorm:"uniqueIndex:idx_watched_user_tag" json:"tag_id"`
	Tag       Tag       `gorm:"foreignKey:TagID" json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}
