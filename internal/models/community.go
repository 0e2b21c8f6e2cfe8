package models

import "time"

type Community struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	BannerURL   string    `json:"banner_url"`
	IsPrivate   bool      `gorm:"default:false" json:"is_private"`
	OwnerID     int       `json:"owner_id"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	CommunityRoleOwner  = "OWNER"
	CommunityRoleMember = "MEMBER"
)

type CommunityMember struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	UserID      int       `gorm:"uniqueIndex:idx_members_user_community" json:"user_id"`
	CommunityID int       `gorm:"uniqueIndex:idx_members_user_community" json:"community_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	Role        string    `gorm:"size:10;default:MEMBER" json:"role"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
