package models

import "time"

type Question struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"not null" json:"description"`
	Attempt     string `json:"attempt"`
	AuthorID    int    `json:"author_id"`
	Author      User   `gorm:"foreignKey:AuthorID" json:"author"`
	CommunityID *int   `json:"community_id,omitempty"`

	Views int `gorm:"default:0" json:"views"`
	// Denormalized count of non-deleted answers, maintained in the same
	// transaction as the answer mutation that changes it.
	AnswersCount int  `gorm:"default:0" json:"answers_count"`
	IsDeleted    bool `gorm:"default:false" json:"-"`

	Tags []Tag `gorm:"many2many:question_tags" json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateQuestionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Attempt     string   `json:"attempt"`
	Tags        []string `json:"tags"`
	CommunityID *int     `json:"community_id"`
}
