package models

import "time"

type Answer struct {
	ID         int      `gorm:"primaryKey" json:"id"`
	Content    string   `gorm:"not null" json:"content"`
	AuthorID   int      `json:"author_id"`
	Author     User     `gorm:"foreignKey:AuthorID" json:"author"`
	QuestionID int      `json:"question_id"`
	Question   Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`

	// At most one answer per question may be accepted; the acceptance
	// state machine clears any other accepted answer in the same
	// transaction that sets this one.
	IsAccepted bool `gorm:"default:false" json:"is_accepted"`
	IsDeleted  bool `gorm:"default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateAnswerRequest struct {
	Content    string `json:"content"`
	AuthorID   int    `json:"authorId"`
	QuestionID int    `json:"questionId"`
}
