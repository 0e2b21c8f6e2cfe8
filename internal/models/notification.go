package models

import "time"

const (
	NotificationAnswerAccepted   = "ANSWER_ACCEPTED"
	NotificationVoteThreshold    = "VOTE_THRESHOLD"
	NotificationAnswerToQuestion = "ANSWER_TO_QUESTION"
	NotificationCommentOnAnswer  = "COMMENT_ON_ANSWER"
)

// Notification rows are write-once: created inside the transaction of the
// event that triggered them, never mutated afterwards except for the read
// flag.
type Notification struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	RecipientID int       `gorm:"index" json:"recipient_id"`
	Type        string    `gorm:"size:30;index" json:"type"`
	Message     string    `json:"message"`
	EntityID    int       `json:"entity_id"`
	EntityType  string    `gorm:"size:20" json:"entity_type"` // Answer, Comment
	IsRead      bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
