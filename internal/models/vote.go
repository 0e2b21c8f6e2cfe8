package models

import "time"

type VoteType string

const (
	Upvote   VoteType = "UPVOTE"
	Downvote VoteType = "DOWNVOTE"
)

// Valid reports whether t is one of the two known vote types.
func (t VoteType) Valid() bool {
	return t == Upvote || t == Downvote
}

// Vote tracks one user's vote on one answer. The unique index on
// (user_id, answer_id) is what serializes concurrent votes from the
// same user; the ledger retries on a duplicate-key failure.
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"uniqueIndex:idx_votes_user_answer" json:"user_id"`
	AnswerID  int       `gorm:"uniqueIndex:idx_votes_user_answer" json:"answer_id"`
	Type      VoteType  `gorm:"size:10;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
