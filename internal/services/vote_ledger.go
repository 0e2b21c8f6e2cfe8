package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/askstack/backend/internal/metrics"
	"github.com/askstack/backend/internal/models"
)

// VoteLedger owns the vote rows and every reputation mutation they cause.
// No other component writes reputation for vote events.
type VoteLedger struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewVoteLedger(db *gorm.DB, notifier *Notifier) *VoteLedger {
	return &VoteLedger{db: db, notifier: notifier}
}

// VoteResult reports the outcome of one CastVote call.
type VoteResult struct {
	Action           string           `json:"action"` // created, changed, removed
	VoteType         *models.VoteType `json:"voteType"`
	Message          string           `json:"message"`
	Upvotes          int              `json:"upvotes"`
	Downvotes        int              `json:"downvotes"`
	NetVotes         int              `json:"netVotes"`
	UserVote         *models.VoteType `json:"userVote"`
	ReputationChange int              `json:"reputationChange"`
	AuthorReputation int              `json:"authorReputation"`
	AnswerID         int              `json:"answerId"`
	QuestionID       int              `json:"questionId"`
}

// CastVote applies a voter's intent on an answer. The vote row mutation,
// the author's reputation adjustment and any milestone notification commit
// as one transaction. The vote state is re-read inside the transaction; a
// duplicate-key failure from a racing insert reruns the transaction, which
// then takes the update path.
func (l *VoteLedger) CastVote(voterID, answerID int, voteType models.VoteType) (*VoteResult, error) {
	if !voteType.Valid() {
		return nil, fmt.Errorf("%w: vote type must be UPVOTE or DOWNVOTE", ErrValidation)
	}

	var voter models.User
	if err := l.db.First(&voter, voterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, err
	}

	var answer models.Answer
	if err := l.db.Where("id = ? AND is_deleted = ?", answerID, false).First(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %w", ErrNotFound)
		}
		return nil, err
	}

	if answer.AuthorID == voterID {
		return nil, ErrSelfVote
	}

	var result *VoteResult
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		result, err = l.apply(voterID, &answer, voteType)
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		// Lost the insert race; the retry re-reads the winner's row.
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: concurrent vote", ErrConflict)
		}
		return nil, err
	}

	metrics.VotesCast.WithLabelValues(result.Action).Inc()
	return result, nil
}

func (l *VoteLedger) apply(voterID int, answer *models.Answer, voteType models.VoteType) (*VoteResult, error) {
	result := &VoteResult{AnswerID: answer.ID, QuestionID: answer.QuestionID}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Vote
		findErr := tx.Where("user_id = ? AND answer_id = ?", voterID, answer.ID).First(&existing).Error

		var delta int
		switch {
		case findErr == nil && existing.Type == voteType:
			// Same vote again: toggle off.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			delta = voteDelta(&existing.Type, nil)
			result.Action = "removed"
			result.Message = "Vote removed successfully"

		case findErr == nil:
			// Opposite vote: flip in place.
			oldType := existing.Type
			existing.Type = voteType
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			delta = voteDelta(&oldType, &voteType)
			result.Action = "changed"
			result.VoteType = &voteType
			result.UserVote = &voteType
			result.Message = fmt.Sprintf("Vote changed to %s successfully", strings.ToLower(string(voteType)))

		case errors.Is(findErr, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: voterID, AnswerID: answer.ID, Type: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			delta = voteDelta(nil, &voteType)
			result.Action = "created"
			result.VoteType = &voteType
			result.UserVote = &voteType
			result.Message = fmt.Sprintf("%s added successfully", strings.ToLower(string(voteType)))

			if voteType == models.Upvote {
				if err := l.maybeNotifyMilestone(tx, answer); err != nil {
					return err
				}
			}

		default:
			return findErr
		}

		if err := tx.Model(&models.User{}).Where("id = ?", answer.AuthorID).
			Update("reputation", gorm.Expr("reputation + ?", delta)).Error; err != nil {
			return err
		}
		result.ReputationChange = delta

		var up, down int64
		if err := tx.Model(&models.Vote{}).Where("answer_id = ? AND type = ?", answer.ID, models.Upvote).Count(&up).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Vote{}).Where("answer_id = ? AND type = ?", answer.ID, models.Downvote).Count(&down).Error; err != nil {
			return err
		}
		result.Upvotes = int(up)
		result.Downvotes = int(down)
		result.NetVotes = int(up - down)

		var author models.User
		if err := tx.First(&author, answer.AuthorID).Error; err != nil {
			return err
		}
		result.AuthorReputation = author.Reputation

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// maybeNotifyMilestone emits only when the vote just cast lands the upvote
// count exactly on a milestone value. Counts that pass a milestone without
// touching it stay silent.
func (l *VoteLedger) maybeNotifyMilestone(tx *gorm.DB, answer *models.Answer) error {
	var upvotes int64
	if err := tx.Model(&models.Vote{}).Where("answer_id = ? AND type = ?", answer.ID, models.Upvote).Count(&upvotes).Error; err != nil {
		return err
	}

	if !voteMilestones[int(upvotes)] {
		return nil
	}

	message := fmt.Sprintf("Your answer has reached %d upvotes!", upvotes)
	return l.notifier.NotifyTx(tx, answer.AuthorID, models.NotificationVoteThreshold, message, answer.ID, "Answer")
}
