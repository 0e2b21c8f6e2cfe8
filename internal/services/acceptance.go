package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/askstack/backend/internal/metrics"
	"github.com/askstack/backend/internal/models"
)

// AcceptanceService manages the single-accepted-answer-per-question invariant
// and the reputation and notification side effects of acceptance changes.
type AcceptanceService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewAcceptanceService(db *gorm.DB, notifier *Notifier) *AcceptanceService {
	return &AcceptanceService{db: db, notifier: notifier}
}

type AcceptanceResult struct {
	AnswerID                  int    `json:"id"`
	IsAccepted                bool   `json:"is_accepted"`
	Changed                   bool   `json:"-"`
	AuthorID                  int    `json:"author_id"`
	AuthorName                string `json:"author_name"`
	AuthorReputation          int    `json:"author_reputation"`
	QuestionID                int    `json:"question_id"`
	QuestionTitle             string `json:"question_title"`
	ReputationChange          int    `json:"-"`
	QuestionHasAcceptedAnswer bool   `json:"-"`
	Notification              string `json:"-"`
}

// Accept marks the answer as the question's accepted answer. Any previously
// accepted answer of the same question is unaccepted in the same transaction.
// The displaced answer's author keeps the earlier +15; only an explicit
// unaccept or deleting the accepted answer reverses it.
func (s *AcceptanceService) Accept(answerID, requesterID int) (*AcceptanceResult, error) {
	return s.setAccepted(answerID, requesterID, true)
}

// Unaccept clears the accepted flag and reverses the acceptance bonus.
func (s *AcceptanceService) Unaccept(answerID, requesterID int) (*AcceptanceResult, error) {
	return s.setAccepted(answerID, requesterID, false)
}

func (s *AcceptanceService) setAccepted(answerID, requesterID int, accepted bool) (*AcceptanceResult, error) {
	var answer models.Answer
	err := s.db.Where("id = ? AND is_deleted = ?", answerID, false).
		Preload("Author").Preload("Question").
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %w", ErrNotFound)
		}
		return nil, err
	}

	if answer.Question.AuthorID != requesterID {
		return nil, fmt.Errorf("%w: only the question author can mark answers as correct", ErrForbidden)
	}

	result := &AcceptanceResult{
		AnswerID:      answer.ID,
		AuthorID:      answer.AuthorID,
		AuthorName:    answer.Author.Username,
		QuestionID:    answer.QuestionID,
		QuestionTitle: answer.Question.Title,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if accepted {
			// Displace any currently accepted answer for this question.
			if err := tx.Model(&models.Answer{}).
				Where("question_id = ? AND is_accepted = ? AND id <> ?", answer.QuestionID, true, answer.ID).
				Update("is_accepted", false).Error; err != nil {
				return err
			}
		}

		// Guarded flip: zero affected rows means the answer is already in
		// the target state, so a racing call cannot apply the reputation
		// delta twice.
		flip := tx.Model(&models.Answer{}).
			Where("id = ? AND is_accepted = ?", answer.ID, !accepted).
			Update("is_accepted", accepted)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return nil
		}
		result.Changed = true

		// The bonus is granted only when the answer author is not the
		// requester, and reversed under the same condition so a
		// self-accepted answer never drains its author.
		if answer.AuthorID != requesterID {
			delta := 15
			if !accepted {
				delta = -15
			}
			if err := tx.Model(&models.User{}).Where("id = ?", answer.AuthorID).
				Update("reputation", gorm.Expr("reputation + ?", delta)).Error; err != nil {
				return err
			}
			result.ReputationChange = delta

			if accepted {
				result.Notification = fmt.Sprintf("Your answer to %q has been accepted!", answer.Question.Title)
				if err := s.notifier.NotifyTx(tx, answer.AuthorID, models.NotificationAnswerAccepted,
					result.Notification, answer.ID, "Answer"); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	result.IsAccepted = accepted

	if result.Changed {
		state := "unaccepted"
		if accepted {
			state = "accepted"
		}
		metrics.Acceptances.WithLabelValues(state).Inc()

		if result.Notification != "" {
			s.notifier.SendSMS(answer.Author.Phone, result.Notification)
		}
	}

	var author models.User
	if err := s.db.First(&author, answer.AuthorID).Error; err != nil {
		return nil, err
	}
	result.AuthorReputation = author.Reputation

	var acceptedCount int64
	if err := s.db.Model(&models.Answer{}).
		Where("question_id = ? AND is_accepted = ? AND is_deleted = ?", answer.QuestionID, true, false).
		Count(&acceptedCount).Error; err != nil {
		return nil, err
	}
	result.QuestionHasAcceptedAnswer = acceptedCount > 0

	return result, nil
}
