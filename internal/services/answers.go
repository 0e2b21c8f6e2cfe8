package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
)

// AnswerService owns answer creation and soft-deletion, including the
// answers_count maintenance on the parent question.
type AnswerService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewAnswerService(db *gorm.DB, notifier *Notifier) *AnswerService {
	return &AnswerService{db: db, notifier: notifier}
}

// Create stores a new answer, increments the parent question's answers_count
// and notifies the question author, all in one transaction.
func (s *AnswerService) Create(content string, authorID, questionID int) (*models.Answer, error) {
	content = strings.TrimSpace(content)
	// Character limit, not a byte limit.
	if utf8.RuneCountInString(content) < 10 {
		return nil, fmt.Errorf("%w: answer content must be at least 10 characters long", ErrValidation)
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, err
	}

	var question models.Question
	if err := s.db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %w", ErrNotFound)
		}
		return nil, err
	}

	answer := models.Answer{
		Content:    content,
		AuthorID:   authorID,
		QuestionID: questionID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&answer).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Question{}).Where("id = ?", questionID).
			Update("answers_count", gorm.Expr("answers_count + ?", 1)).Error; err != nil {
			return err
		}

		if question.AuthorID != authorID {
			message := fmt.Sprintf("%s answered your question: %q", author.Username, question.Title)
			if err := s.notifier.NotifyTx(tx, question.AuthorID, models.NotificationAnswerToQuestion,
				message, answer.ID, "Answer"); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(&answer, answer.ID)
	return &answer, nil
}

// UpdateContent replaces the answer body. Author only.
func (s *AnswerService) UpdateContent(answerID, requesterID int, content string) (*models.Answer, error) {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < 10 {
		return nil, fmt.Errorf("%w: answer content must be at least 10 characters long", ErrValidation)
	}

	var answer models.Answer
	if err := s.db.Where("id = ? AND is_deleted = ?", answerID, false).First(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %w", ErrNotFound)
		}
		return nil, err
	}

	if answer.AuthorID != requesterID {
		return nil, fmt.Errorf("%w: you can only edit your own answers", ErrForbidden)
	}

	if err := s.db.Model(&answer).Update("content", content).Error; err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(&answer, answer.ID)
	return &answer, nil
}

// SoftDelete flags the answer deleted, decrements the question's
// answers_count and, when the answer was the accepted one, reverses the
// acceptance bonus. One transaction for all three.
func (s *AnswerService) SoftDelete(answerID, requesterID int) error {
	var answer models.Answer
	err := s.db.Where("id = ? AND is_deleted = ?", answerID, false).
		Preload("Question").First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("answer %w", ErrNotFound)
		}
		return err
	}

	if answer.AuthorID != requesterID {
		return fmt.Errorf("%w: you can only delete your own answers", ErrForbidden)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// The accepted flag can change between the load above and this
		// transaction; the reversal decision must use the stored state.
		var current models.Answer
		if err := tx.First(&current, answer.ID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"is_deleted": true}
		if current.IsAccepted {
			updates["is_accepted"] = false
		}
		if err := tx.Model(&models.Answer{}).Where("id = ?", answer.ID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Question{}).Where("id = ?", answer.QuestionID).
			Update("answers_count", gorm.Expr("answers_count - ?", 1)).Error; err != nil {
			return err
		}

		// Mirrors the grant condition in the acceptance machine: the +15
		// only ever existed when the answer author differed from the
		// question author.
		if current.IsAccepted && answer.AuthorID != answer.Question.AuthorID {
			if err := tx.Model(&models.User{}).Where("id = ?", answer.AuthorID).
				Update("reputation", gorm.Expr("reputation - ?", 15)).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// IncreaseView bumps the parent question's view counter for a viewed answer.
func (s *AnswerService) IncreaseView(answerID int) (*models.Question, error) {
	var answer models.Answer
	err := s.db.Where("id = ? AND is_deleted = ?", answerID, false).
		Preload("Question").First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %w", ErrNotFound)
		}
		return nil, err
	}

	if err := s.db.Model(&models.Question{}).Where("id = ?", answer.QuestionID).
		Update("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return nil, err
	}

	var question models.Question
	if err := s.db.First(&question, answer.QuestionID).Error; err != nil {
		return nil, err
	}
	return &question, nil
}
