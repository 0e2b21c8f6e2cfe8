package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
)

type CommentService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewCommentService(db *gorm.DB, notifier *Notifier) *CommentService {
	return &CommentService{db: db, notifier: notifier}
}

// Create stores a comment on an answer and fans out up to two notifications:
// one to the answer author and one to the question author, skipping the
// commenter and never duplicating a recipient.
func (s *CommentService) Create(answerID, authorID int, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	// Character limits, not byte limits.
	if utf8.RuneCountInString(content) < 5 {
		return nil, fmt.Errorf("%w: comment content must be at least 5 characters long", ErrValidation)
	}
	if utf8.RuneCountInString(content) > 600 {
		return nil, fmt.Errorf("%w: comment content must be 600 characters or less", ErrValidation)
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, err
	}

	var answer models.Answer
	err := s.db.Where("id = ? AND is_deleted = ?", answerID, false).
		Preload("Question").First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %w", ErrNotFound)
		}
		return nil, err
	}

	comment := models.Comment{
		Content:  content,
		AuthorID: authorID,
		AnswerID: answerID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		if answer.AuthorID != authorID {
			message := fmt.Sprintf("%s commented on your answer to %q", author.Username, answer.Question.Title)
			if err := s.notifier.NotifyTx(tx, answer.AuthorID, models.NotificationCommentOnAnswer,
				message, comment.ID, "Comment"); err != nil {
				return err
			}
		}

		questionAuthorID := answer.Question.AuthorID
		if questionAuthorID != authorID && questionAuthorID != answer.AuthorID {
			message := fmt.Sprintf("%s commented on an answer to your question %q", author.Username, answer.Question.Title)
			if err := s.notifier.NotifyTx(tx, questionAuthorID, models.NotificationCommentOnAnswer,
				message, comment.ID, "Comment"); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(&comment, comment.ID)
	return &comment, nil
}
