package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
)

func newTestComments(t *testing.T) (*CommentService, *gorm.DB, *models.User, *models.User, *models.Answer) {
	t.Helper()
	db := setupTestDB(t)
	asker := createUser(t, db, "asker")
	answerer := createUser(t, db, "answerer")
	question := createQuestion(t, db, asker.ID, "Where does this value come from?")
	answer := createAnswer(t, db, answerer.ID, question.ID)
	svc := NewCommentService(db, NewNotifier())
	return svc, db, asker, answerer, answer
}

func TestCreateComment(t *testing.T) {
	svc, db, asker, answerer, answer := newTestComments(t)
	commenter := createUser(t, db, "commenter")

	comment, err := svc.Create(answer.ID, commenter.ID, "Have you considered the edge case?")
	require.NoError(t, err)

	assert.Equal(t, answer.ID, comment.AnswerID)
	assert.Equal(t, "commenter", comment.Author.Username)

	// Both the answer author and the question author hear about it.
	answererNotifs := notificationsFor(t, db, answerer.ID)
	require.Len(t, answererNotifs, 1)
	assert.Equal(t, models.NotificationCommentOnAnswer, answererNotifs[0].Type)

	askerNotifs := notificationsFor(t, db, asker.ID)
	require.Len(t, askerNotifs, 1)
	assert.Equal(t, models.NotificationCommentOnAnswer, askerNotifs[0].Type)

	// The commenter hears nothing.
	assert.Empty(t, notificationsFor(t, db, commenter.ID))
}

func TestCreateCommentByAnswerAuthor(t *testing.T) {
	svc, db, asker, answerer, answer := newTestComments(t)

	_, err := svc.Create(answer.ID, answerer.ID, "Clarifying my own answer here.")
	require.NoError(t, err)

	assert.Empty(t, notificationsFor(t, db, answerer.ID))
	assert.Len(t, notificationsFor(t, db, asker.ID), 1)
}

func TestCreateCommentByQuestionAuthor(t *testing.T) {
	svc, db, asker, answerer, answer := newTestComments(t)

	_, err := svc.Create(answer.ID, asker.ID, "Thanks, this solved my problem.")
	require.NoError(t, err)

	assert.Len(t, notificationsFor(t, db, answerer.ID), 1)
	assert.Empty(t, notificationsFor(t, db, asker.ID))
}

func TestCreateCommentSelfAnsweredQuestion(t *testing.T) {
	svc, db, asker, _, _ := newTestComments(t)
	// A question whose author also wrote the answer gets at most one
	// notification per comment.
	question := createQuestion(t, db, asker.ID, "A question I answered myself")
	answer := createAnswer(t, db, asker.ID, question.ID)
	commenter := createUser(t, db, "commenter")

	_, err := svc.Create(answer.ID, commenter.ID, "Nice self-contained writeup.")
	require.NoError(t, err)

	assert.Len(t, notificationsFor(t, db, asker.ID), 1)
}

func TestCreateCommentValidation(t *testing.T) {
	svc, db, _, _, answer := newTestComments(t)
	commenter := createUser(t, db, "commenter")

	_, err := svc.Create(answer.ID, commenter.ID, "  hi  ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(answer.ID, commenter.ID, strings.Repeat("x", 601))
	assert.ErrorIs(t, err, ErrValidation)

	comment, err := svc.Create(answer.ID, commenter.ID, "  valid  ")
	require.NoError(t, err)
	assert.Equal(t, "valid", comment.Content)
}

func TestCreateCommentMultibyteLength(t *testing.T) {
	svc, db, _, _, answer := newTestComments(t)
	commenter := createUser(t, db, "commenter")

	// 350 two-byte characters are well within the 600-character cap even
	// though the byte count is 700.
	_, err := svc.Create(answer.ID, commenter.ID, strings.Repeat("é", 350))
	assert.NoError(t, err)

	_, err = svc.Create(answer.ID, commenter.ID, strings.Repeat("é", 600))
	assert.NoError(t, err)

	_, err = svc.Create(answer.ID, commenter.ID, strings.Repeat("é", 601))
	assert.ErrorIs(t, err, ErrValidation)

	// Three CJK characters are nine bytes but still too short.
	_, err = svc.Create(answer.ID, commenter.ID, strings.Repeat("字", 3))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(answer.ID, commenter.ID, strings.Repeat("字", 5))
	assert.NoError(t, err)
}

func TestCreateCommentDeletedAnswer(t *testing.T) {
	svc, db, _, _, answer := newTestComments(t)
	commenter := createUser(t, db, "commenter")
	require.NoError(t, db.Model(&models.Answer{}).Where("id = ?", answer.ID).Update("is_deleted", true).Error)

	_, err := svc.Create(answer.ID, commenter.ID, "Commenting into the void.")
	assert.ErrorIs(t, err, ErrNotFound)
}
