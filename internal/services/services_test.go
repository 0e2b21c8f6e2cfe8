package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/askstack/backend/internal/models"
)

// setupTestDB opens an in-memory sqlite database migrated with the full
// schema. Each test gets its own database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Answer{},
		&models.Comment{},
		&models.Vote{},
		&models.Notification{},
		&models.Tag{},
		&models.WatchedTag{},
		&models.Community{},
		&models.CommunityMember{},
	)
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createQuestion(t *testing.T, db *gorm.DB, authorID int, title string) *models.Question {
	t.Helper()
	question := &models.Question{
		Title:       title,
		Description: "How does this work in detail?",
		AuthorID:    authorID,
	}
	require.NoError(t, db.Create(question).Error)
	return question
}

func createAnswer(t *testing.T, db *gorm.DB, authorID, questionID int) *models.Answer {
	t.Helper()
	answer := &models.Answer{
		Content:    "You can solve this by doing the following steps.",
		AuthorID:   authorID,
		QuestionID: questionID,
	}
	require.NoError(t, db.Create(answer).Error)
	return answer
}

func reputationOf(t *testing.T, db *gorm.DB, userID int) int {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Reputation
}

func notificationsFor(t *testing.T, db *gorm.DB, recipientID int) []models.Notification {
	t.Helper()
	var notifications []models.Notification
	require.NoError(t, db.Where("recipient_id = ?", recipientID).Order("id").Find(&notifications).Error)
	return notifications
}
