package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("askstack_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	t.Setenv("DB_HOST", host)
	t.Setenv("DB_PORT", port.Port())
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "askstack_test")
	t.Setenv("DB_SSLMODE", "disable")
}

func TestInitializeSchema(t *testing.T) {
	startPostgres(t)

	db, err := NewDatabase()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Initialize())
	// Idempotent.
	require.NoError(t, db.Initialize())

	var count int
	require.NoError(t, db.DB.QueryRow(
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public'").Scan(&count))
	assert.GreaterOrEqual(t, count, 7)
}

// One vote row per (user, answer) pair and only the two known vote types.
// The vote ledger leans on both constraints.
func TestVoteConstraints(t *testing.T) {
	startPostgres(t)

	db, err := NewDatabase()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Initialize())

	_, err = db.DB.Exec(`INSERT INTO users (username, email, password) VALUES
		('alice', 'alice@example.com', 'x'), ('bob', 'bob@example.com', 'x')`)
	require.NoError(t, err)
	_, err = db.DB.Exec(`INSERT INTO questions (title, description, author_id)
		VALUES ('t', 'd', 1)`)
	require.NoError(t, err)
	_, err = db.DB.Exec(`INSERT INTO answers (content, author_id, question_id)
		VALUES ('a', 1, 1)`)
	require.NoError(t, err)

	_, err = db.DB.Exec(`INSERT INTO votes (user_id, answer_id, type) VALUES (2, 1, 'UPVOTE')`)
	require.NoError(t, err)

	_, err = db.DB.Exec(`INSERT INTO votes (user_id, answer_id, type) VALUES (2, 1, 'DOWNVOTE')`)
	assert.Error(t, err, "second vote by the same user on the same answer must be rejected")

	_, err = db.DB.Exec(`INSERT INTO votes (user_id, answer_id, type) VALUES (1, 1, 'SIDEWAYS')`)
	assert.Error(t, err, "unknown vote types must be rejected")
}
