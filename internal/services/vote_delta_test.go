package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askstack/backend/internal/models"
)

func TestVoteDelta(t *testing.T) {
	up := models.Upvote
	down := models.Downvote

	tests := []struct {
		name    string
		oldType *models.VoteType
		newType *models.VoteType
		want    int
	}{
		{"create upvote", nil, &up, 10},
		{"create downvote", nil, &down, -2},
		{"remove upvote", &up, nil, -10},
		{"remove downvote", &down, nil, 5},
		{"flip upvote to downvote", &up, &down, -20},
		{"flip downvote to upvote", &down, &up, 15},
		{"no vote either side", nil, nil, 0},
		{"upvote unchanged", &up, &up, 0},
		{"downvote unchanged", &down, &down, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, voteDelta(tt.oldType, tt.newType))
		})
	}
}

// Removing a downvote restores more than casting it cost, and flipping is
// not the sum of remove plus create. These magnitudes are intentional, so
// pin them against accidental "fixes".
func TestVoteDeltaAsymmetry(t *testing.T) {
	up := models.Upvote
	down := models.Downvote

	assert.NotEqual(t, -voteDelta(nil, &down), voteDelta(&down, nil))
	assert.NotEqual(t, voteDelta(&up, nil)+voteDelta(nil, &down), voteDelta(&up, &down))
	assert.NotEqual(t, voteDelta(&down, nil)+voteDelta(nil, &up), voteDelta(&down, &up))
}

func TestVoteMilestones(t *testing.T) {
	for _, m := range []int{5, 10, 25, 50, 100, 250, 500, 1000} {
		assert.True(t, voteMilestones[m], "expected %d to be a milestone", m)
	}
	for _, m := range []int{0, 1, 4, 6, 99, 101, 999} {
		assert.False(t, voteMilestones[m], "did not expect %d to be a milestone", m)
	}
}
