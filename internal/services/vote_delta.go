package services

import "github.com/askstack/backend/internal/models"

// Upvote milestones that trigger a one-time VOTE_THRESHOLD notification.
var voteMilestones = map[int]bool{
	5: true, 10: true, 25: true, 50: true, 100: true, 250: true, 500: true, 1000: true,
}

// voteDelta returns the reputation change applied to the answer author when a
// voter's vote transitions from oldType to newType. nil means no vote on that
// side of the transition.
//
// The magnitudes are deliberately asymmetric: casting a DOWNVOTE costs 2 but
// removing one restores 5, and the UPVOTE to DOWNVOTE flip applies -20 while
// the reverse flip applies +15.
func voteDelta(oldType, newType *models.VoteType) int {
	switch {
	case oldType == nil && newType == nil:
		return 0
	case oldType == nil:
		if *newType == models.Upvote {
			return 10
		}
		return -2
	case newType == nil:
		if *oldType == models.Upvote {
			return -10
		}
		return 5
	case *oldType == *newType:
		return 0
	case *newType == models.Upvote:
		return 15
	default:
		return -20
	}
}
