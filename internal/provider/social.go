package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/actuallystonmai/bookfeed-service/internal/domain"
	"github.com/rs/zerolog"
)

// Base scores for followed activity. Social provenance sits above most
// algorithmic scores.
const (
	reviewBaseScore    = 0.6
	reviewRatingBonus  = 0.06 // per rating point, 5 stars => 0.9
	finishedReadScore  = 0.75
	startedReadScore   = 0.6
	shelfAddScore      = 0.55
	otherActivityScore = 0.5
	maxActivityRating  = 5.0
)

var socialActivityTypes = []domain.ActivityType{
	domain.ActivityReview,
	domain.ActivityReading,
	domain.ActivityShelf,
}

// Social translates the follow graph plus the activity log into candidates.
type Social struct {
	graph    SocialGraphStore
	activity ActivityStore
	logger   zerolog.Logger
}

func NewSocial(graph SocialGraphStore, activity ActivityStore, logger zerolog.Logger) *Social {
	return &Social{
		graph:    graph,
		activity: activity,
		logger:   logger.With().Str("component", "provider.social").Logger(),
	}
}

// FollowedUsersUpdates returns the latest book activity of accounts userID
// follows, newest first. No follows is an empty result, not an error.
func (s *Social) FollowedUsersUpdates(ctx context.Context, userID int64, limit int, since *time.Time) ([]FollowedUpdate, error) {
	following, err := s.graph.FindFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch following for user %d: %w", userID, err)
	}
	if len(following) == 0 {
		s.logger.Debug().Int64("user_id", userID).Msg("user follows nobody")
		return nil, nil
	}

	acts, err := s.activity.FindRecentActivity(ctx, domain.ActivityQuery{
		ActorIDs: following,
		Types:    socialActivityTypes,
		Since:    since,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch activity of %d followed users: %w", len(following), err)
	}

	updates := make([]FollowedUpdate, 0, len(acts))
	for _, a := range acts {
		if a.Book == nil {
			continue
		}
		if since != nil && !a.CreatedAt.After(*since) {
			continue
		}
		updates = append(updates, FollowedUpdate{
			Activity: a,
			Score:    ActivityScore(a),
			Reason:   fmt.Sprintf("%s%s:%s", ReasonFollowingPrefix, a.Type, a.Action),
		})
	}

	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].Activity.CreatedAt.After(updates[j].Activity.CreatedAt)
	})
	return truncate(updates, limit), nil
}

// ActivityScore is the fixed base score of a followed activity.
func ActivityScore(a domain.Activity) float64 {
	switch a.Type {
	case domain.ActivityReview:
		rating := min(max(a.Rating, 0), maxActivityRating)
		return reviewBaseScore + reviewRatingBonus*rating
	case domain.ActivityReading:
		if a.Action == domain.ActionFinished {
			return finishedReadScore
		}
		return startedReadScore
	case domain.ActivityShelf:
		return shelfAddScore
	}
	return otherActivityScore
}
