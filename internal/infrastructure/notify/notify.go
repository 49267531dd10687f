// Package notify tells both sides of a match that it became mutual.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

const (
	Channel     = "sublease:matches"
	inboxPrefix = "sublease:notifications:"
	inboxSize   = 100
)

// InboxKey is the list holding a user's latest match notifications.
func InboxKey(userID domain.UserID) string {
	return inboxPrefix + string(userID)
}

// Explainer writes the human readable part of a notification.
type Explainer interface {
	ExplainMatch(ctx context.Context, match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) (string, error)
}

// MatchEvent is the payload published for a new mutual match.
type MatchEvent struct {
	MatchID     domain.MatchID   `json:"match_id"`
	SeekerID    domain.SeekerID  `json:"seeker_id"`
	ListingID   domain.ListingID `json:"listing_id"`
	HostID      domain.HostID    `json:"host_id"`
	Score       *float64         `json:"score"`
	MatchedAt   *time.Time       `json:"matched_at"`
	Explanation string           `json:"explanation"`
}

func newEvent(ctx context.Context, explainer Explainer, match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) (MatchEvent, error) {
	text, err := explainer.ExplainMatch(ctx, match, seeker, listing)
	if err != nil {
		return MatchEvent{}, fmt.Errorf("failed to explain match: %w", err)
	}
	return MatchEvent{
		MatchID:     match.ID,
		SeekerID:    match.SeekerID,
		ListingID:   match.ListingID,
		HostID:      listing.HostID,
		Score:       match.Score,
		MatchedAt:   match.MatchedAt,
		Explanation: text,
	}, nil
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// RedisNotifier publishes the event on Channel and keeps a copy in the
// inbox of the seeker and of the host.
type RedisNotifier struct {
	client    publisher
	explainer Explainer
	logger    *zap.Logger
}

func NewRedisNotifier(client *redis.Client, explainer Explainer, logger *zap.Logger) *RedisNotifier {
	return newRedisNotifier(client, explainer, logger)
}

func newRedisNotifier(client publisher, explainer Explainer, logger *zap.Logger) *RedisNotifier {
	if explainer == nil {
		explainer = TemplateExplainer{}
	}
	return &RedisNotifier{client: client, explainer: explainer, logger: logger}
}

func (n *RedisNotifier) MatchFormed(ctx context.Context, match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) error {
	event, err := newEvent(ctx, n.explainer, match, seeker, listing)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode match event: %w", err)
	}

	if err := n.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish match event: %w", err)
	}
	for _, userID := range []domain.UserID{seeker.UserID, listing.HostID.UserID()} {
		key := InboxKey(userID)
		if err := n.client.LPush(ctx, key, payload).Err(); err != nil {
			return fmt.Errorf("failed to push notification for %s: %w", userID, err)
		}
		if err := n.client.LTrim(ctx, key, 0, inboxSize-1).Err(); err != nil {
			return fmt.Errorf("failed to trim notifications for %s: %w", userID, err)
		}
	}

	n.logger.Debug("match notification sent", zap.String("match_id", string(match.ID)))
	return nil
}

// LogNotifier writes match events to the log. It is used when Redis is off.
type LogNotifier struct {
	explainer Explainer
	logger    *zap.Logger
}

func NewLogNotifier(explainer Explainer, logger *zap.Logger) *LogNotifier {
	if explainer == nil {
		explainer = TemplateExplainer{}
	}
	return &LogNotifier{explainer: explainer, logger: logger}
}

func (n *LogNotifier) MatchFormed(ctx context.Context, match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) error {
	event, err := newEvent(ctx, n.explainer, match, seeker, listing)
	if err != nil {
		return err
	}
	n.logger.Info("match formed",
		zap.String("match_id", string(event.MatchID)),
		zap.String("seeker_id", string(event.SeekerID)),
		zap.String("listing_id", string(event.ListingID)),
		zap.String("explanation", event.Explanation),
	)
	return nil
}

// TemplateExplainer builds the explanation from the profile fields alone.
type TemplateExplainer struct{}

func (TemplateExplainer) ExplainMatch(_ context.Context, match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) (string, error) {
	return TemplateExplanation(match, seeker, listing), nil
}

func TemplateExplanation(match *domain.Match, seeker *domain.SeekerProfile, listing *domain.Listing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You both liked each other: %q in %s", listing.Title, listing.City)
	if listing.State != "" {
		fmt.Fprintf(&sb, ", %s", listing.State)
	}
	sb.WriteString(".")
	if seeker.BudgetMax != nil && listing.PricePerMonth != nil && !listing.PricePerMonth.GreaterThan(*seeker.BudgetMax) {
		fmt.Fprintf(&sb, " The rent of %s fits the budget of %s.", listing.PricePerMonth, seeker.BudgetMax)
	}
	if match.Score != nil {
		fmt.Fprintf(&sb, " Match score %.0f%%.", *match.Score*100)
	}
	return sb.String()
}
