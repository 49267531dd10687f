package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

type fakeRedis struct {
	published map[string][]string
	lists     map[string][]string
	trims     map[string]int64
	err       error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		published: make(map[string][]string),
		lists:     make(map[string][]string),
		trims:     make(map[string]int64),
	}
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.published[channel] = append(f.published[channel], string(message.([]byte)))
	return redis.NewIntResult(1, nil)
}

func (f *fakeRedis) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		f.lists[key] = append([]string{string(v.([]byte))}, f.lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeRedis) LTrim(_ context.Context, key string, _, stop int64) *redis.StatusCmd {
	f.trims[key] = stop
	return redis.NewStatusResult("OK", nil)
}

func fixtures(t *testing.T) (*domain.Match, *domain.SeekerProfile, *domain.Listing) {
	t.Helper()
	budget, err := domain.ParseMoney("1000")
	require.NoError(t, err)
	price, err := domain.ParseMoney("850")
	require.NoError(t, err)
	score := 1.0
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Match{
			ID: "m-1", SeekerID: "seeker-1", ListingID: "listing-1",
			Status: domain.MatchMutual, Score: &score, MatchedAt: &at,
		},
		&domain.SeekerProfile{ID: "seeker-1", UserID: "seeker-1", City: "Austin", BudgetMax: &budget},
		&domain.Listing{ID: "listing-1", HostID: "host-1", Title: "Lake room", City: "Austin", State: "TX", PricePerMonth: &price}
}

func TestRedisNotifierPublishesAndFillsInboxes(t *testing.T) {
	fake := newFakeRedis()
	n := newRedisNotifier(fake, nil, zap.NewNop())
	m, s, l := fixtures(t)

	require.NoError(t, n.MatchFormed(context.Background(), m, s, l))

	require.Len(t, fake.published[Channel], 1)
	var event MatchEvent
	require.NoError(t, json.Unmarshal([]byte(fake.published[Channel][0]), &event))
	assert.Equal(t, domain.MatchID("m-1"), event.MatchID)
	assert.Equal(t, domain.HostID("host-1"), event.HostID)
	assert.Contains(t, event.Explanation, "Lake room")

	for _, key := range []string{"sublease:notifications:seeker-1", "sublease:notifications:host-1"} {
		assert.Len(t, fake.lists[key], 1, key)
		assert.Equal(t, int64(inboxSize-1), fake.trims[key], key)
	}
}

func TestRedisNotifierReportsPublishError(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection reset")
	n := newRedisNotifier(fake, TemplateExplainer{}, zap.NewNop())
	m, s, l := fixtures(t)

	err := n.MatchFormed(context.Background(), m, s, l)
	assert.ErrorIs(t, err, fake.err)
	assert.Empty(t, fake.lists)
}

type failingExplainer struct{}

func (failingExplainer) ExplainMatch(context.Context, *domain.Match, *domain.SeekerProfile, *domain.Listing) (string, error) {
	return "", errors.New("no explanation")
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(nil, zap.New(core))
	m, s, l := fixtures(t)

	require.NoError(t, n.MatchFormed(context.Background(), m, s, l))
	entries := logs.FilterMessage("match formed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "listing-1", entries[0].ContextMap()["listing_id"])

	n = NewLogNotifier(failingExplainer{}, zap.New(core))
	assert.Error(t, n.MatchFormed(context.Background(), m, s, l))
}

func TestTemplateExplanation(t *testing.T) {
	m, s, l := fixtures(t)
	assert.Equal(t,
		`You both liked each other: "Lake room" in Austin, TX. The rent of 850.00 fits the budget of 1000.00. Match score 100%.`,
		TemplateExplanation(m, s, l),
	)

	m.Score = nil
	s.BudgetMax = nil
	assert.Equal(t, `You both liked each other: "Lake room" in Austin, TX.`, TemplateExplanation(m, s, l))
}
