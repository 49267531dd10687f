// Package matchengine scores seeker/listing pairs and ranks recommendations.
package matchengine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gdugdh24/sublease-matcher-backend/internal/domain"
)

var (
	cityPoints    = decimal.RequireFromString("0.5")
	budgetPoints  = decimal.RequireFromString("0.5")
	penaltyPer100 = decimal.RequireFromString("0.1")
	hundred       = decimal.NewFromInt(100)
)

// Recommendation is a scored candidate listing.
type Recommendation struct {
	Listing domain.Listing `json:"listing"`
	Score   float64        `json:"score"`
}

// Engine is the rule based scorer: same city is a hard gate, the budget adds
// up to half of the score and decays by 0.1 for every $100 over budget.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Score returns a value in [0, 1] rounded to two decimals. It has no side
// effects.
func (e *Engine) Score(seeker *domain.SeekerProfile, listing *domain.Listing) float64 {
	if !sameCity(seeker.City, listing.City) {
		return 0
	}
	total := cityPoints.Add(budgetScore(seeker.BudgetMax, listing.PricePerMonth))
	return total.Round(2).InexactFloat64()
}

func budgetScore(budgetMax, price *domain.Money) decimal.Decimal {
	if budgetMax == nil || price == nil {
		return budgetPoints
	}
	over := price.Decimal().Sub(budgetMax.Decimal())
	if !over.IsPositive() {
		return budgetPoints
	}
	penalty := over.Div(hundred).Mul(penaltyPer100)
	return decimal.Max(decimal.Zero, budgetPoints.Sub(penalty))
}

// Recommend scores candidates for the seeker, drops zero scores, and returns
// at most limit results ordered by score desc then listing id asc.
func (e *Engine) Recommend(seeker *domain.SeekerProfile, candidates []domain.Listing, limit int) []Recommendation {
	if strings.TrimSpace(seeker.City) == "" {
		return nil
	}
	recs := make([]Recommendation, 0, len(candidates))
	for _, l := range candidates {
		score := e.Score(seeker, &l)
		if score <= 0 {
			continue
		}
		recs = append(recs, Recommendation{Listing: l, Score: score})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Listing.ID < recs[j].Listing.ID
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func sameCity(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a != "" && a == b
}
