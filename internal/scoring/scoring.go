// internal/scoring/scoring.go
package scoring

import (
	"math"
	"sort"
	"time"

	"github-sparks/internal/model"
)

const (
	// MinStars is the star count a repository must exceed to be ranked.
	MinStars = 50

	day = 24 * time.Hour

	decayDays         = 30.0
	recentWindowDays  = 3.0
	recentBoostFactor = 1.2
)

// SparkScore computes the velocity-weighted rank score of a repository:
// (stars*2 + forks) per day of age, decayed by days since the last update.
// The result is rounded to one decimal place.
func SparkScore(r model.Repository, now time.Time) float64 {
	daysOld, daysSinceUpdate := ages(r, now)

	baseScore := float64(r.StargazersCount*2+r.ForksCount) / daysOld
	activityFactor := 1 / (1 + daysSinceUpdate/decayDays)

	return math.Round(baseScore*activityFactor*10) / 10
}

// GrowthPercentage expresses daily star velocity as a percentage, where one
// star per day is 100%. Repositories updated within the last three days get
// a 20% boost.
func GrowthPercentage(r model.Repository, now time.Time) int {
	daysOld, daysSinceUpdate := ages(r, now)

	velocity := float64(r.StargazersCount) / daysOld
	boost := 1.0
	if daysSinceUpdate < recentWindowDays {
		boost = recentBoostFactor
	}

	return int(math.Round(velocity * 100 * boost))
}

// Rank drops repositories at or below MinStars, scores the rest and orders
// them by spark score, highest first. Equal scores keep their input order.
func Rank(records []model.Repository, now time.Time) []model.RankedRepository {
	ranked := make([]model.RankedRepository, 0, len(records))
	for _, r := range records {
		if r.StargazersCount <= MinStars {
			continue
		}
		ranked = append(ranked, model.RankedRepository{
			Repository:       r,
			SparkScore:       SparkScore(r, now),
			GrowthPercentage: GrowthPercentage(r, now),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SparkScore > ranked[j].SparkScore
	})
	return ranked
}

// ages returns the repository age floored at one day and the days since
// its last update floored at zero.
func ages(r model.Repository, now time.Time) (daysOld, daysSinceUpdate float64) {
	daysOld = math.Max(1, float64(now.Sub(r.CreatedAt))/float64(day))
	daysSinceUpdate = math.Max(0, float64(now.Sub(r.UpdatedAt))/float64(day))
	return daysOld, daysSinceUpdate
}
