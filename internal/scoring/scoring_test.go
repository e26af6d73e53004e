// internal/scoring/scoring_test.go
package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-sparks/internal/model"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newRepo(name string, daysOld, daysSinceUpdate float64, stars, forks int) model.Repository {
	return model.Repository{
		Name:            name,
		FullName:        "test/" + name,
		Owner:           model.Owner{Login: "test"},
		StargazersCount: stars,
		ForksCount:      forks,
		WatchersCount:   stars,
		CreatedAt:       now.Add(-time.Duration(daysOld * float64(day))),
		UpdatedAt:       now.Add(-time.Duration(daysSinceUpdate * float64(day))),
		PushedAt:        now.Add(-time.Duration(daysSinceUpdate * float64(day))),
	}
}

func TestSparkScore(t *testing.T) {
	t.Run("young viral repository", func(t *testing.T) {
		r := newRepo("new-viral", 3, 0, 300, 50)
		assert.Equal(t, 216.7, SparkScore(r, now))
		assert.Equal(t, 12000, GrowthPercentage(r, now))
	})

	t.Run("old reliable repository", func(t *testing.T) {
		r := newRepo("old-reliable", 730, 1, 20000, 3000)
		assert.Equal(t, 57.0, SparkScore(r, now))
		assert.Equal(t, 3288, GrowthPercentage(r, now))
	})

	t.Run("age is floored at one day", func(t *testing.T) {
		r := newRepo("hours-old", 2.0/24, 0, 100, 0)
		assert.Equal(t, 200.0, SparkScore(r, now))
		assert.Equal(t, 12000, GrowthPercentage(r, now))
	})

	t.Run("future update timestamp counts as zero days", func(t *testing.T) {
		r := newRepo("clock-skew", 10, -1, 100, 0)
		assert.Equal(t, 20.0, SparkScore(r, now))
	})

	t.Run("decays as the repository goes inactive", func(t *testing.T) {
		prev := math.Inf(1)
		for _, days := range []float64{0, 10, 30, 60, 90, 180} {
			score := SparkScore(newRepo("decay", 100, days, 1000, 100), now)
			assert.Less(t, score, prev, "score at %v days since update", days)
			prev = score
		}
	})
}

func TestSparkScore_Grid(t *testing.T) {
	for _, stars := range []int{0, 51, 300, 5000} {
		for _, forks := range []int{0, 10, 900} {
			for _, age := range []float64{0, 0.5, 1, 30, 180, 1000} {
				for _, idle := range []float64{0, 2.9, 3, 45, 400} {
					r := newRepo("grid", age, idle, stars, forks)
					score := SparkScore(r, now)
					growth := GrowthPercentage(r, now)

					assert.GreaterOrEqual(t, score, 0.0)
					assert.GreaterOrEqual(t, growth, 0)
					assert.Equal(t, score, SparkScore(r, now), "score must be deterministic")
					assert.Equal(t, growth, GrowthPercentage(r, now), "growth must be deterministic")
				}
			}
		}
	}
}

func TestGrowthPercentage_RecentBoostBoundary(t *testing.T) {
	t.Run("just under three days is boosted", func(t *testing.T) {
		r := newRepo("boosted", 10, 3-1.0/24, 300, 0)
		assert.Equal(t, 3600, GrowthPercentage(r, now))
	})

	t.Run("exactly three days is not boosted", func(t *testing.T) {
		r := newRepo("boundary", 10, 3, 300, 0)
		assert.Equal(t, 3000, GrowthPercentage(r, now))
	})

	t.Run("matches the formula", func(t *testing.T) {
		r := newRepo("formula", 40, 7, 130, 4)
		expected := int(math.Round(130.0 / 40 * 100 * 1.0))
		assert.Equal(t, expected, GrowthPercentage(r, now))
	})
}

func TestRank(t *testing.T) {
	t.Run("filters low star repositories", func(t *testing.T) {
		ranked := Rank([]model.Repository{
			newRepo("fifty", 10, 0, 50, 0),
			newRepo("fifty-one", 10, 0, 51, 0),
		}, now)

		require.Len(t, ranked, 1)
		assert.Equal(t, "fifty-one", ranked[0].Name)
	})

	t.Run("orders by spark score descending", func(t *testing.T) {
		ranked := Rank([]model.Repository{
			newRepo("slow", 100, 0, 500, 0),
			newRepo("fast", 5, 0, 400, 0),
			newRepo("medium", 20, 0, 450, 0),
		}, now)

		require.Len(t, ranked, 3)
		assert.Equal(t, "fast", ranked[0].Name)
		assert.Equal(t, "medium", ranked[1].Name)
		assert.Equal(t, "slow", ranked[2].Name)
		assert.Equal(t, 160.0, ranked[0].SparkScore)
		assert.Equal(t, 9600, ranked[0].GrowthPercentage)
	})

	t.Run("keeps upstream order for equal scores", func(t *testing.T) {
		ranked := Rank([]model.Repository{
			newRepo("first", 10, 0, 100, 0),
			newRepo("second", 10, 0, 100, 0),
			newRepo("third", 10, 0, 100, 0),
		}, now)

		require.Len(t, ranked, 3)
		assert.Equal(t, []string{"first", "second", "third"},
			[]string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
	})

	t.Run("returns an empty slice when nothing qualifies", func(t *testing.T) {
		ranked := Rank([]model.Repository{newRepo("toy", 1, 0, 3, 0)}, now)
		assert.NotNil(t, ranked)
		assert.Empty(t, ranked)
	})
}
