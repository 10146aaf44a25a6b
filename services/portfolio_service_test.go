package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPortfolioService(t *testing.T) *PortfolioService {
	store := newFixtureStore(t)
	return NewPortfolioService(store, NewUserService(store, "1"), NewBadgeService(store))
}

func TestProfileLevel(t *testing.T) {
	assert.Equal(t, LevelNewcomer, ProfileLevel(499))
	assert.Equal(t, LevelRising, ProfileLevel(500))
	assert.Equal(t, LevelExpert, ProfileLevel(2000))
	assert.Equal(t, LevelLegend, ProfileLevel(5000))
}

func TestPortfolio(t *testing.T) {
	svc := newPortfolioService(t)

	p, err := svc.Portfolio(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "6", "8"}, ids(p.Stylars))
	assert.Equal(t, int64(2140), p.Value)
	assert.Equal(t, int64(150), p.Invested)
	assert.Equal(t, int64(1990), p.Profit)
	assert.Equal(t, 1326.7, p.ProfitPercent)
}

func TestPortfolioWithoutInvestments(t *testing.T) {
	svc := newPortfolioService(t)

	p, err := svc.Portfolio(context.Background(), "2")
	require.NoError(t, err)
	assert.Zero(t, p.Invested)
	assert.Zero(t, p.ProfitPercent)
}

func TestProfile(t *testing.T) {
	svc := newPortfolioService(t)

	prof, err := svc.Profile(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, LevelRising, prof.Level)
	assert.Equal(t, int64(890), prof.Stats.TotalValue)
	assert.Equal(t, int64(17), prof.Stats.Investors)
	assert.Equal(t, int64(3), prof.Stats.DistinctStyles)

	earned := map[string]bool{}
	for _, a := range prof.Achievements {
		earned[a.Code] = a.Earned
	}
	assert.True(t, earned["FIRST_STYLAR"])
	assert.True(t, earned["TRENDING_CREATOR"])
	assert.True(t, earned["DIVERSIFIED"])
	assert.False(t, earned["STYLE_ICON"])
	assert.False(t, earned["HIGH_SCORER"])
}
