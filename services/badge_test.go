package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylar-exchange/models"
)

func TestAutoAwardIsIdempotent(t *testing.T) {
	store := newFixtureStore(t)
	svc := NewBadgeService(store)
	ctx := context.Background()

	awarded, err := svc.AutoAward(ctx, "1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Trending Creator", "Diversified"}, awarded)

	awarded, err = svc.AutoAward(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, awarded)

	u, err := store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"First Stylar", "Trending Creator", "Diversified"}, u.Badges)
}

func TestMeetsThreshold(t *testing.T) {
	stats := CreatorStats{CreatedStylars: 2, MaxScore: 91}
	assert.True(t, meetsThreshold(stats, map[string]int64{models.ThresholdMaxScore: 90}))
	assert.False(t, meetsThreshold(stats, map[string]int64{models.ThresholdCreated: 3}))
	assert.False(t, meetsThreshold(stats, map[string]int64{"unknown": 1}))
}

func TestCreateStylarRefreshesCreatorBadges(t *testing.T) {
	store := newFixtureStore(t)
	ctx := context.Background()
	svc := NewStylarService(store, nil)
	svc.Badges = NewBadgeService(store)

	_, err := svc.Create(ctx, "2", CreateStylarInput{
		Name:        "Tartan Commute",
		Description: "Plaid trench over knitwear",
		Style:       "preppy",
		Images:      []string{"https://img/tartan.jpg"},
	})
	require.NoError(t, err)

	u, err := store.GetUser(ctx, "2")
	require.NoError(t, err)
	assert.Contains(t, u.Badges, "Diversified")
	assert.Contains(t, u.Badges, "High Scorer")
}

func TestInvestRefreshesCreatorBadges(t *testing.T) {
	store := newFixtureStore(t)
	ctx := context.Background()
	users := NewUserService(store, "1")
	users.Clock = fixedClock()
	users.Badges = NewBadgeService(store)

	_, err := users.Invest(ctx, "1", "5", 100)
	require.NoError(t, err)

	creator, err := store.GetUser(ctx, "3")
	require.NoError(t, err)
	assert.Contains(t, creator.Badges, "Trending Creator")
	assert.Contains(t, creator.Badges, "Style Icon")
}

func TestVoteRefreshesCreatorBadges(t *testing.T) {
	store := newFixtureStore(t)
	ctx := context.Background()
	battles := NewBattleService(store, DefaultVoteReward)
	battles.Badges = NewBadgeService(store)

	_, err := battles.Vote(ctx, "2", "3", "1")
	require.NoError(t, err)

	creator, err := store.GetUser(ctx, "2")
	require.NoError(t, err)
	assert.Contains(t, creator.Badges, "Diversified")
}

func TestRefreshOnNilServiceIsNoop(t *testing.T) {
	var svc *BadgeService
	assert.NotPanics(t, func() { svc.Refresh(context.Background(), "1") })
}
