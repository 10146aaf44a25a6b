package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylar-exchange/models"
	"stylar-exchange/storage"
)

func newUserService(t *testing.T) (*UserService, storage.Store) {
	store := newFixtureStore(t)
	svc := NewUserService(store, "1")
	svc.Clock = fixedClock()
	return svc, store
}

func TestCurrentUserHasInvestments(t *testing.T) {
	svc, _ := newUserService(t)

	u, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stylefan", u.Username)
	require.Len(t, u.Investments, 1)
	assert.Equal(t, int64(150), u.TotalInvested())
}

func TestInvestMovesCoinsAndValue(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	res, err := svc.Invest(ctx, "1", "3", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(800), res.User.StyleCoins)
	assert.Equal(t, int64(620), res.Stylar.Value)
	assert.Equal(t, fixtureNow, res.Investment.Date)
	assert.True(t, res.User.Owns("3"))

	// second investment does not duplicate ownership
	res, err = svc.Invest(ctx, "1", "3", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, res.User.OwnedStylars)

	invs, err := store.ListInvestments(ctx, models.InvestmentFilter{UserID: "1", StylarID: "3"})
	require.NoError(t, err)
	assert.Len(t, invs, 2)
}

func TestInvestRejectsBadAmounts(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	_, err := svc.Invest(ctx, "1", "3", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Invest(ctx, "1", "3", 1001)
	assert.ErrorIs(t, err, ErrInsufficientCoins)

	_, err = svc.Invest(ctx, "1", "404", 10)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	u, err := store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), u.StyleCoins)
	st, err := store.GetStylar(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(420), st.Value)
}

func TestConcurrentInvestmentsNeverOverdraw(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Invest(ctx, "1", "8", 100); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	u, err := store.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.StyleCoins)
	st, err := store.GetStylar(ctx, "8")
	require.NoError(t, err)
	assert.Equal(t, int64(1100), st.Value)
}

func TestAdjustCoins(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u, err := svc.AdjustCoins(ctx, "1", 250)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), u.StyleCoins)

	u, err = svc.AdjustCoins(ctx, "1", -1250)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.StyleCoins)

	_, err = svc.AdjustCoins(ctx, "1", -1)
	assert.ErrorIs(t, err, ErrInsufficientCoins)
}
