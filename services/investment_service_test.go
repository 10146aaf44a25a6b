package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylar-exchange/storage"
)

func TestInvestmentListing(t *testing.T) {
	svc := NewInvestmentService(newFixtureStore(t))
	ctx := context.Background()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byUser, err := svc.ListByUser(ctx, "3")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "7", byUser[0].StylarID)

	byStylar, err := svc.ListByStylar(ctx, "1")
	require.NoError(t, err)
	require.Len(t, byStylar, 1)
	assert.Equal(t, "1", byStylar[0].UserID)
}

func TestInvestmentCreate(t *testing.T) {
	svc := NewInvestmentService(newFixtureStore(t))
	svc.Clock = fixedClock()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvestmentInput{StylarID: "2", UserID: "2", Amount: 75})
	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, fixtureNow, inv.Date)

	_, err = svc.Create(ctx, CreateInvestmentInput{StylarID: "2", UserID: "2", Amount: -5})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Create(ctx, CreateInvestmentInput{StylarID: "99", UserID: "2", Amount: 5})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.Create(ctx, CreateInvestmentInput{StylarID: "2", Amount: 5})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
