package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylar-exchange/models"
	"stylar-exchange/services"
	"stylar-exchange/storage/memory"
)

type failingSource struct{}

func (failingSource) ListStylars(context.Context) ([]models.Stylar, error) {
	return nil, errors.New("remote unavailable")
}

func (failingSource) ListUsers(context.Context) ([]models.User, error) {
	return nil, nil
}

func TestSyncOnceCopiesIntoEmptyStore(t *testing.T) {
	src, err := memory.NewFromFixtures()
	require.NoError(t, err)
	dst := memory.New()

	w := NewMirrorWorker(src, dst)
	stats, err := w.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MirrorStats{Stylars: 8, Users: 3}, stats)

	st, err := dst.GetStylar(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Gold Hour Gala", st.Name)
}

func TestSyncOnceKeepsExistingLocalRows(t *testing.T) {
	ctx := context.Background()
	src, err := memory.NewFromFixtures()
	require.NoError(t, err)
	dst, err := memory.NewFromFixtures()
	require.NoError(t, err)

	st, err := src.GetStylar(ctx, "3")
	require.NoError(t, err)
	st.Value = 999
	_, err = src.UpdateStylar(ctx, st)
	require.NoError(t, err)
	_, err = src.CreateStylar(ctx, models.Stylar{ID: "40", Name: "Harbour Knit", Style: models.StyleCasual, CreatorID: "1"})
	require.NoError(t, err)

	stats, err := NewMirrorWorker(src, dst).SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, MirrorStats{Stylars: 1}, stats)

	got, err := dst.GetStylar(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(420), got.Value)

	_, err = dst.GetStylar(ctx, "40")
	assert.NoError(t, err)
}

func TestSyncOnceKeepsLocalInvestments(t *testing.T) {
	ctx := context.Background()
	src, err := memory.NewFromFixtures()
	require.NoError(t, err)
	dst := memory.New()
	w := NewMirrorWorker(src, dst)

	_, err = w.SyncOnce(ctx)
	require.NoError(t, err)

	_, err = services.NewUserService(dst, "1").Invest(ctx, "1", "3", 200)
	require.NoError(t, err)

	_, err = w.SyncOnce(ctx)
	require.NoError(t, err)

	u, err := dst.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(800), u.StyleCoins)
	assert.Equal(t, []string{"1", "3"}, u.OwnedStylars)

	st, err := dst.GetStylar(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(620), st.Value)
}

func TestSyncOnceSurfacesListFailure(t *testing.T) {
	_, err := NewMirrorWorker(failingSource{}, memory.New()).SyncOnce(context.Background())
	assert.ErrorContains(t, err, "remote unavailable")
}

func TestStartStopsOnCancel(t *testing.T) {
	src, err := memory.NewFromFixtures()
	require.NoError(t, err)
	dst := memory.New()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewMirrorWorker(src, dst).Start(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		users, err := dst.ListUsers(context.Background())
		return err == nil && len(users) == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
