package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stylar-exchange/storage/memory"
)

// fixtureNow sits inside the "After Dark" window and after "Spring Pastels".
var fixtureNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() Clock {
	return func() time.Time { return fixtureNow }
}

func newFixtureStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.NewFromFixtures()
	require.NoError(t, err)
	return store
}

type fakeUploader struct {
	mu    sync.Mutex
	keys  []string
	bytes int
}

func (f *fakeUploader) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.bytes += int(n)
	return "https://cdn.test/" + key, nil
}
