package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Started(ctx, "run-1", "hamlet", "space_colony", "Initial"))
	require.NoError(t, store.Reached(ctx, "run-1", "Built"))
	require.NoError(t, store.Reached(ctx, "run-1", "CharactersTransformed"))
	require.NoError(t, store.Finished(ctx, "run-1", "CharactersTransformed", errors.New("quota exceeded")))

	require.NoError(t, store.Started(ctx, "run-2", "odyssey", "cyberpunk_megacity", "Initial"))
	require.NoError(t, store.Finished(ctx, "run-2", "Complete", nil))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, StatusComplete, runs[0].Status)
	assert.Equal(t, "Complete", runs[0].State)
	assert.Empty(t, runs[0].Error)
	assert.False(t, runs[0].FinishedAt.IsZero())

	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, StatusFailed, runs[1].Status)
	assert.Equal(t, "CharactersTransformed", runs[1].State)
	assert.Equal(t, "quota exceeded", runs[1].Error)
	assert.Equal(t, "hamlet", runs[1].StoryKey)
	assert.True(t, runs[1].StartedAt.Before(runs[1].FinishedAt))
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Started(ctx, id, "hamlet", "space_colony", "Initial"))
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, StatusRunning, runs[0].Status)
	assert.True(t, runs[0].FinishedAt.IsZero())
}

func TestUpdateUnknownRun(t *testing.T) {
	store := openTestStore(t)

	err := store.Reached(context.Background(), "missing", "Built")
	assert.ErrorIs(t, err, ErrUnknownRun)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Started(ctx, "persisted", "hamlet", "space_colony", "Initial"))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "persisted", runs[0].ID)
}
