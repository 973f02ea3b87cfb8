package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hifztrack/internal/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestMistakesRoundTrip(t *testing.T) {
	s := openTestStore(t)

	t.Run("missing page yields empty slice", func(t *testing.T) {
		mistakes, err := s.Mistakes(42)
		require.NoError(t, err)
		assert.Equal(t, []int{}, mistakes)
	})

	t.Run("save and reload preserves order", func(t *testing.T) {
		require.NoError(t, s.SaveMistakes(42, []int{7, 3, 11}))

		mistakes, err := s.Mistakes(42)
		require.NoError(t, err)
		assert.Equal(t, []int{7, 3, 11}, mistakes)
	})

	t.Run("save replaces the previous set", func(t *testing.T) {
		require.NoError(t, s.SaveMistakes(42, []int{1}))

		mistakes, err := s.Mistakes(42)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, mistakes)
	})

	t.Run("pages are independent", func(t *testing.T) {
		require.NoError(t, s.SaveMistakes(43, []int{9}))

		mistakes, err := s.Mistakes(42)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, mistakes)
	})

	t.Run("nil set is stored as empty", func(t *testing.T) {
		require.NoError(t, s.SaveMistakes(42, nil))

		mistakes, err := s.Mistakes(42)
		require.NoError(t, err)
		assert.Equal(t, []int{}, mistakes)
	})
}

func TestMistakesSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveMistakes(10, []int{2, 4}))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, reopened.Close())
	}()

	mistakes, err := reopened.Mistakes(10)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, mistakes)
}

func TestQueueRoundTrip(t *testing.T) {
	s := openTestStore(t)

	submission := api.Submission{
		PageNumber:     2,
		SurahName:      "Al-Baqarah",
		Juz:            1,
		Rating:         "Good",
		ManualMistakes: []int{3},
		Notes:          "slow on line 4",
		RecitationDate: "2026-08-31T10:00:00Z",
	}

	first := QueueItem{
		ID:         "100-1",
		Payload:    submission,
		EnqueuedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	}
	second := QueueItem{
		ID:         "200-2",
		Payload:    submission,
		EnqueuedAt: time.Date(2026, 8, 31, 11, 0, 0, 0, time.UTC),
	}

	// Insert newest first; reads still come back in enqueue order.
	require.NoError(t, s.AppendQueueItem(second))
	require.NoError(t, s.AppendQueueItem(first))

	items, err := s.QueueItems()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "100-1", items[0].ID)
	assert.Equal(t, "200-2", items[1].ID)
	assert.Equal(t, submission, items[0].Payload)
	assert.True(t, items[0].EnqueuedAt.Equal(first.EnqueuedAt))

	require.NoError(t, s.SetQueueRetryCount("100-1", 2))
	items, err = s.QueueItems()
	require.NoError(t, err)
	assert.Equal(t, 2, items[0].RetryCount)

	require.NoError(t, s.DeleteQueueItem("100-1"))
	items, err = s.QueueItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "200-2", items[0].ID)

	// Deleting an id that is already gone is fine.
	require.NoError(t, s.DeleteQueueItem("100-1"))
}

func TestQueueEmpty(t *testing.T) {
	s := openTestStore(t)

	items, err := s.QueueItems()
	require.NoError(t, err)
	assert.Empty(t, items)
}
