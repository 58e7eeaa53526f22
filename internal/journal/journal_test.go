package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DuncanWalter/combobulate/internal/logstore"
	"github.com/DuncanWalter/combobulate/internal/train"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	tick := time.UnixMilli(5_000)
	j, err := Open(Config{
		Path: filepath.Join(t.TempDir(), "progress.sqlite3"),
		Clock: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndHistory(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	for epoch := 1; epoch <= 3; epoch++ {
		require.NoError(t, j.Record(ctx, "alpha", train.Progress{
			Epoch:        epoch * 10,
			MeanLoss:     1 / float64(epoch),
			MeanAbsError: 0.5 / float64(epoch),
			Elapsed:      time.Duration(epoch) * 250 * time.Millisecond,
		}))
	}
	require.NoError(t, j.Record(ctx, "beta", train.Progress{Epoch: 1}))

	history, err := j.History(ctx, "alpha", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int{10, 20, 30}, epochs(history))
	assert.Equal(t, int64(6_000), history[0].Time)
	assert.InDelta(t, 0.5, history[1].MeanLoss, 1e-12)
	assert.Equal(t, 750*time.Millisecond, history[2].Elapsed)

	latest, err := j.History(ctx, "alpha", 2)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 30}, epochs(latest))
}

func TestHistoryUsesSanitisedNames(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, "b.eta", train.Progress{Epoch: 4}))
	history, err := j.History(ctx, "beta", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, epochs(history))

	err = j.Record(ctx, "...", train.Progress{})
	assert.ErrorIs(t, err, logstore.ErrInvalidName)
}

func TestHistoryOfUnknownSessionIsEmpty(t *testing.T) {
	j := openJournal(t)
	history, err := j.History(context.Background(), "nobody", 0)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestForget(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()
	require.NoError(t, j.Record(ctx, "alpha", train.Progress{Epoch: 1}))
	require.NoError(t, j.Record(ctx, "beta", train.Progress{Epoch: 1}))

	require.NoError(t, j.Forget(ctx, "alpha"))
	require.NoError(t, j.Forget(ctx, "alpha"))

	history, err := j.History(ctx, "alpha", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
	history, err = j.History(ctx, "beta", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecorderChainsCallbacks(t *testing.T) {
	j := openJournal(t)
	var seen []int
	var failures []error
	record := j.Recorder("gamma", func(p train.Progress) { seen = append(seen, p.Epoch) }, func(err error) {
		failures = append(failures, err)
	})

	record(train.Progress{Epoch: 1})
	record(train.Progress{Epoch: 2})
	assert.Equal(t, []int{1, 2}, seen)
	assert.Empty(t, failures)

	history, err := j.History(context.Background(), "gamma", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, epochs(history))

	require.NoError(t, j.Close())
	record(train.Progress{Epoch: 3})
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Len(t, failures, 1)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.sqlite3")
	j, err := Open(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, j.Record(context.Background(), "alpha", train.Progress{Epoch: 7}))
	require.NoError(t, j.Close())

	j, err = Open(Config{Path: path})
	require.NoError(t, err)
	defer j.Close()
	history, err := j.History(context.Background(), "alpha", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, epochs(history))
}

func epochs(entries []Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Epoch
	}
	return out
}
