package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DuncanWalter/combobulate/internal/logstore"
	"github.com/DuncanWalter/combobulate/internal/train"
)

func TestRunXORSavesAndResumes(t *testing.T) {
	dir := t.TempDir()
	args := []string{"-epochs", "30", "-seed", "5", "-session", "xor_test", "-store", dir}

	var out bytes.Buffer
	require.NoError(t, runXOR(args, &out))
	assert.Contains(t, out.String(), "session xor_test: 30 epochs")

	store, err := logstore.Open(logstore.Config{Dir: dir})
	require.NoError(t, err)
	first, err := store.Get("xor_test")
	require.NoError(t, err)
	assert.Equal(t, 30, first.EpochsTrained)
	assert.Equal(t, logstore.Contextless, first.AgentType)

	out.Reset()
	require.NoError(t, runXOR(args, &out))
	second, err := store.Get("xor_test")
	require.NoError(t, err)
	assert.Equal(t, 60, second.EpochsTrained)
	assert.NotEqual(t, first.SerializedContent, second.SerializedContent)

	_, progress, err := openStores(dir)
	require.NoError(t, err)
	defer progress.Close()
	history, err := progress.History(context.Background(), "xor_test", 0)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, 30, history[len(history)-1].Epoch)
}

func TestTrainXORReportsProgress(t *testing.T) {
	store, err := logstore.Open(logstore.Config{Dir: t.TempDir()})
	require.NoError(t, err)

	var last train.Progress
	model, err := trainXOR(context.Background(), store, xorOptions{epochs: 2000, seed: 3, rate: 0.1, session: "demo"}, func(p train.Progress) {
		last = p
	})
	require.NoError(t, err)
	assert.Equal(t, 2000, last.Epoch)
	assert.Less(t, train.Evaluate(model.Net(), xorExamples, train.AbsoluteError).MeanAbsError, 0.1)
}

func TestRunXORRejectsBadFlags(t *testing.T) {
	assert.Error(t, runXOR([]string{"-epochs", "many"}, &bytes.Buffer{}))
}

func TestDefaultSessionIsSafe(t *testing.T) {
	name := defaultSession()
	assert.Equal(t, name, logstore.SanitizeName(name))
}
