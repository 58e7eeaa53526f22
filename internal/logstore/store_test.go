package logstore_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DuncanWalter/combobulate/internal/logstore"
)

type tickingClock struct {
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func openStore(t *testing.T) (*logstore.Store, *tickingClock) {
	t.Helper()
	clock := &tickingClock{now: time.UnixMilli(1_000_000)}
	store, err := logstore.Open(logstore.Config{Dir: t.TempDir(), Clock: clock.Now})
	require.NoError(t, err)
	return store, clock
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"session_1", "session_1"},
		{"../etc/passwd", "etcpasswd"},
		{"a b-c.d", "abcd"},
		{"naïve", "nave"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logstore.SanitizeName(tt.in), tt.in)
	}
}

func TestUpdateCreatesThenExtends(t *testing.T) {
	store, _ := openStore(t)

	created, err := store.Update("alpha", logstore.Update{
		AgentType:               logstore.CardCounting,
		AdditionalEpochsTrained: 10,
		SerializedContent:       `["[1]"]`,
	})
	require.NoError(t, err)
	assert.True(t, created)

	first, err := store.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", first.SessionName)
	assert.Equal(t, 10, first.EpochsTrained)
	assert.Equal(t, int64(1_001_000), first.CreationTime)
	assert.Equal(t, first.CreationTime, first.LastUpdate)

	created, err = store.Update("alpha", logstore.Update{
		AgentType:               logstore.CardCounting,
		AdditionalEpochsTrained: 5,
		SerializedContent:       `["[2]"]`,
	})
	require.NoError(t, err)
	assert.False(t, created)

	second, err := store.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, 15, second.EpochsTrained)
	assert.Equal(t, `["[2]"]`, second.SerializedContent)
	assert.Equal(t, first.CreationTime, second.CreationTime)
	assert.Equal(t, int64(1_002_000), second.LastUpdate)
}

func TestUpdateRejectsMismatch(t *testing.T) {
	store, _ := openStore(t)
	_, err := store.Update("beta", logstore.Update{AgentType: logstore.Contextless})
	require.NoError(t, err)

	_, err = store.Update("beta", logstore.Update{AgentType: logstore.SuitCounting})
	assert.ErrorIs(t, err, logstore.ErrMismatch)

	_, err = store.Update("beta", logstore.Update{AgentType: logstore.Contextless, Simplified: true})
	assert.ErrorIs(t, err, logstore.ErrMismatch)

	// same file, different raw name
	_, err = store.Update("b.eta", logstore.Update{AgentType: logstore.Contextless})
	assert.ErrorIs(t, err, logstore.ErrMismatch)

	log, err := store.Get("beta")
	require.NoError(t, err)
	assert.Equal(t, logstore.Contextless, log.AgentType)
	assert.False(t, log.Simplified)
}

func TestUpdateValidation(t *testing.T) {
	store, _ := openStore(t)

	_, err := store.Update("gamma", logstore.Update{AgentType: "poker"})
	assert.ErrorIs(t, err, logstore.ErrInvalidUpdate)

	_, err = store.Update("gamma", logstore.Update{AgentType: logstore.Contextless, AdditionalEpochsTrained: -1})
	assert.ErrorIs(t, err, logstore.ErrInvalidUpdate)

	_, err = store.Update("...", logstore.Update{AgentType: logstore.Contextless})
	assert.ErrorIs(t, err, logstore.ErrInvalidName)
}

func TestListReturnsHeaders(t *testing.T) {
	store, _ := openStore(t)
	for _, name := range []string{"zeta", "eta", "theta"} {
		_, err := store.Update(name, logstore.Update{
			AgentType:         logstore.ContextLearning,
			SerializedContent: "large",
		})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o644))

	headers, err := store.List()
	require.NoError(t, err)
	require.Len(t, headers, 3)
	assert.Equal(t, "eta", headers[0].SessionName)
	assert.Equal(t, "theta", headers[1].SessionName)
	assert.Equal(t, "zeta", headers[2].SessionName)
	assert.Equal(t, logstore.ContextLearning, headers[0].AgentType)
}

func TestListRejectsMalformedLog(t *testing.T) {
	store, _ := openStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "broken.json"), []byte("{"), 0o644))

	_, err := store.List()
	assert.ErrorIs(t, err, logstore.ErrMalformedLog)
}

func TestGetAndDelete(t *testing.T) {
	store, _ := openStore(t)

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, logstore.ErrNotFound)

	_, err = store.Update("delta", logstore.Update{AgentType: logstore.SuitCounting})
	require.NoError(t, err)
	require.NoError(t, store.Delete("delta"))

	_, err = store.Get("delta")
	assert.ErrorIs(t, err, logstore.ErrNotFound)
	assert.NoError(t, store.Delete("delta"))
}

func TestWritesLeaveNoTemporaryFiles(t *testing.T) {
	store, _ := openStore(t)
	for i := 0; i < 3; i++ {
		_, err := store.Update("epsilon", logstore.Update{AgentType: logstore.Contextless, AdditionalEpochsTrained: 1})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "epsilon.json", entries[0].Name())
}
