package pending

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ReadyFollowsTokenCount(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.IsReady())

	a, b := NewToken(), NewToken()
	tr.AddPendingData(a)
	tr.AddPendingData(b)
	tr.AddPendingData(a)
	assert.Equal(t, 2, tr.PendingCount())
	assert.False(t, tr.IsReady())

	require.NoError(t, tr.RemovePendingData(a))
	assert.False(t, tr.IsReady())
	require.NoError(t, tr.RemovePendingData(b))
	assert.True(t, tr.IsReady())
}

func TestTracker_RemoveUnknownToken(t *testing.T) {
	tr := NewTracker()
	tok := NewToken()
	assert.ErrorIs(t, tr.RemovePendingData(tok), ErrUnknownToken)
	assert.Zero(t, tr.PendingCount())

	tr.AddPendingData(tok)
	require.NoError(t, tr.RemovePendingData(tok))
	assert.ErrorIs(t, tr.RemovePendingData(tok), ErrUnknownToken)
	assert.Zero(t, tr.PendingCount())
}

func TestTracker_ReadyFunc(t *testing.T) {
	var loading atomic.Bool
	loading.Store(true)
	tr := NewTracker(WithReadyFunc(func() bool { return !loading.Load() }))
	assert.False(t, tr.IsReady())
	loading.Store(false)
	assert.True(t, tr.IsReady())
}

func TestTracker_ExecuteWhenReadyImmediate(t *testing.T) {
	tr := NewTracker()
	calls := 0
	tr.ExecuteWhenReady(func() { calls++ })
	assert.Equal(t, 1, calls)
	assert.False(t, tr.Polling())
}

func TestTracker_ExecuteWhenReadyFiresOnceAfterLastToken(t *testing.T) {
	tr := NewTracker(WithPollInterval(5 * time.Millisecond))
	defer tr.Stop()

	tok := NewToken()
	tr.AddPendingData(tok)

	var first, second atomic.Int32
	tr.ExecuteWhenReady(func() { first.Add(1) })
	tr.ExecuteWhenReady(func() { second.Add(1) })
	assert.True(t, tr.Polling())

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, first.Load())

	require.NoError(t, tr.RemovePendingData(tok))
	require.Eventually(t, func() bool { return first.Load() == 1 && second.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !tr.Polling() }, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestTracker_StopCancelsPoll(t *testing.T) {
	tr := NewTracker(WithPollInterval(5 * time.Millisecond))
	tok := NewToken()
	tr.AddPendingData(tok)

	var fired atomic.Bool
	tr.ExecuteWhenReady(func() { fired.Store(true) })
	tr.Stop()
	assert.False(t, tr.Polling())

	require.NoError(t, tr.RemovePendingData(tok))
	time.Sleep(30 * time.Millisecond)
	assert.False(t, fired.Load())

	tr.ExecuteWhenReady(func() { fired.Store(true) })
	assert.False(t, fired.Load())
}

func TestToken(t *testing.T) {
	assert.True(t, Token{}.IsZero())
	tok := NewToken()
	assert.False(t, tok.IsZero())
	assert.NotEqual(t, tok, NewToken())
	assert.Len(t, tok.String(), 36)
}
