package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNotifiesInRegistrationOrder(t *testing.T) {
	var r Registry[int]
	var got []string

	r.Add(func(int) { got = append(got, "a") })
	r.Add(func(int) { got = append(got, "b") })
	r.Add(func(int) { got = append(got, "c") })
	r.Notify(1)

	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 3, r.Len())
}

func TestRegistryRemoveByHandle(t *testing.T) {
	var r Registry[int]
	calls := 0

	h := r.Add(func(int) { calls++ })
	require.NotZero(t, h)
	assert.True(t, r.Remove(h))
	assert.False(t, r.Remove(h))

	r.Notify(0)
	assert.Zero(t, calls)
	assert.Zero(t, r.Add(nil))
}

func TestRegistryRemovalDuringNotifyDoesNotSkip(t *testing.T) {
	var r Registry[int]
	var got []string
	var hb Handle

	r.Add(func(int) {
		got = append(got, "a")
		r.Remove(hb)
	})
	hb = r.Add(func(int) { got = append(got, "b") })
	r.Add(func(int) { got = append(got, "c") })

	r.Notify(0)
	assert.Equal(t, []string{"a", "b", "c"}, got, "snapshot still holds b")

	got = nil
	r.Notify(0)
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestRegistryAddDuringNotifyTakesEffectNextTime(t *testing.T) {
	var r Registry[int]
	calls := 0

	r.Add(func(int) {
		r.Add(func(int) { calls++ })
	})
	r.Notify(0)
	assert.Zero(t, calls)

	r.Notify(0)
	assert.Equal(t, 1, calls)

	r.Clear()
	assert.Zero(t, r.Len())
}
