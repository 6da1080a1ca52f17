package local

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetAndExpiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	s, err := New(4, WithClock(clk))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	clk.Advance(59 * time.Second)
	_, ok, _ = s.Get(ctx, "k")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok, "entry must expire at its deadline")
	assert.Equal(t, 0, s.Len())
}

func TestStore_NoTTLKeepsEntry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	s, err := New(2, WithClock(clk))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	clk.Advance(24 * time.Hour)
	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"), time.Minute)
	_ = s.Set(ctx, "b", []byte("2"), time.Minute)
	_, _, _ = s.Get(ctx, "a")
	_ = s.Set(ctx, "c", []byte("3"), time.Minute)

	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok, _ = s.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "local", s.Name())
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}
