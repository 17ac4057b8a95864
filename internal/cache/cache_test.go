package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "sentiment:news:Bitcoin")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "sentiment:news:Bitcoin", []byte("0.42"), 0))
	got, ok, err := s.Get(ctx, "sentiment:news:Bitcoin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("0.42"), got)
}

func TestMemoryStoreExpires(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	var out float64
	ok, err := GetJSON(ctx, s, "score", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, "score", 0.25, time.Minute))
	ok, err = GetJSON(ctx, s, "score", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.25, out)

	require.NoError(t, s.Set(ctx, "bad", []byte("{"), time.Minute))
	ok, err = GetJSON(ctx, s, "bad", &out)
	assert.Error(t, err)
	assert.False(t, ok)
}
