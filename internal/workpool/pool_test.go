package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wowprofile/pkg/logger"
)

func TestMapKeepsPositionalOrder(t *testing.T) {
	// later indices finish first
	out, err := Map(context.Background(), 0, 5, func(ctx context.Context, i int) (int, error) {
		time.Sleep(time.Duration(5-i) * 5 * time.Millisecond)
		return i * 10, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 30, 40}, out)
}

func TestMapEmpty(t *testing.T) {
	out, err := Map(context.Background(), 2, 0, func(context.Context, int) (string, error) {
		t.Fatal("task must not run")
		return "", nil
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestMapRespectsLimit(t *testing.T) {
	var inFlight, peak int32

	_, err := Map(context.Background(), 2, 8, func(ctx context.Context, i int) (struct{}, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestMapFailureCancelsSiblings(t *testing.T) {
	boom := errors.New("resolve failed")
	var cancelled int32
	start := time.Now()

	out, err := Map(context.Background(), 0, 4, func(ctx context.Context, i int) (int, error) {
		if i == 1 {
			return 0, boom
		}
		select {
		case <-ctx.Done():
			atomic.AddInt32(&cancelled, 1)
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return i, nil
		}
	})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "siblings must stop early")
	assert.LessOrEqual(t, atomic.LoadInt32(&cancelled), int32(3))
}

func TestRunLogsBatch(t *testing.T) {
	tl := logger.NewTestLogger()
	p := New(3, tl)

	out, err := Run(context.Background(), p, "titles", 2, func(_ context.Context, i int) (string, error) {
		return []string{"a", "b"}[i], nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
	assert.True(t, tl.HasMessage("Starting batch"))

	_, err = Run(context.Background(), p, "titles", 1, func(context.Context, int) (string, error) {
		return "", errors.New("nope")
	})
	assert.Error(t, err)
	assert.True(t, tl.HasMessage("Batch aborted"))
}

func TestPoolLimit(t *testing.T) {
	assert.Equal(t, 0, New(-1, logger.NewNopLogger()).Limit())
	assert.Equal(t, 4, New(4, logger.NewNopLogger()).Limit())
}
