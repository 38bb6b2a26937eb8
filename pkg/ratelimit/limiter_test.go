package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wowprofile/internal/workpool"
)

func TestStaggered(t *testing.T) {
	p := Staggered{Step: 20 * time.Millisecond}

	start := time.Now()
	require.NoError(t, p.Wait(context.Background(), 0))
	assert.Less(t, time.Since(start), 15*time.Millisecond, "index 0 starts immediately")

	start = time.Now()
	require.NoError(t, p.Wait(context.Background(), 3))
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestBatchMeasuresFromBatchStart(t *testing.T) {
	p := Batch(Staggered{Step: 20 * time.Millisecond})

	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	require.NoError(t, p.Wait(context.Background(), 2))
	assert.Less(t, time.Since(start), 15*time.Millisecond, "deadline already passed")

	start = time.Now()
	require.NoError(t, p.Wait(context.Background(), 5))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 35*time.Millisecond)
	assert.Less(t, elapsed, 90*time.Millisecond)
}

func TestBatchKeepsOtherPacers(t *testing.T) {
	assert.Equal(t, Fixed{Delay: time.Second}, Batch(Fixed{Delay: time.Second}))
	assert.Equal(t, None{}, Batch(None{}))
}

func TestBatchStaggerUnderConcurrencyLimit(t *testing.T) {
	const tasks = 10
	step := 20 * time.Millisecond

	for _, limit := range []int{0, 2} {
		p := Batch(Staggered{Step: step})
		start := time.Now()

		_, err := workpool.Map(context.Background(), limit, tasks, func(ctx context.Context, i int) (int, error) {
			return i, p.Wait(ctx, i)
		})

		require.NoError(t, err)
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, step*(tasks-1), "limit %d", limit)
		assert.Less(t, elapsed, step*(tasks-1)+100*time.Millisecond, "limit %d: start times stay step apart", limit)
	}
}

func TestFixedIgnoresIndex(t *testing.T) {
	p := Fixed{Delay: 15 * time.Millisecond}

	start := time.Now()
	require.NoError(t, p.Wait(context.Background(), 100))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 15*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestTokenRate(t *testing.T) {
	_, err := NewTokenRate(0, 1)
	assert.Error(t, err)

	p, err := NewTokenRate(50, 1)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Wait(context.Background(), i))
	}
	// first token is immediate, the next three arrive 20ms apart
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestPacersHonourCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tokens, err := NewTokenRate(0.001, 1)
	require.NoError(t, err)
	require.NoError(t, tokens.Wait(context.Background(), 0))

	pacers := map[string]Pacer{
		"staggered": Staggered{Step: time.Hour},
		"batch":     Batch(Staggered{Step: time.Hour}),
		"fixed":     Fixed{Delay: time.Hour},
		"tokens":    tokens,
		"none":      None{},
	}

	for name, p := range pacers {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, p.Wait(ctx, 5), context.Canceled)
		})
	}
}
