package scheduler

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

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(logger.NewNopLogger())

	err := s.Add("every tuesday", func() {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid cron spec "every tuesday"`)
}

func TestRunExecutesJobsUntilCanceled(t *testing.T) {
	s := New(logger.NewNopLogger())
	var runs atomic.Int32
	require.NoError(t, s.Add("@every 1s", func() { runs.Add(1) }))

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestNextBeforeStart(t *testing.T) {
	s := New(logger.NewNopLogger())
	assert.True(t, s.Next().IsZero())

	require.NoError(t, s.Add("0 */6 * * *", func() {}))
	assert.True(t, s.Next().IsZero(), "entries are only scheduled once running")
}

func TestPanickingJobIsRecovered(t *testing.T) {
	tl := logger.NewTestLogger()
	s := New(tl)
	require.NoError(t, s.Add("@every 1s", func() { panic("boom") }))

	ctx, cancel := context.WithTimeout(context.Background(), 1200*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	assert.True(t, tl.HasMessage("cron: panic"))
}
