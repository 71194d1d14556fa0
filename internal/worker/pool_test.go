package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_PreservesOrder(t *testing.T) {
	items := []int{5, 4, 3, 2, 1, 0}

	out, err := Process(context.Background(), items, 3, func(_ context.Context, job Job[int]) (int, error) {
		return job.Data * 10, nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, []int{50, 40, 30, 20, 10, 0}, out)
}

func TestProcess_Empty(t *testing.T) {
	out, err := Process(context.Background(), []string{}, 4, func(_ context.Context, job Job[string]) (string, error) {
		return job.Data, nil
	}, nil)

	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestProcess_ReportsProgress(t *testing.T) {
	items := make([]int, 10)
	var last int32
	var calls int32

	_, err := Process(context.Background(), items, 4, func(_ context.Context, job Job[int]) (int, error) {
		return job.Index, nil
	}, func(completed, total int) {
		atomic.AddInt32(&calls, 1)
		atomic.StoreInt32(&last, int32(completed))
		assert.Equal(t, 10, total)
	})

	require.NoError(t, err)
	assert.Equal(t, int32(10), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(10), atomic.LoadInt32(&last))
}

func TestProcess_FirstErrorReturned(t *testing.T) {
	boom := errors.New("boom")
	items := []int{0, 1, 2, 3}

	out, err := Process(context.Background(), items, 1, func(_ context.Context, job Job[int]) (int, error) {
		if job.Data == 1 {
			return 0, boom
		}
		return job.Data, nil
	}, nil)

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Process(ctx, []int{1, 2, 3}, 2, func(ctx context.Context, job Job[int]) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return job.Data, nil
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPool_DefaultsWorkers(t *testing.T) {
	p := NewPool[int, int](context.Background(), PoolOptions{}, func(_ context.Context, job Job[int]) (int, error) {
		return job.Data, nil
	})
	assert.Equal(t, 1, p.workers)
	assert.Equal(t, 1, cap(p.jobChan))
}
