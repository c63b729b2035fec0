package utils

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)

	var done int64
	for i := 0; i < 50; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&done, 1)
		})
	}
	pool.Wait()

	assert.Equal(t, int64(50), atomic.LoadInt64(&done))
}

func TestWorkerPoolLimitsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)

	var mu sync.Mutex
	running, peak := 0, 0
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			mu.Lock()
			running--
			mu.Unlock()
		})
	}
	pool.Wait()

	assert.LessOrEqual(t, peak, 2)
}

func TestWorkerPoolClampsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0)

	ran := false
	pool.Submit(func() { ran = true })
	pool.Wait()

	assert.True(t, ran)
}
