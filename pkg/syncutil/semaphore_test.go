package syncutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSemaphoreImmediateAcquire(t *testing.T) {
	s := NewSemaphore(3)

	done := make(chan struct{})
	go func() {
		s.Acquire()
		s.Acquire()
		s.Acquire()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquires within capacity should not block")
	}
}

func TestSemaphoreBlocksWhenExhausted(t *testing.T) {
	s := NewSemaphore(1)
	s.Acquire()

	acquired := make(chan struct{})
	go func() {
		s.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("acquire past capacity should block")
	case <-time.After(50 * time.Millisecond):
	}

	s.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("release should wake the waiter")
	}
}

func TestSemaphoreWakesWaitersInFIFOOrder(t *testing.T) {
	s := NewSemaphore(1)
	s.Acquire()

	var mu sync.Mutex
	var order []int

	var started sync.WaitGroup
	var finished sync.WaitGroup

	// Admit the goroutines one at a time so queue order is
	// deterministic.
	for i := 1; i <= 3; i++ {
		i := i
		gate := make(chan struct{})
		started.Add(1)
		finished.Add(1)
		go func(gate chan struct{}) {
			<-gate
			started.Done()
			s.Acquire()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			finished.Done()
		}(gate)
		close(gate)
		started.Wait()
		time.Sleep(10 * time.Millisecond)
	}

	for i := 0; i < 3; i++ {
		s.Release()
		time.Sleep(10 * time.Millisecond)
	}
	finished.Wait()

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSemaphoreTryAcquire(t *testing.T) {
	s := NewSemaphore(1)

	assert.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire())

	s.Release()
	assert.True(t, s.TryAcquire())
}

func TestSemaphoreReleaseRestoresCapacity(t *testing.T) {
	s := NewSemaphore(2)
	s.Acquire()
	s.Acquire()
	s.Release()
	s.Release()

	assert.True(t, s.TryAcquire())
	assert.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire())
}
