package core

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// poolSizeMultiplier scales runtime.NumCPU() to the default resident worker
// count. Drain workers spend nearly all their time blocked in read(2), so
// more workers than cores is cheap.
const poolSizeMultiplier = 2

// DefaultPoolSize returns the resident worker count used when no explicit
// size is configured: twice the number of logical CPUs.
func DefaultPoolSize() int {
	return poolSizeMultiplier * runtime.NumCPU()
}

// PoolStats is a point-in-time snapshot of pool activity.
type PoolStats struct {
	// Size is the number of resident workers.
	Size int
	// Resident counts tasks executed by resident workers.
	Resident uint64
	// Overflow counts tasks that found no idle resident worker and ran on
	// a dedicated goroutine instead.
	Overflow uint64
}

// Pool runs drain tasks on a fixed set of long-lived worker goroutines that
// are reused across every Waiter call sharing the pool.
//
// A task is never queued behind busy workers. When no resident worker is
// idle, Submit runs the task on an overflow goroutine. Each WaitFor call
// needs both of its drains to make progress while the child is alive; a
// drain waiting in a queue behind drains of other still-running children
// would let a child block on a full pipe forever.
//
// Concurrency is therefore bounded only while load fits the resident
// workers. Under heavier load every extra task gets its own goroutine and
// the number of running tasks is unbounded. A steadily growing
// Stats().Overflow means the pool size should be raised.
//
// It is safe for concurrent use by multiple goroutines.
type Pool struct {
	size int

	// tasks is unbuffered: a send succeeds only if a resident worker is
	// parked in receive, which is exactly the "idle worker" condition.
	tasks chan func()

	// mu guards closed against concurrent Submit and Close. Submit holds
	// the read lock across the send so Close cannot close tasks underneath.
	mu     sync.RWMutex
	closed bool

	workers  sync.WaitGroup
	overflow sync.WaitGroup

	resident atomic.Uint64
	spilled  atomic.Uint64
}

// NewPool starts a Pool with size resident workers.
// Panics if size <= 0.
func NewPool(size int) *Pool {
	if size <= 0 {
		panic(fmt.Sprintf("procwait: NewPool size must be greater than 0, got %d", size))
	}

	p := &Pool{
		size:  size,
		tasks: make(chan func()),
	}
	p.workers.Add(size)
	for range size {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.workers.Done()
	for task := range p.tasks {
		p.resident.Add(1)
		task()
	}
}

// Size returns the number of resident workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit runs task asynchronously on an idle resident worker, or on an
// overflow goroutine when every resident worker is busy. Submit never blocks
// waiting for a worker. Returns ErrPoolClosed after Close.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		panic("procwait: Pool.Submit task must not be nil")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
	default:
		p.spilled.Add(1)
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			task()
		}()
	}
	return nil
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Size:     p.size,
		Resident: p.resident.Load(),
		Overflow: p.spilled.Load(),
	}
}

// Close stops accepting tasks and waits for every submitted task, resident
// or overflow, to return. Safe to call multiple times.
//
// Close blocks for as long as in-flight drains take, which is until their
// children close stdout and stderr.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	p.workers.Wait()
	p.overflow.Wait()
}
