package room

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

type heapTaskEntry struct {
	id        int64
	execAt    time.Time
	cancelled atomic.Bool
	task      func()
	index     int // 堆索引, 用于从堆中删除
}

// taskQueue 小顶堆 + map
type taskQueue struct {
	mu    sync.Mutex
	heap  []*heapTaskEntry
	tasks map[int64]*heapTaskEntry
}

func newTaskQueue() *taskQueue {
	return &taskQueue{tasks: make(map[int64]*heapTaskEntry)}
}

func (q *taskQueue) Len() int           { return len(q.heap) }
func (q *taskQueue) Less(i, j int) bool { return q.heap[i].execAt.Before(q.heap[j].execAt) }
func (q *taskQueue) Swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.heap[i].index = i
	q.heap[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*heapTaskEntry)
	t.index = len(q.heap)
	q.heap = append(q.heap, t)
}

func (q *taskQueue) Pop() any {
	n := len(q.heap)
	t := q.heap[n-1]
	t.index = -1
	q.heap = q.heap[:n-1]
	return t
}

// add 入堆, 比堆顶更早时需要唤醒循环
func (q *taskQueue) add(t *heapTaskEntry) (needWake bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks[t.id] = t
	needWake = len(q.heap) == 0 || t.execAt.Before(q.heap[0].execAt)
	heap.Push(q, t)
	return needWake
}

func (q *taskQueue) popExpired(now time.Time) []*heapTaskEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	var expired []*heapTaskEntry
	for len(q.heap) > 0 && !q.heap[0].execAt.After(now) {
		t := heap.Pop(q).(*heapTaskEntry)
		delete(q.tasks, t.id)
		if !t.cancelled.Load() {
			expired = append(expired, t)
		}
	}
	return expired
}

func (q *taskQueue) remove(taskID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.tasks[taskID]
	if !ok {
		return
	}
	t.cancelled.Store(true)
	t.task = nil
	delete(q.tasks, taskID)
	if t.index >= 0 && t.index < len(q.heap) {
		heap.Remove(q, t.index)
	}
}

func (q *taskQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.tasks {
		t.cancelled.Store(true)
		t.task = nil
	}
	q.heap = nil
	q.tasks = make(map[int64]*heapTaskEntry)
}

func (q *taskQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *taskQueue) nextExec(now time.Time) time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return time.Hour
	}
	return max(q.heap[0].execAt.Sub(now), 0)
}

// heapScheduler 基于最小堆的调度器, 到点即触发
type heapScheduler struct {
	executor Executor
	queue    *taskQueue
	nextID   atomic.Int64
	shutdown atomic.Bool
	timer    *time.Timer
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	wakeup   chan struct{}
}

func NewHeapScheduler(exec Executor) Scheduler {
	s := &heapScheduler{
		executor: exec,
		queue:    newTaskQueue(),
		wakeup:   make(chan struct{}, 1),
		timer:    time.NewTimer(time.Hour),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.timer.Stop()
	go s.loop()
	return s
}

func (s *heapScheduler) loop() {
	defer RecoverFromError(func(e any) { go s.loop() })
	for {
		for _, t := range s.queue.popExpired(time.Now()) {
			task := t.task
			if task == nil {
				continue
			}
			s.wg.Add(1)
			executeAsync(s.executor, func() {
				defer s.wg.Done()
				task()
			})
		}

		s.timer.Reset(s.queue.nextExec(time.Now()))
		select {
		case <-s.timer.C:
		case <-s.wakeup:
			if !s.timer.Stop() {
				select {
				case <-s.timer.C:
				default:
				}
			}
		case <-s.ctx.Done():
			s.timer.Stop()
			return
		}
	}
}

func (s *heapScheduler) Len() int { return s.queue.count() }

func (s *heapScheduler) Once(delay time.Duration, f func()) int64 {
	if s.shutdown.Load() {
		log.Warn("heapScheduler is shut down; task rejected")
		return -1
	}
	t := &heapTaskEntry{
		id:     s.nextID.Add(1),
		execAt: time.Now().Add(delay),
		task:   f,
	}
	if s.queue.add(t) {
		s.signalWakeup()
	}
	return t.id
}

func (s *heapScheduler) Cancel(taskID int64) {
	s.queue.remove(taskID)
}

func (s *heapScheduler) CancelAll() {
	s.queue.clear()
	s.signalWakeup()
}

func (s *heapScheduler) Stop() {
	if !s.shutdown.CompareAndSwap(false, true) {
		return
	}
	s.cancel()
	s.CancelAll()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		log.Warn("heapScheduler shutdown timed out, some tasks may still be running")
	}
}

func (s *heapScheduler) signalWakeup() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}
