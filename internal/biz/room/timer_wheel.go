package room

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RussellLuo/timingwheel"
	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultWheelTick = 10 * time.Millisecond
	defaultWheelSize = 128
)

type wheelTaskEntry struct {
	timer     *timingwheel.Timer
	cancelled atomic.Bool
	executing atomic.Bool
}

// wheelScheduler 时间轮调度器. 精度为 tick, 回调可能比截止时间略早或略晚
type wheelScheduler struct {
	executor Executor
	tick     time.Duration
	tw       *timingwheel.TimingWheel
	tasks    sync.Map // map[int64]*wheelTaskEntry
	nextID   atomic.Int64
	shutdown atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

func NewWheelScheduler(exec Executor, tick time.Duration) Scheduler {
	if tick <= 0 {
		tick = defaultWheelTick
	}
	s := &wheelScheduler{
		executor: exec,
		tick:     tick,
		tw:       timingwheel.NewTimingWheel(tick, defaultWheelSize),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	go func() {
		s.tw.Start()
		<-s.ctx.Done()
		s.tw.Stop()
	}()
	return s
}

func (s *wheelScheduler) Len() int {
	count := 0
	s.tasks.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (s *wheelScheduler) Once(delay time.Duration, f func()) int64 {
	if s.shutdown.Load() || s.ctx.Err() != nil {
		log.Warn("wheelScheduler is shut down; task rejected")
		return -1
	}

	taskID := s.nextID.Add(1)
	entry := &wheelTaskEntry{}
	s.tasks.Store(taskID, entry) // 先存储, 防止 timer 先触发时找不到

	entry.timer = s.tw.AfterFunc(max(delay, 0), func() {
		if entry.cancelled.Load() || !entry.executing.CompareAndSwap(false, true) {
			return
		}
		s.wg.Add(1)
		executeAsync(s.executor, func() {
			defer func() {
				s.wg.Done()
				s.tasks.Delete(taskID)
			}()
			if !entry.cancelled.Load() {
				f()
			}
		})
	})
	return taskID
}

func (s *wheelScheduler) Cancel(taskID int64) {
	val, ok := s.tasks.LoadAndDelete(taskID)
	if !ok {
		return
	}
	entry := val.(*wheelTaskEntry)
	if !entry.cancelled.CompareAndSwap(false, true) {
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
}

func (s *wheelScheduler) CancelAll() {
	s.tasks.Range(func(key, _ any) bool {
		s.Cancel(key.(int64))
		return true
	})
}

func (s *wheelScheduler) Stop() {
	s.once.Do(func() {
		s.shutdown.Store(true)
		s.cancel()
		s.CancelAll()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			log.Warnf("[wheelScheduler] shutdown timed out, some tasks may still be running")
		}
	})
}
