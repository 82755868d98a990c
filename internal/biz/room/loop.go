package room

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/panjf2000/ants/v2"
)

// LoopStatus 协程池状态
type LoopStatus struct {
	Capacity int // 池最大容量
	Running  int // 当前运行中协程数
	Free     int // 空闲协程数（Capacity - Running）
}

// Loop 任务执行器, 定时器回调投递到这里执行
type Loop interface {
	Start() error
	Stop()
	Status() LoopStatus
	Post(job func())
}

type LoopOption func(*antsLoop)

// WithFallback 自定义任务提交失败处理策略
func WithFallback(fallback func(fn func())) LoopOption {
	return func(l *antsLoop) {
		l.fallback = fallback
	}
}

// WithPoolOptions 自定义ants池选项
func WithPoolOptions(opts ...ants.Option) LoopOption {
	return func(l *antsLoop) {
		l.poolOptions = append(l.poolOptions, opts...)
	}
}

type antsLoop struct {
	mu          sync.RWMutex
	pool        *ants.Pool
	size        int
	fallback    func(func())
	poolOptions []ants.Option
}

// NewAntsLoop 创建协程池实例
func NewAntsLoop(size int, opts ...LoopOption) Loop {
	l := &antsLoop{
		size: size,
		fallback: func(fn func()) {
			go safeRun(fn)
		},
		poolOptions: []ants.Option{
			ants.WithExpiryDuration(60 * time.Second), // 每60s清理一次闲置 worker
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *antsLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool != nil {
		log.Warnf("antsLoop already started.")
		return nil
	}
	pool, err := ants.NewPool(l.size, l.poolOptions...)
	if err != nil {
		return fmt.Errorf("pool init failed: %w", err)
	}
	l.pool = pool
	log.Debugf("antsLoop start... [size:%d]", l.size)
	return nil
}

func (l *antsLoop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool != nil {
		p := l.pool
		l.pool = nil
		p.Release()
		log.Debugf("antsLoop stopping [running:%d]", p.Running())
	}
}

func (l *antsLoop) Status() LoopStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.pool == nil {
		return LoopStatus{}
	}
	capacity, running := l.pool.Cap(), l.pool.Running()
	return LoopStatus{
		Capacity: capacity,
		Running:  running,
		Free:     max(capacity-running, 0),
	}
}

func (l *antsLoop) Post(fn func()) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.pool == nil || l.pool.IsClosed() {
		l.triggerFallback(fn, "loop not started or loop is closed.")
		return
	}
	if err := l.pool.Submit(func() { safeRun(fn) }); err != nil {
		l.triggerFallback(fn, err.Error())
	}
}

func (l *antsLoop) triggerFallback(fn func(), reason string) {
	log.Warnf("antsLoop fallback. reason=%s", reason)
	l.fallback(fn)
}

func safeRun(fn func()) {
	defer RecoverFromError(nil)
	fn()
}

func RecoverFromError(cb func(e any)) {
	if e := recover(); e != nil {
		log.Errorf("Recover => %v\n%s\n", e, debug.Stack())
		if cb != nil {
			cb(e)
		}
	}
}
