package room

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/panjf2000/ants/v2"

	"github.com/yola1107/yut/internal/biz/game"
	"github.com/yola1107/yut/internal/conf"
)

// Session 驱动一局游戏: 把对局事件按序推到 Events(), 为每个请求挂截止定时器.
// 对局本身不阻塞, 所有推进都经过 Session 的锁, 事件顺序与产生顺序一致.
type Session struct {
	mu     sync.Mutex
	c      *conf.Bootstrap
	g      *game.Game
	loop   Loop
	sched  Scheduler
	now    func() time.Time
	timers map[string]int64 // requestID -> taskID

	qmu     sync.Mutex
	cond    *sync.Cond
	queue   []game.Event
	qclosed bool
	events  chan game.Event

	started   bool
	stopCtx   func() bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewSession 按配置创建对局及其驱动
func NewSession(c *conf.Bootstrap, players []string, opts ...game.Option) (*Session, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Log.Record {
		opts = append([]game.Option{game.WithRecord(c.Log.Directory)}, opts...)
	}
	g, err := game.New(c.Game, players, opts...)
	if err != nil {
		return nil, err
	}
	s := &Session{
		c:      c,
		g:      g,
		loop:   newSessionLoop(c.Room.LoopSize, g.ID()),
		now:    time.Now,
		timers: make(map[string]int64),
		events: make(chan game.Event, 64),
		done:   make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.qmu)
	return s, nil
}

// newSessionLoop 池满时不阻塞定时器线程, 改为单独起协程执行
func newSessionLoop(size int, gameID string) Loop {
	return NewAntsLoop(size,
		WithPoolOptions(ants.WithNonblocking(true)),
		WithFallback(func(fn func()) {
			log.Warnf("[Session] loop overloaded, run in goroutine. game=%s", gameID)
			go safeRun(fn)
		}),
	)
}

// Start 启动协程池和定时器并开始对局. ctx 取消时等同 Close.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.loop.Start(); err != nil {
		return err
	}
	s.sched = NewScheduler(s.c.Room, s.loop)
	if err := s.g.Start(); err != nil {
		s.sched.Stop()
		s.loop.Stop()
		return err
	}
	s.started = true
	s.stopCtx = context.AfterFunc(ctx, s.Close)
	go s.pump(ctx)
	s.flush()
	return nil
}

// Events 对局事件流, 对局结束或 Close 后关闭
func (s *Session) Events() <-chan game.Event { return s.events }

// Done 事件流关闭且资源已释放
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Game() *game.Game { return s.g }

// Respond 提交回应. 重排输入不合法时同样会推送 EvError
func (s *Session) Respond(r game.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.g.Respond(r)
	s.flush()
	return err
}

// Close 停止推送并释放资源, 可重复调用
func (s *Session) Close() {
	s.closeQueue()
}

// flush 取出对局事件, 维护请求定时器后入队. 调用方持有 s.mu
func (s *Session) flush() {
	evs := s.g.Drain()
	waiting := s.g.Waiting()
	for reqID, taskID := range s.timers {
		if reqID != waiting {
			s.sched.Cancel(taskID)
			delete(s.timers, reqID)
		}
	}

	ended := false
	for _, ev := range evs {
		if ev.Type.IsRequest() && ev.RequestID == waiting {
			if _, ok := s.timers[ev.RequestID]; !ok {
				s.arm(ev.RequestID, ev.Deadline)
			}
		}
		if ev.Type == game.EvGameEnded {
			ended = true
		}
	}
	s.push(evs...)
	if ended {
		s.closeQueue()
	}
}

func (s *Session) arm(reqID string, deadline time.Time) {
	delay := max(deadline.Sub(s.now()), 0)
	taskID := s.sched.Once(delay, func() { s.onDeadline(reqID) })
	if taskID < 0 {
		return
	}
	s.timers[reqID] = taskID
	log.Debugf("[Session] arm timer. game=%s req=%s delay=%v", s.g.ID(), reqID, delay)
}

// onDeadline 定时器回调, 时间轮可能提前触发, 未到期时重新挂上
func (s *Session) onDeadline(reqID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[reqID]; !ok {
		return
	}
	delete(s.timers, reqID)

	expired := s.g.Expire(s.now())
	if len(expired) == 0 && s.g.Waiting() == reqID {
		s.arm(reqID, s.now().Add(s.c.Room.Tick))
		return
	}
	log.Debugf("[Session] expired. game=%s reqs=%v", s.g.ID(), expired)
	s.flush()
}

func (s *Session) push(evs ...game.Event) {
	if len(evs) == 0 {
		return
	}
	s.qmu.Lock()
	defer s.qmu.Unlock()
	if s.qclosed {
		return
	}
	s.queue = append(s.queue, evs...)
	s.cond.Signal()
}

func (s *Session) closeQueue() {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	s.qclosed = true
	s.cond.Broadcast()
}

// pump 把无界队列搬到 events, 消费方慢时不阻塞对局
func (s *Session) pump(ctx context.Context) {
	defer s.release()
	for {
		s.qmu.Lock()
		for len(s.queue) == 0 && !s.qclosed {
			s.cond.Wait()
		}
		batch := s.queue
		s.queue = nil
		closed := s.qclosed
		s.qmu.Unlock()

		for _, ev := range batch {
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return
			}
		}
		if closed {
			s.qmu.Lock()
			rest := len(s.queue)
			s.qmu.Unlock()
			if rest == 0 {
				return
			}
		}
	}
}

func (s *Session) release() {
	s.closeOnce.Do(func() {
		s.closeQueue()
		close(s.events)

		s.mu.Lock()
		for reqID := range s.timers {
			delete(s.timers, reqID)
		}
		s.mu.Unlock()

		if s.stopCtx != nil {
			s.stopCtx()
		}
		s.sched.Stop()
		s.loop.Stop()
		if err := s.g.Close(); err != nil {
			log.Warnf("[Session] close game. id=%s err=%v", s.g.ID(), err)
		}
		log.Infof("[Session] released. game=%s status=%v winner=%d", s.g.ID(), s.g.Status(), s.g.Winner())
		close(s.done)
	})
}
