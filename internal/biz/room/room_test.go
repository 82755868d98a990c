package room

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yola1107/yut/internal/biz/game"
	"github.com/yola1107/yut/internal/conf"
	"github.com/yola1107/yut/internal/model"
	"github.com/yola1107/yut/pkg/codes"
)

func TestMain(m *testing.M) {
	log.SetLogger(log.NewFilter(log.NewStdLogger(os.Stdout), log.FilterLevel(log.LevelInfo)))
	os.Exit(m.Run())
}

func testBootstrap(mutate ...func(c *conf.Bootstrap)) *conf.Bootstrap {
	c := conf.DefaultConfig()
	c.Log.Record = false
	c.Game.TokensPerPlayer = 2
	c.Game.Seed = 7
	c.Room.LoopSize = 8
	for _, m := range mutate {
		m(c)
	}
	return c
}

func TestSchedulerOnce(t *testing.T) {
	for _, name := range []string{conf.SchedulerHeap, conf.SchedulerWheel} {
		t.Run(name, func(t *testing.T) {
			loop := NewAntsLoop(4)
			require.NoError(t, loop.Start())
			defer loop.Stop()

			s := NewScheduler(&conf.Room{Scheduler: name, Tick: 5 * time.Millisecond}, loop)
			defer s.Stop()

			var fired, cancelled atomic.Int32
			s.Once(20*time.Millisecond, func() { fired.Add(1) })
			id := s.Once(30*time.Millisecond, func() { cancelled.Add(1) })
			assert.Equal(t, 2, s.Len())
			s.Cancel(id)

			assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
			time.Sleep(60 * time.Millisecond)
			assert.Equal(t, int32(0), cancelled.Load())
			assert.Equal(t, 0, s.Len())

			s.Stop()
			assert.Equal(t, int64(-1), s.Once(time.Millisecond, func() {}))
		})
	}
}

func TestHeapSchedulerOrder(t *testing.T) {
	s := NewHeapScheduler(nil)
	defer s.Stop()

	got := make(chan int, 3)
	s.Once(40*time.Millisecond, func() { got <- 3 })
	s.Once(10*time.Millisecond, func() { got <- 1 })
	s.Once(25*time.Millisecond, func() { got <- 2 })
	for want := 1; want <= 3; want++ {
		select {
		case v := <-got:
			assert.Equal(t, want, v)
		case <-time.After(time.Second):
			t.Fatal("timer not fired")
		}
	}
}

func TestLoopFallback(t *testing.T) {
	loop := NewAntsLoop(2)
	done := make(chan struct{})
	loop.Post(func() { close(done) }) // 未启动时走 fallback
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fallback not run")
	}

	require.NoError(t, loop.Start())
	assert.Equal(t, 2, loop.Status().Capacity)
	loop.Stop()
	assert.Equal(t, LoopStatus{}, loop.Status())
}

func TestLoopOverloadFallback(t *testing.T) {
	var fallbacks atomic.Int32
	loop := NewAntsLoop(1,
		WithPoolOptions(ants.WithNonblocking(true)),
		WithFallback(func(fn func()) {
			fallbacks.Add(1)
			go fn()
		}),
	)
	require.NoError(t, loop.Start())
	defer loop.Stop()

	release := make(chan struct{})
	loop.Post(func() { <-release })

	// 唯一的 worker 被占用, 非阻塞模式下提交失败走 fallback
	done := make(chan struct{})
	loop.Post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("overloaded job not run")
	}
	assert.Equal(t, int32(1), fallbacks.Load())
	close(release)

	// 对局用的 loop 未启动时同样不丢任务
	ran := make(chan struct{})
	newSessionLoop(1, "g").Post(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("session loop fallback not run")
	}
}

func TestResponderDefaults(t *testing.T) {
	r := NewResponder(nil)
	tests := []struct {
		ev   game.Event
		want game.Response
	}{
		{game.Event{Type: game.EvBranchRequest, RequestID: "b", Candidates: []int32{7, 3}}, game.BranchResponse{ID: "b", Node: 7}},
		{game.Event{Type: game.EvTokenRequest, RequestID: "t", Candidates: []int32{2, 1}}, game.TokenResponse{ID: "t", Token: 2}},
		{game.Event{Type: game.EvReorderRequest, RequestID: "r", Candidates: []int32{5, 4, -1}}, game.ReorderResponse{ID: "r", Input: "5,4,-1"}},
		{game.Event{Type: game.EvDiceRequest, RequestID: "d", Candidates: model.ThrowValues}, game.DiceResponse{ID: "d", Value: model.ThrowValues[0]}},
		{game.Event{Type: game.EvMessage, RequestID: "m"}, game.Ack{ID: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.ev.Type.String(), func(t *testing.T) {
			got, ok := r.Response(tt.ev)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := r.Response(game.Event{Type: game.EvMove})
	assert.False(t, ok)
	got, ok := DefaultResponse(game.Event{Type: game.EvTokenRequest, RequestID: "t", Candidates: []int32{3}})
	require.True(t, ok)
	assert.Equal(t, game.TokenResponse{ID: "t", Token: 3}, got)

	thrown, ok := NewResponder(model.NewSequenceThrower(4)).Response(game.Event{Type: game.EvDiceRequest, RequestID: "d"})
	require.True(t, ok)
	assert.Equal(t, game.DiceResponse{ID: "d", Value: 4}, thrown)
}

func TestSessionAutoplay(t *testing.T) {
	for _, name := range []string{conf.SchedulerHeap, conf.SchedulerWheel} {
		t.Run(name, func(t *testing.T) {
			c := testBootstrap(func(c *conf.Bootstrap) {
				c.Room.Scheduler = name
				c.Game.RequireAck = true
				c.Game.AutoSelectSingle = false
			})
			s, err := NewSession(c, []string{"red", "blue"})
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			require.NoError(t, s.Start(ctx))

			var seen []game.Event
			winner, err := Autoplay(ctx, s, NewResponder(nil), func(ev game.Event) { seen = append(seen, ev) })
			require.NoError(t, err)

			assert.Contains(t, []int32{0, 1}, winner)
			assert.Equal(t, game.StFinished, s.Game().Status())
			require.NotEmpty(t, seen)
			assert.Equal(t, game.EvGameEnded, seen[len(seen)-1].Type)
			for i := 1; i < len(seen); i++ {
				assert.Equal(t, seen[i-1].Seq+1, seen[i].Seq, "events must arrive in order")
			}

			select {
			case <-s.Done():
			case <-time.After(2 * time.Second):
				t.Fatal("session not released")
			}
		})
	}
}

func TestSessionDecisionTimeout(t *testing.T) {
	c := testBootstrap(func(c *conf.Bootstrap) {
		c.Game.ThrowMode = conf.ThrowManual
		c.Game.DecisionTimeout = 30 * time.Millisecond
	})
	s, err := NewSession(c, []string{"red", "blue"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Start(ctx))

	// 不回应, 等待超时后轮到下一位
	var timeout bool
	for ev := range s.Events() {
		if ev.Type == game.EvError {
			payload := ev.Payload.(game.ErrorPayload)
			assert.Equal(t, codes.ErrDecisionTimeout.Reason, errors.Reason(payload.Err))
			assert.Equal(t, int32(0), ev.Player)
			timeout = true
		}
		if ev.Type == game.EvDiceRequest && ev.Player == 1 {
			break
		}
	}
	assert.True(t, timeout)

	s.Close()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session not released")
	}
	_, open := <-s.Events()
	assert.False(t, open)
}

func TestSessionReorderRejected(t *testing.T) {
	c := testBootstrap()
	seq := model.NewSequenceThrower(5, 3)
	s, err := NewSession(c, []string{"red", "blue"}, game.WithThrower(seq))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer s.Close()

	var req game.Event
	for ev := range s.Events() {
		if ev.Type == game.EvReorderRequest {
			req = ev
			break
		}
	}
	require.Equal(t, []int32{5, 3}, req.Candidates)

	err = s.Respond(game.ReorderResponse{ID: req.RequestID, Input: "5,2"})
	assert.True(t, codes.IsReorderValidation(err))
	ev := <-s.Events()
	assert.Equal(t, game.EvError, ev.Type)
	assert.Equal(t, req.RequestID, s.Game().Waiting())

	require.NoError(t, s.Respond(game.ReorderResponse{ID: req.RequestID, Input: "3,5"}))
	assert.NotEqual(t, req.RequestID, s.Game().Waiting())
}

func TestNewSessionInvalid(t *testing.T) {
	_, err := NewSession(testBootstrap(), []string{"solo"})
	assert.True(t, errors.Is(err, codes.ErrInvalidConfig))

	_, err = NewSession(testBootstrap(func(c *conf.Bootstrap) { c.Room.Scheduler = "cron" }), []string{"a", "b"})
	assert.True(t, errors.Is(err, codes.ErrInvalidConfig))
}
