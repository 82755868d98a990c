package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/yola1107/yut/internal/conf"
	"github.com/yola1107/yut/internal/model"
	"github.com/yola1107/yut/pkg/codes"
)

// Game 一局游戏. 所有入口加锁, 同一时刻只处理一次移动.
// 需要外部决定时发出请求事件并立即返回, 由 Respond/Expire 继续.
type Game struct {
	mu        sync.Mutex
	id        string
	c         *conf.Game
	board     *model.Board
	reg       *model.Registry
	res       *model.Resolver
	thrower   model.Thrower
	now       func() time.Time
	metrics   *metrics
	recordDir string
	record    *Record

	status  Status
	phase   Phase
	active  int32    // 当前玩家
	turn    int      // 回合数, 从1开始
	throws  []int32  // 本回合掷棍结果
	steps   []int32  // 调整顺序后待处理的步数
	stepIdx int      // 正在处理的步数下标
	capture bool     // 本回合是否击杀过
	winner  int32    //
	waiting *request // 正在等待的请求
	pending *decisions
	seq     int64
	outbox  []Event
}

// New 创建对局, players 为玩家名称(按顺序轮流)
func New(c *conf.Game, players []string, opts ...Option) (*Game, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(players) < MinPlayers {
		return nil, codes.ErrInvalidConfig.WithCause(fmt.Errorf("need at least %d players, got %d", MinPlayers, len(players)))
	}
	board, err := model.NewBoard(c.Sides, c.Radius)
	if err != nil {
		return nil, codes.ErrInvalidConfig.WithCause(err)
	}
	reg := model.NewRegistry(board)
	for _, name := range players {
		if _, err := reg.AddPlayer(name, c.TokensPerPlayer); err != nil {
			return nil, codes.ErrInvalidConfig.WithCause(err)
		}
	}

	g := &Game{
		c:       c.Clone(),
		board:   board,
		reg:     reg,
		res:     model.NewResolver(reg),
		now:     time.Now,
		status:  StNotStarted,
		phase:   PhNone,
		winner:  -1,
		pending: newDecisions(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.id == "" {
		if g.id, err = gonanoid.New(12); err != nil {
			return nil, err
		}
	}
	if g.thrower == nil {
		g.thrower = model.NewStickThrower(c.Seed)
	}
	if g.metrics == nil {
		g.metrics = defaultMetrics()
	}
	if g.recordDir != "" {
		g.record = NewRecord(g.recordDir, g.id)
	}
	return g, nil
}

// Start 开始对局, 由 0 号玩家先手
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StNotStarted {
		return codes.ErrGameStarted
	}
	g.status = StInProgress
	g.record.begin(g)
	log.Infof("game start. id=%s sides=%d players=%d mode=%s", g.id, g.board.Sides(), len(g.reg.Players()), g.c.ThrowMode)

	g.beginTurn(0, false)
	g.run()
	return nil
}

// Drain 取出并清空待推送事件
func (g *Game) Drain() []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.outbox
	g.outbox = nil
	return out
}

// Close 结束记录文件
func (g *Game) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.record.Close()
}

func (g *Game) Snapshot() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) ID() string                { return g.id }
func (g *Game) Board() *model.Board       { return g.board }
func (g *Game) Registry() *model.Registry { return g.reg }

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Winner 胜者下标, 未结束时为 -1
func (g *Game) Winner() int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner
}

func (g *Game) Turn() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turn
}

// Waiting 正在等待回应的请求ID, 没有时为空串
func (g *Game) Waiting() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.waiting == nil {
		return ""
	}
	return g.waiting.id
}

func (g *Game) Desc() string {
	return fmt.Sprintf("(G:%s St:%v Ph:%v active:%d turn:%d throws:%v steps:%v idx:%d)",
		g.id, g.status, g.phase, g.active, g.turn, g.throws, g.steps, g.stepIdx)
}

// emit 追加事件
func (g *Game) emit(ev Event) {
	g.seq++
	ev.Seq = g.seq
	ev.GameID = g.id
	ev.Turn = g.turn
	g.outbox = append(g.outbox, ev)
}
