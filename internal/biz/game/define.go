package game

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/yola1107/yut/internal/model"
)

/*

	Status 对局状态
*/

type Status int32

const (
	StNotStarted Status = iota // 未开始
	StInProgress               // 进行中
	StFinished                 // 已结束
)

var statusNames = map[Status]string{
	StNotStarted: "NotStarted",
	StInProgress: "InProgress",
	StFinished:   "Finished",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", s)
}

/*

	Phase 回合内阶段. 需要外部决定时停在当前阶段, 由 waiting 记录等待的请求
*/

type Phase int32

const (
	PhNone     Phase = iota //
	PhThrowing              // 掷棍(手动模式下等待 DiceRequest)
	PhReorder               // 多次掷棍后等待调整顺序
	PhMoving                // 逐个处理步数(选棋子/选分叉)
	PhTurnEnd               // 回合结束, 决定下一位
)

var phaseNames = map[Phase]string{
	PhNone:     "None",
	PhThrowing: "Throwing",
	PhReorder:  "Reorder",
	PhMoving:   "Moving",
	PhTurnEnd:  "TurnEnd",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// MinPlayers 最少玩家数
const MinPlayers = 2

// Option 对局可选项
type Option func(*Game)

// WithThrower 替换掷棍方式, 测试时用 model.SequenceThrower
func WithThrower(t model.Thrower) Option {
	return func(g *Game) { g.thrower = t }
}

// WithClock 替换时钟, 决定请求的截止时间由它计算
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

func WithMeter(m metric.Meter) Option {
	return func(g *Game) { g.metrics = newMetrics(m) }
}

// WithRecord 对局记录写到 dir/game_<id>.log
func WithRecord(dir string) Option {
	return func(g *Game) { g.recordDir = dir }
}

func WithGameID(id string) Option {
	return func(g *Game) { g.id = id }
}
