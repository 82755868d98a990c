package game

import (
	"fmt"
	"time"

	"github.com/yola1107/yut/internal/model"
)

// EventType 推送给表现层的事件类型
type EventType int32

const (
	EvThrow          EventType = iota + 1 // 掷棍结果
	EvMove                                // 移动结果
	EvCapture                             // 击杀
	EvTurnChanged                         // 轮到某位玩家
	EvGameEnded                           // 对局结束
	EvError                               // 可恢复的错误
	EvBranchRequest                       // 请求选择分叉
	EvTokenRequest                        // 请求选择棋子
	EvReorderRequest                      // 请求调整步数顺序
	EvDiceRequest                         // 请求指定掷棍结果(手动模式)
	EvMessage                             // 请求确认消息
)

var eventNames = map[EventType]string{
	EvThrow:          "Throw",
	EvMove:           "Move",
	EvCapture:        "Capture",
	EvTurnChanged:    "TurnChanged",
	EvGameEnded:      "GameEnded",
	EvError:          "Error",
	EvBranchRequest:  "BranchRequest",
	EvTokenRequest:   "TokenRequest",
	EvReorderRequest: "ReorderRequest",
	EvDiceRequest:    "DiceRequest",
	EvMessage:        "Message",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", t)
}

// IsRequest 是否需要外部回应
func (t EventType) IsRequest() bool {
	switch t {
	case EvBranchRequest, EvTokenRequest, EvReorderRequest, EvDiceRequest, EvMessage:
		return true
	}
	return false
}

// Event 推送事件. 请求类事件带有 RequestID/Candidates/Deadline
type Event struct {
	Type       EventType
	Seq        int64
	GameID     string
	Player     int32
	Turn       int
	RequestID  string
	Candidates []int32
	Deadline   time.Time
	Payload    any
	Message    string
}

func (e Event) String() string {
	if e.RequestID != "" {
		return fmt.Sprintf("#%d %v p=%d req=%s cands=%v %s", e.Seq, e.Type, e.Player, e.RequestID, e.Candidates, e.Message)
	}
	return fmt.Sprintf("#%d %v p=%d %s", e.Seq, e.Type, e.Player, e.Message)
}

// ThrowPayload EvThrow
type ThrowPayload struct {
	Value  int32
	Again  bool
	Throws []int32 // 本回合至今的全部结果
}

// MovePayload EvMove
type MovePayload struct {
	Step   int32
	Result *model.MoveResult
}

// CapturePayload EvCapture
type CapturePayload struct {
	By      model.TokenID
	Capture model.CaptureInfo
}

// TurnPayload EvTurnChanged
type TurnPayload struct {
	Extra bool // 因击杀获得的额外回合
}

// EndPayload EvGameEnded
type EndPayload struct {
	Winner int32
	Name   string
	Turns  int
}

// ErrorPayload EvError
type ErrorPayload struct {
	Err  error
	Step int32
}

// BranchPayload EvBranchRequest, Candidates 为节点ID
type BranchPayload struct {
	Token model.TokenID
	Step  int32
	From  string
	Names []string
}

// TokenPayload EvTokenRequest, Candidates 为棋子ID
type TokenPayload struct {
	Step int32
}

// ReorderPayload EvReorderRequest, Candidates 为本回合的掷棍结果
type ReorderPayload struct {
	Throws []int32
}
