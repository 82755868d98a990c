package model

import "fmt"

// TokenState 棋子状态
type TokenState int32

const (
	TokenReady    TokenState = iota // 未上棋盘
	TokenActive                     // 在棋盘上(或被叠在己方棋子下)
	TokenFinished                   // 已走完
)

func (s TokenState) String() string {
	switch s {
	case TokenReady:
		return "Ready"
	case TokenActive:
		return "Active"
	case TokenFinished:
		return "Finished"
	default:
		return fmt.Sprintf("TokenState(%d)", int32(s))
	}
}

// TokenID 棋子ID, 即棋子在 Registry 中的下标
type TokenID int32

// NoToken 无棋子
const NoToken TokenID = -1

// Token 一枚棋子
type Token struct {
	id       TokenID
	owner    int32      // 玩家下标
	state    TokenState //
	pos      NodeID     // 只有代表棋子有位置
	carrier  TokenID    // 背着自己的棋子, 代表棋子为 NoToken
	stack    []TokenID  // 背着的棋子
	override NodeID     // 一次性的分叉选择
	prev     NodeID     // 进入中心前的节点
}

func newToken(id TokenID, owner int32) *Token {
	return &Token{
		id:       id,
		owner:    owner,
		state:    TokenReady,
		pos:      NoNode,
		carrier:  NoToken,
		override: NoNode,
		prev:     NoNode,
	}
}

func (t *Token) ID() TokenID            { return t.id }
func (t *Token) Owner() int32           { return t.owner }
func (t *Token) State() TokenState      { return t.state }
func (t *Token) Pos() NodeID            { return t.pos }
func (t *Token) Carrier() TokenID       { return t.carrier }
func (t *Token) Stack() []TokenID       { return append([]TokenID(nil), t.stack...) }
func (t *Token) Override() NodeID       { return t.override }
func (t *Token) PrevNode() NodeID       { return t.prev }
func (t *Token) IsReady() bool          { return t.state == TokenReady }
func (t *Token) IsActive() bool         { return t.state == TokenActive }
func (t *Token) IsFinished() bool       { return t.state == TokenFinished }
func (t *Token) IsRepresentative() bool { return t.carrier == NoToken }
func (t *Token) IsEnemy(o *Token) bool  { return t.owner != o.owner }
func (t *Token) Size() int              { return len(t.stack) + 1 }

func (t *Token) Desc() string {
	return fmt.Sprintf("[ID:%d owner:%d state:%v pos:%d carrier:%d stack:%v]",
		t.id, t.owner, t.state, t.pos, t.carrier, t.stack)
}

// reset 回到未上棋盘
func (t *Token) reset(state TokenState) {
	t.state = state
	t.pos = NoNode
	t.carrier = NoToken
	t.stack = nil
	t.override = NoNode
	t.prev = NoNode
}
