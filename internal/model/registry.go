package model

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/yola1107/yut/pkg/codes"
)

// Registry 棋子位置管理. 只有代表棋子出现在节点的占用列表里,
// 被叠的棋子没有自己的位置, 位置即其 carrier 的位置.
// 修改只能经由 Resolver 完成.
type Registry struct {
	board     *Board
	tokens    []*Token            // 所有棋子, 下标即ID
	players   []*Player           //
	occupants map[NodeID][]TokenID // 节点 -> 代表棋子
}

func NewRegistry(b *Board) *Registry {
	return &Registry{
		board:     b,
		occupants: make(map[NodeID][]TokenID),
	}
}

// AddPlayer 添加玩家并创建 count 枚棋子
func (r *Registry) AddPlayer(name string, count int) (*Player, error) {
	if count < MinTokensPerPlayer || count > MaxTokensPerPlayer {
		return nil, fmt.Errorf("player %q needs %d-%d tokens, got %d",
			name, MinTokensPerPlayer, MaxTokensPerPlayer, count)
	}
	p := &Player{index: int32(len(r.players)), name: name}
	for i := 0; i < count; i++ {
		id := TokenID(len(r.tokens))
		r.tokens = append(r.tokens, newToken(id, p.index))
		p.tokens = append(p.tokens, id)
	}
	r.players = append(r.players, p)
	return p, nil
}

func (r *Registry) Board() *Board      { return r.board }
func (r *Registry) Players() []*Player { return append([]*Player(nil), r.players...) }
func (r *Registry) Tokens() []*Token   { return append([]*Token(nil), r.tokens...) }

// Token 根据ID获取棋子, 越界返回nil
func (r *Registry) Token(id TokenID) *Token {
	if id < 0 || int(id) >= len(r.tokens) {
		return nil
	}
	return r.tokens[id]
}

// Player 根据下标获取玩家
func (r *Registry) Player(index int32) *Player {
	if index < 0 || int(index) >= len(r.players) {
		return nil
	}
	return r.players[index]
}

// PositionOf 棋子自身的位置; 未上棋盘/已完成/被叠时返回 NoNode
func (r *Registry) PositionOf(id TokenID) NodeID {
	if t := r.Token(id); t != nil {
		return t.pos
	}
	return NoNode
}

// Locate 棋子实际所在节点(被叠的棋子取其代表棋子的位置)
func (r *Registry) Locate(id TokenID) NodeID {
	return r.PositionOf(r.Representative(id))
}

// Representative 背着该棋子的代表棋子
func (r *Registry) Representative(id TokenID) TokenID {
	t := r.Token(id)
	if t == nil {
		return NoToken
	}
	if t.carrier != NoToken {
		return t.carrier
	}
	return id
}

// Occupants 节点上的代表棋子(拷贝)
func (r *Registry) Occupants(node NodeID) []TokenID {
	return append([]TokenID(nil), r.occupants[node]...)
}

// AllFinished 玩家所有棋子是否都已完成
func (r *Registry) AllFinished(player int32) bool {
	p := r.Player(player)
	if p == nil || len(p.tokens) == 0 {
		return false
	}
	return lo.EveryBy(p.tokens, func(id TokenID) bool {
		return r.tokens[id].state == TokenFinished
	})
}

// FinishedCount 玩家已完成的棋子数
func (r *Registry) FinishedCount(player int32) int {
	p := r.Player(player)
	if p == nil {
		return 0
	}
	return lo.CountBy(p.tokens, func(id TokenID) bool {
		return r.tokens[id].state == TokenFinished
	})
}

// placeAtStart 未上棋盘的棋子放到起点
func (r *Registry) placeAtStart(id TokenID) error {
	t := r.Token(id)
	if t == nil {
		return codes.ErrUnknownToken
	}
	if t.state != TokenReady {
		return codes.ErrInvalidTokenState.WithCause(fmt.Errorf("token %d is %v", id, t.state))
	}
	t.state = TokenActive
	r.updatePosition(id, r.board.start)
	return nil
}

// updatePosition 更新代表棋子位置并维护节点占用
func (r *Registry) updatePosition(id TokenID, node NodeID) {
	t := r.tokens[id]
	if t.pos != NoNode {
		r.removeOccupant(t.pos, id)
	}
	t.pos = node
	if node != NoNode {
		r.occupants[node] = append(r.occupants[node], id)
	}
}

// moveRepresentative 移动代表棋子(被叠的棋子随之移动).
// target 为 NoNode 时代表棋子及其背着的棋子全部完成.
func (r *Registry) moveRepresentative(id TokenID, target NodeID) {
	t := r.tokens[id]
	r.updatePosition(id, target)
	if target != NoNode {
		return
	}
	for _, sid := range t.stack {
		r.tokens[sid].reset(TokenFinished)
	}
	t.reset(TokenFinished)
}

// resetToStart 回到未上棋盘状态(Ready), 背着的棋子一起回去
func (r *Registry) resetToStart(id TokenID) {
	t := r.tokens[id]
	if t.pos != NoNode {
		r.removeOccupant(t.pos, id)
	}
	for _, sid := range t.stack {
		r.tokens[sid].reset(TokenReady)
	}
	t.reset(TokenReady)
}

// stackOnto 把 id(及其背着的棋子) 叠到 carrier 上
func (r *Registry) stackOnto(carrier, id TokenID) []TokenID {
	c, t := r.tokens[carrier], r.tokens[id]
	if t.pos != NoNode {
		r.removeOccupant(t.pos, id)
	}
	moved := append([]TokenID{id}, t.stack...)
	for _, sid := range moved {
		s := r.tokens[sid]
		s.state = TokenActive
		s.pos = NoNode
		s.carrier = carrier
		s.stack = nil
		s.override = NoNode
		s.prev = NoNode
	}
	c.stack = append(c.stack, moved...)
	return moved
}

func (r *Registry) removeOccupant(node NodeID, id TokenID) {
	list := lo.Without(r.occupants[node], id)
	if len(list) == 0 {
		delete(r.occupants, node)
		return
	}
	r.occupants[node] = list
}
