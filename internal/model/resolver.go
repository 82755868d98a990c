package model

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/yola1107/yut/pkg/codes"
)

// BranchSelector 起步即在分叉点时询问调用方走哪条出边
type BranchSelector func(from *Node, candidates []*Node) *Node

// Resolver 逐步走图, 处理分叉/击杀/叠子
type Resolver struct {
	board *Board
	graph *Graph
	reg   *Registry
}

func NewResolver(reg *Registry) *Resolver {
	return &Resolver{
		board: reg.board,
		graph: reg.board.graph,
		reg:   reg,
	}
}

func (r *Resolver) Registry() *Registry { return r.reg }
func (r *Resolver) Board() *Board       { return r.board }

// CanMove 判断棋子能否使用 steps 步
//   - 后退(steps<0) 只允许棋盘上的代表棋子
//   - 前进 允许未上棋盘的棋子和棋盘上的代表棋子
func (r *Resolver) CanMove(id TokenID, steps int32) error {
	t := r.reg.Token(id)
	if t == nil {
		return codes.ErrUnknownToken
	}
	if steps == 0 {
		return codes.ErrInvalidStep
	}
	if !t.IsRepresentative() {
		return codes.ErrNotRepresentative
	}
	switch t.state {
	case TokenActive:
		return nil
	case TokenReady:
		if steps > 0 {
			return nil
		}
	}
	return codes.ErrInvalidTokenState.WithCause(fmt.Errorf("token %d is %v", id, t.state))
}

// BranchCandidates 代表棋子所在节点是分叉点时返回全部出边, 否则nil.
// 未上棋盘的棋子按起点计算.
func (r *Resolver) BranchCandidates(id TokenID) []NodeID {
	t := r.reg.Token(id)
	if t == nil || !t.IsRepresentative() {
		return nil
	}
	from := t.pos
	switch t.state {
	case TokenReady:
		from = r.board.start
	case TokenFinished:
		return nil
	}
	if next := r.graph.Next(from); len(next) >= 2 {
		return append([]NodeID(nil), next...)
	}
	return nil
}

// SetBranchOverride 预先指定下一个分叉点的出边, 使用一次后清除
func (r *Resolver) SetBranchOverride(id TokenID, node NodeID) error {
	t := r.reg.Token(id)
	if t == nil {
		return codes.ErrUnknownToken
	}
	if !t.IsRepresentative() {
		return codes.ErrNotRepresentative
	}
	if t.state == TokenFinished {
		return codes.ErrInvalidTokenState
	}
	if r.graph.Node(node) == nil {
		return codes.ErrInvalidSelection
	}
	t.override = node
	return nil
}

// Enter 未上棋盘的棋子先放到起点再前进; 其余同 Move
func (r *Resolver) Enter(id TokenID, steps int32, sel BranchSelector) (*MoveResult, error) {
	if err := r.CanMove(id, steps); err != nil {
		return nil, err
	}
	t := r.reg.tokens[id]
	if t.state != TokenReady {
		return r.Move(id, steps, sel)
	}
	if err := r.reg.placeAtStart(id); err != nil {
		return nil, err
	}
	res, err := r.forward(t, steps, sel)
	if err != nil {
		return nil, err
	}
	res.From = NoNode
	res.Entered = true
	return res, nil
}

// Move 移动代表棋子 steps 步, 负数表示后退
func (r *Resolver) Move(id TokenID, steps int32, sel BranchSelector) (*MoveResult, error) {
	t := r.reg.Token(id)
	if t == nil {
		return nil, codes.ErrUnknownToken
	}
	if steps < 0 {
		return r.Back(id, -steps)
	}
	if steps == 0 {
		return nil, codes.ErrInvalidStep
	}
	if !t.IsRepresentative() {
		return nil, codes.ErrNotRepresentative
	}
	if t.state != TokenActive {
		return nil, codes.ErrInvalidTokenState.WithCause(fmt.Errorf("token %d is %v", id, t.state))
	}
	return r.forward(t, steps, sel)
}

// Back 后退 steps 步(Backdo). 只走前驱, 不会因此完成
func (r *Resolver) Back(id TokenID, steps int32) (*MoveResult, error) {
	t := r.reg.Token(id)
	if t == nil {
		return nil, codes.ErrUnknownToken
	}
	if steps <= 0 {
		return nil, codes.ErrInvalidStep
	}
	if t.state != TokenActive {
		return nil, codes.ErrInvalidTokenState.WithCause(fmt.Errorf("token %d is %v", id, t.state))
	}
	if !t.IsRepresentative() {
		return nil, codes.ErrNotRepresentative
	}

	res := r.newResult(t, -steps)
	cur := t.pos
	for i := int32(0); i < steps; i++ {
		p, ok := r.graph.Predecessor(cur)
		if !ok {
			cur = r.board.start
			res.Path = append(res.Path, cur)
			break
		}
		cur = p
		res.Path = append(res.Path, cur)
	}
	r.land(t, cur, res)
	return res, nil
}

// forward 前进一步一步走
func (r *Resolver) forward(t *Token, steps int32, sel BranchSelector) (*MoveResult, error) {
	res := r.newResult(t, steps)
	start := t.pos
	cur := start
	remaining := steps
	for remaining > 0 {
		out := r.graph.Next(cur)
		var next NodeID
		switch len(out) {
		case 0:
			res.Finished = true
		case 1:
			next = out[0]
		default:
			next = r.choose(t, cur, cur == start && len(res.Path) == 0, out, sel)
		}
		if res.Finished {
			break
		}
		if next == r.graph.center {
			t.prev = cur
		}
		cur = next
		res.Path = append(res.Path, cur)
		remaining--
	}
	// 正好停在没有出边的点上同样完成
	if !res.Finished && len(r.graph.Next(cur)) == 0 {
		res.Finished = true
	}

	if res.Finished {
		res.To = NoNode
		r.reg.moveRepresentative(t.id, NoNode)
		return res, nil
	}
	r.land(t, cur, res)
	return res, nil
}

// choose 分叉点选路: 一次性指定 > 起步询问 > 默认规则
func (r *Resolver) choose(t *Token, at NodeID, first bool, out []NodeID, sel BranchSelector) NodeID {
	if o := t.override; o != NoNode {
		t.override = NoNode
		if lo.Contains(out, o) {
			return o
		}
	}
	if first && sel != nil {
		cands := lo.Map(out, func(id NodeID, _ int) *Node { return r.graph.nodes[id] })
		if n := sel(r.graph.nodes[at], cands); n != nil && lo.Contains(out, n.id) {
			return n.id
		}
	}
	return r.defaultExit(t, at, out)
}

// defaultExit 经过分叉点时不询问, 按默认规则走
func (r *Resolver) defaultExit(t *Token, at NodeID, out []NodeID) NodeID {
	node := r.graph.nodes[at]
	switch node.role {
	case RoleOuterBranch:
		// 外圈顶点: 沿外圈继续
		if id, ok := lo.Find(out, func(id NodeID) bool {
			return r.graph.nodes[id].role != RoleShortcut
		}); ok {
			return id
		}
	case RoleCenter:
		return r.centerExit(t, out)
	}
	return out[0]
}

// centerExit 中心出口. 四边形棋盘从 k 号捷径进入则从 (k+2)%4 号捷径直行穿出;
// 其他棋盘优先选择非 0 号捷径.
func (r *Resolver) centerExit(t *Token, out []NodeID) NodeID {
	if r.graph.sides == 4 {
		if prev := r.graph.Node(t.prev); prev != nil && prev.role == RoleShortcut {
			want := (prev.side + 2) % 4
			if id, ok := lo.Find(out, func(id NodeID) bool {
				return r.graph.nodes[id].side == want
			}); ok {
				return id
			}
		}
		return out[0]
	}
	if id, ok := lo.Find(out, func(id NodeID) bool {
		return r.graph.nodes[id].side != 0
	}); ok {
		return id
	}
	return out[0]
}

// land 落子后处理击杀和叠子. 先对落点上已有棋子做快照, 再逐个处理
func (r *Resolver) land(t *Token, target NodeID, res *MoveResult) {
	others := lo.Without(r.reg.Occupants(target), t.id)
	r.reg.moveRepresentative(t.id, target)
	res.To = target

	for _, oid := range others {
		o := r.reg.tokens[oid]
		if o.IsEnemy(t) {
			info := CaptureInfo{Token: oid, Owner: o.owner, At: target, Carried: o.Stack()}
			r.reg.resetToStart(oid)
			res.Captured = append(res.Captured, info)
			continue
		}
		res.Stacked = append(res.Stacked, r.reg.stackOnto(t.id, oid)...)
	}
	res.Moved = append([]TokenID{t.id}, t.stack...)
}

func (r *Resolver) newResult(t *Token, steps int32) *MoveResult {
	return &MoveResult{
		Token: t.id,
		Owner: t.owner,
		Steps: steps,
		From:  t.pos,
		To:    NoNode,
		Moved: append([]TokenID{t.id}, t.stack...),
	}
}
