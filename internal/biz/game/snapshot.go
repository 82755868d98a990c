package game

import (
	"slices"

	"github.com/samber/lo"

	"github.com/yola1107/yut/internal/model"
)

// Snapshot 对局的只读视图
type Snapshot struct {
	ID      string       `diff:"id"`
	Status  string       `diff:"status"`
	Phase   string       `diff:"phase"`
	Active  int32        `diff:"active"`
	Turn    int          `diff:"turn"`
	Throws  []int32      `diff:"throws"`
	Steps   []int32      `diff:"steps"`
	Winner  int32        `diff:"winner"`
	Pending int          `diff:"pending"`
	Players []PlayerView `diff:"players"`
}

type PlayerView struct {
	Index    int32       `diff:"index,identifier"`
	Name     string      `diff:"name"`
	Finished int         `diff:"finished"`
	Tokens   []TokenView `diff:"tokens"`
}

type TokenView struct {
	ID      int32   `diff:"id,identifier"`
	State   string  `diff:"state"`
	Node    string  `diff:"node"` // 实际所在节点, 被叠时为代表棋子的位置
	Carrier int32   `diff:"carrier"`
	Stack   []int32 `diff:"stack"`
}

func (g *Game) snapshot() *Snapshot {
	graph := g.board.Graph()
	s := &Snapshot{
		ID:      g.id,
		Status:  g.status.String(),
		Phase:   g.phase.String(),
		Active:  g.active,
		Turn:    g.turn,
		Throws:  slices.Clone(g.throws),
		Steps:   slices.Clone(g.steps),
		Winner:  g.winner,
		Pending: g.pending.len(),
	}
	for _, p := range g.reg.Players() {
		pv := PlayerView{
			Index:    p.Index(),
			Name:     p.Name(),
			Finished: g.reg.FinishedCount(p.Index()),
		}
		for _, id := range p.Tokens() {
			t := g.reg.Token(id)
			pv.Tokens = append(pv.Tokens, TokenView{
				ID:      int32(id),
				State:   t.State().String(),
				Node:    graph.Name(g.reg.Locate(id)),
				Carrier: int32(t.Carrier()),
				Stack:   lo.Map(t.Stack(), func(s model.TokenID, _ int) int32 { return int32(s) }),
			})
		}
		s.Players = append(s.Players, pv)
	}
	return s
}
