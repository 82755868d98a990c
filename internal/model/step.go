package model

import (
	"fmt"
	"strings"
)

// MoveResult 一次移动的结果
type MoveResult struct {
	Token    TokenID       // 代表棋子
	Owner    int32         // 玩家下标
	Steps    int32         // 步数, 负数为后退
	From     NodeID        // 起始节点, 从未上棋盘出发为 NoNode
	To       NodeID        // 落点, 完成时为 NoNode
	Entered  bool          // 本次从未上棋盘出发
	Finished bool          // 走完(连同背着的棋子)
	Path     []NodeID      // 经过的节点(含落点)
	Moved    []TokenID     // 落子后这一叠的全部棋子(代表棋子在前, 含本次新叠上的)
	Captured []CaptureInfo // 被打回的对方棋子
	Stacked  []TokenID     // 本次新叠上的己方棋子
}

// CaptureInfo 击杀信息
type CaptureInfo struct {
	Token   TokenID   // 被打回的代表棋子
	Owner   int32     // 其玩家下标
	At      NodeID    // 发生位置
	Carried []TokenID // 一起被打回的棋子
}

// IsCapture 是否打回了对方棋子
func (m *MoveResult) IsCapture() bool { return len(m.Captured) > 0 }

// CapturedTokens 所有被打回的棋子(含被背着的)
func (m *MoveResult) CapturedTokens() []TokenID {
	var ids []TokenID
	for _, c := range m.Captured {
		ids = append(ids, c.Token)
		ids = append(ids, c.Carried...)
	}
	return ids
}

// Describe 文本描述, 节点用名称
func (m *MoveResult) Describe(g *Graph) string {
	var b strings.Builder
	from := g.Name(m.From)
	if m.Entered {
		from = "ready"
	}
	to := g.Name(m.To)
	if m.Finished {
		to = "finish"
	}
	fmt.Fprintf(&b, "token %d (%d) %s -> %s by %d", m.Token, len(m.Moved), from, to, m.Steps)
	if len(m.Stacked) > 0 {
		fmt.Fprintf(&b, ", stacked %v", m.Stacked)
	}
	for _, c := range m.Captured {
		fmt.Fprintf(&b, ", captured %d of player %d", c.Token, c.Owner)
		if len(c.Carried) > 0 {
			fmt.Fprintf(&b, " with %v", c.Carried)
		}
	}
	return b.String()
}
