package model

import (
	"fmt"
	"math"
)

/*
	BoardGraph 棋盘拓扑

	n 边形棋盘 (n>=3):
	- 外圈: 每条边 6 个点 Edge{i}-0..Edge{i}-5, 第 i 条边的 0 号点即第 i-1 条边的 5 号点
	- Edge0-0 为起点(Start), Edge{n-1}-5 为终点角(无出边, 到达即完成)
	- 每条边的顶点各有一条两格的捷径 Shortcut{i}-1(靠顶点) Shortcut{i}-2(靠中心)
	- 边 1..n/2 的捷径指向中心 (顶点 -> S1 -> S2 -> Center)
	- 其余边(含边 0)的捷径从中心向外 (Center -> S2 -> S1 -> 顶点)

	四边形棋盘: 边 1,2 向内, 边 3,0 向外; 从 Shortcut1 进入中心默认从 Shortcut3 出,
	从 Shortcut2 进入中心默认从 Shortcut0 出直达终点.
*/

// Role 节点角色, 建图时确定
type Role int32

const (
	RolePlain       Role = iota // 普通点
	RoleStart                   // 起点
	RoleOuterBranch             // 外圈顶点
	RoleShortcut                // 捷径点
	RoleCenter                  // 中心
)

func (r Role) String() string {
	switch r {
	case RolePlain:
		return "Plain"
	case RoleStart:
		return "Start"
	case RoleOuterBranch:
		return "OuterBranch"
	case RoleShortcut:
		return "Shortcut"
	case RoleCenter:
		return "Center"
	default:
		return fmt.Sprintf("Role(%d)", int32(r))
	}
}

// NodeID 节点ID, 即节点在图中的下标
type NodeID int32

// NoNode 不在棋盘上
const NoNode NodeID = -1

const (
	MinSides      = 3
	sideNodes     = 6 // 每条边的点数(含两端顶点)
	DefaultRadius = 1.0
)

// Node 棋盘节点
type Node struct {
	id   NodeID
	name string
	role Role
	side int // 所属边; 捷径为其顶点所在边; 中心为 -1
	x, y float64
	next []NodeID // 出边, 有序
}

func (n *Node) ID() NodeID          { return n.id }
func (n *Node) Name() string        { return n.name }
func (n *Node) Role() Role          { return n.role }
func (n *Node) Side() int           { return n.side }
func (n *Node) Pos() (x, y float64) { return n.x, n.y }
func (n *Node) IsBranch() bool      { return len(n.next) >= 2 }
func (n *Node) OutDegree() int      { return len(n.next) }
func (n *Node) Next() []NodeID      { return append([]NodeID(nil), n.next...) }
func (n *Node) String() string      { return n.name }

func (n *Node) hasNext(id NodeID) bool {
	for _, v := range n.next {
		if v == id {
			return true
		}
	}
	return false
}

// Graph 不可变的有向图
type Graph struct {
	sides  int
	radius float64
	nodes  []*Node
	byName map[string]NodeID
	start  NodeID
	goal   NodeID
	center NodeID
}

// NewGraph 按边数生成棋盘图, radius 只影响节点坐标
func NewGraph(sides int, radius float64) (*Graph, error) {
	if sides < MinSides {
		return nil, fmt.Errorf("board needs at least %d sides, got %d", MinSides, sides)
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	g := &Graph{
		sides:  sides,
		radius: radius,
		byName: make(map[string]NodeID),
	}

	corners := make([][2]float64, sides)
	for k := 0; k < sides; k++ {
		// 起点在右下角, 逆时针前进
		a := -math.Pi/4 + 2*math.Pi*float64(k)/float64(sides)
		corners[k] = [2]float64{radius * math.Cos(a), radius * math.Sin(a)}
	}

	// 外圈
	vertex := make([]NodeID, sides) // 第 i 条边的顶点
	prev := NoNode
	for i := 0; i < sides; i++ {
		from, to := corners[i], corners[(i+1)%sides]
		for j := 0; j < sideNodes; j++ {
			if j == 0 && i > 0 {
				vertex[i] = prev
				continue
			}
			role := RolePlain
			switch {
			case i == 0 && j == 0:
				role = RoleStart
			case j == sideNodes-1:
				role = RoleOuterBranch
			}
			t := float64(j) / float64(sideNodes-1)
			id := g.add(fmt.Sprintf("Edge%d-%d", i, j), role, i,
				from[0]+(to[0]-from[0])*t, from[1]+(to[1]-from[1])*t)
			if j == 0 {
				vertex[i] = id
			}
			if prev != NoNode {
				g.link(prev, id)
			}
			prev = id
		}
	}
	g.start = vertex[0]
	g.goal = prev
	// 边 0 的顶点在终点角, 向外的捷径回到终点
	vertex[0] = g.goal

	g.center = g.add("Center", RoleCenter, -1, 0, 0)

	// 捷径
	for i := 0; i < sides; i++ {
		c := corners[i]
		s1 := g.add(fmt.Sprintf("Shortcut%d-1", i), RoleShortcut, i, c[0]*2/3, c[1]*2/3)
		s2 := g.add(fmt.Sprintf("Shortcut%d-2", i), RoleShortcut, i, c[0]/3, c[1]/3)
		if g.inward(i) {
			g.link(vertex[i], s1)
			g.link(s1, s2)
			g.link(s2, g.center)
		} else {
			g.link(g.center, s2)
			g.link(s2, s1)
			g.link(s1, vertex[i])
		}
	}
	return g, nil
}

// inward 前半部分的边(不含边 0)捷径指向中心
func (g *Graph) inward(side int) bool {
	return side >= 1 && side <= g.sides/2
}

func (g *Graph) add(name string, role Role, side int, x, y float64) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{id: id, name: name, role: role, side: side, x: x, y: y})
	g.byName[name] = id
	return id
}

func (g *Graph) link(from, to NodeID) {
	g.nodes[from].next = append(g.nodes[from].next, to)
}

func (g *Graph) Sides() int           { return g.sides }
func (g *Graph) Radius() float64      { return g.radius }
func (g *Graph) Start() NodeID        { return g.start }
func (g *Graph) Goal() NodeID         { return g.goal }
func (g *Graph) Center() NodeID       { return g.center }
func (g *Graph) Len() int             { return len(g.nodes) }
func (g *Graph) Nodes() []*Node       { return append([]*Node(nil), g.nodes...) }
func (g *Graph) Inward(side int) bool { return g.inward(side) }

// Node 根据ID获取节点, 越界返回nil
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// NodeByName 根据名称获取节点
func (g *Graph) NodeByName(name string) (*Node, bool) {
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// Name 节点名称, 不在棋盘上返回空串
func (g *Graph) Name(id NodeID) string {
	if n := g.Node(id); n != nil {
		return n.name
	}
	return ""
}

// Next 出边
func (g *Graph) Next(id NodeID) []NodeID {
	if n := g.Node(id); n != nil {
		return n.next
	}
	return nil
}

// Predecessor 反向扫描, 返回第一个出边包含 id 的节点
func (g *Graph) Predecessor(id NodeID) (NodeID, bool) {
	for _, n := range g.nodes {
		if n.hasNext(id) {
			return n.id, true
		}
	}
	return NoNode, false
}
