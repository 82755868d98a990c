package model

// Board 棋盘: 拓扑 + 起点 + 边数
type Board struct {
	graph *Graph
	start NodeID
	sides int
}

// NewBoard 创建 sides 边形棋盘
func NewBoard(sides int, radius float64) (*Board, error) {
	g, err := NewGraph(sides, radius)
	if err != nil {
		return nil, err
	}
	return &Board{graph: g, start: g.Start(), sides: sides}, nil
}

func (b *Board) Graph() *Graph { return b.graph }
func (b *Board) Start() NodeID { return b.start }
func (b *Board) Sides() int    { return b.sides }

func (b *Board) Node(id NodeID) *Node {
	return b.graph.Node(id)
}
