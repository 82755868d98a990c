package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(g *Graph, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Name(id))
	}
	return out
}

func mustNode(t *testing.T, g *Graph, name string) *Node {
	t.Helper()
	n, ok := g.NodeByName(name)
	require.True(t, ok, "node %s not found", name)
	return n
}

func TestNewGraphInvalidSides(t *testing.T) {
	_, err := NewGraph(2, 1)
	require.Error(t, err)
}

func TestNewGraphCounts(t *testing.T) {
	tests := []struct {
		sides int
	}{
		{3}, {4}, {5}, {6}, {8},
	}
	for _, tt := range tests {
		g, err := NewGraph(tt.sides, 10)
		require.NoError(t, err)

		ring, shortcuts, centers := 0, 0, 0
		for _, n := range g.Nodes() {
			switch n.Role() {
			case RoleShortcut:
				shortcuts++
			case RoleCenter:
				centers++
			default:
				ring++
			}
		}
		// 外圈 5n 个点 + 独立的终点角
		assert.Equal(t, tt.sides*5+1, ring, "sides=%d", tt.sides)
		assert.Equal(t, tt.sides*2, shortcuts, "sides=%d", tt.sides)
		assert.Equal(t, 1, centers, "sides=%d", tt.sides)
	}
}

func TestGraphTopology4(t *testing.T) {
	g, err := NewGraph(4, 1)
	require.NoError(t, err)

	start := g.Node(g.Start())
	assert.Equal(t, "Edge0-0", start.Name())
	assert.Equal(t, RoleStart, start.Role())
	assert.Equal(t, []string{"Edge0-1"}, names(g, start.Next()))

	goal := g.Node(g.Goal())
	assert.Equal(t, "Edge3-5", goal.Name())
	assert.Equal(t, 0, goal.OutDegree())

	// 边 1,2 向内
	assert.Equal(t, []string{"Edge1-1", "Shortcut1-1"}, names(g, mustNode(t, g, "Edge0-5").Next()))
	assert.Equal(t, []string{"Edge2-1", "Shortcut2-1"}, names(g, mustNode(t, g, "Edge1-5").Next()))
	assert.Equal(t, []string{"Shortcut1-2"}, names(g, mustNode(t, g, "Shortcut1-1").Next()))
	assert.Equal(t, []string{"Center"}, names(g, mustNode(t, g, "Shortcut1-2").Next()))

	// 边 3,0 向外
	assert.Equal(t, []string{"Edge3-1"}, names(g, mustNode(t, g, "Edge2-5").Next()))
	assert.Equal(t, []string{"Shortcut0-2", "Shortcut3-2"}, names(g, mustNode(t, g, "Center").Next()))
	assert.Equal(t, []string{"Edge2-5"}, names(g, mustNode(t, g, "Shortcut3-1").Next()))
	assert.Equal(t, []string{"Edge3-5"}, names(g, mustNode(t, g, "Shortcut0-1").Next()))

	assert.Equal(t, RoleOuterBranch, mustNode(t, g, "Edge0-5").Role())
	assert.Equal(t, RolePlain, mustNode(t, g, "Edge0-3").Role())
	assert.True(t, g.Inward(1))
	assert.False(t, g.Inward(0))
	assert.False(t, g.Inward(3))
}

func TestGraphSharedVertex(t *testing.T) {
	g, err := NewGraph(6, 1)
	require.NoError(t, err)

	// Edge1-0 不存在, 第 1 条边从 Edge0-5 开始
	_, ok := g.NodeByName("Edge1-0")
	assert.False(t, ok)
	assert.Equal(t, []string{"Edge1-1", "Shortcut1-1"}, names(g, mustNode(t, g, "Edge0-5").Next()))
	assert.Equal(t, []string{"Edge4-1"}, names(g, mustNode(t, g, "Edge3-5").Next()))
	assert.Equal(t, []string{"Shortcut0-2", "Shortcut4-2", "Shortcut5-2"}, names(g, mustNode(t, g, "Center").Next()))
}

func TestGraphPredecessor(t *testing.T) {
	g, err := NewGraph(4, 1)
	require.NoError(t, err)

	tests := []struct {
		node string
		want string
		ok   bool
	}{
		{"Edge0-1", "Edge0-0", true},
		{"Edge1-1", "Edge0-5", true},
		{"Edge2-5", "Edge2-4", true}, // 外圈优先于捷径
		{"Center", "Shortcut1-2", true},
		{"Shortcut3-2", "Center", true},
		{"Edge0-0", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			p, ok := g.Predecessor(mustNode(t, g, tt.node).ID())
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, g.Name(p))
		})
	}
}

func TestGraphCoordinates(t *testing.T) {
	g, err := NewGraph(4, 100)
	require.NoError(t, err)

	sx, sy := g.Node(g.Start()).Pos()
	gx, gy := g.Node(g.Goal()).Pos()
	assert.InDelta(t, sx, gx, 1e-9)
	assert.InDelta(t, sy, gy, 1e-9)

	cx, cy := g.Node(g.Center()).Pos()
	assert.Zero(t, cx)
	assert.Zero(t, cy)

	x, y := mustNode(t, g, "Shortcut0-2").Pos()
	assert.InDelta(t, sx/3, x, 1e-9)
	assert.InDelta(t, sy/3, y, 1e-9)
}
