package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yola1107/yut/pkg/codes"
)

func TestRegistryAddPlayer(t *testing.T) {
	b, err := NewBoard(4, 1)
	require.NoError(t, err)
	reg := NewRegistry(b)

	_, err = reg.AddPlayer("x", 1)
	assert.Error(t, err)
	_, err = reg.AddPlayer("x", 6)
	assert.Error(t, err)

	p0, err := reg.AddPlayer("a", 3)
	require.NoError(t, err)
	p1, err := reg.AddPlayer("b", 2)
	require.NoError(t, err)

	assert.Equal(t, int32(0), p0.Index())
	assert.Equal(t, int32(1), p1.Index())
	assert.Equal(t, []TokenID{0, 1, 2}, p0.Tokens())
	assert.Equal(t, []TokenID{3, 4}, p1.Tokens())
	assert.Len(t, reg.Tokens(), 5)
	assert.Len(t, reg.Players(), 2)

	for _, tk := range reg.Tokens() {
		assert.Equal(t, TokenReady, tk.State())
		assert.Equal(t, NoNode, tk.Pos())
		assert.True(t, tk.IsRepresentative())
	}
	assert.Equal(t, int32(1), reg.Token(4).Owner())
	assert.Nil(t, reg.Token(5))
	assert.Nil(t, reg.Token(NoToken))
	assert.Nil(t, reg.Player(2))
}

func TestRegistryPlaceAtStart(t *testing.T) {
	b, _ := NewBoard(4, 1)
	reg := NewRegistry(b)
	p, _ := reg.AddPlayer("a", 2)

	id := p.Tokens()[0]
	require.NoError(t, reg.placeAtStart(id))
	assert.Equal(t, TokenActive, reg.Token(id).State())
	assert.Equal(t, b.Start(), reg.PositionOf(id))
	assert.Equal(t, []TokenID{id}, reg.Occupants(b.Start()))

	err := reg.placeAtStart(id)
	assert.ErrorIs(t, err, codes.ErrInvalidTokenState)
	assert.ErrorIs(t, reg.placeAtStart(TokenID(42)), codes.ErrUnknownToken)
}

func TestRegistryStackAndReset(t *testing.T) {
	b, _ := NewBoard(4, 1)
	reg := NewRegistry(b)
	p, _ := reg.AddPlayer("a", 3)
	ids := p.Tokens()
	for _, id := range ids {
		require.NoError(t, reg.placeAtStart(id))
	}
	assert.Len(t, reg.Occupants(b.Start()), 3)

	moved := reg.stackOnto(ids[0], ids[1])
	assert.Equal(t, []TokenID{ids[1]}, moved)
	moved = reg.stackOnto(ids[2], ids[0])
	assert.Equal(t, []TokenID{ids[0], ids[1]}, moved)

	assert.Equal(t, []TokenID{ids[2]}, reg.Occupants(b.Start()))
	assert.Equal(t, ids[2], reg.Representative(ids[1]))
	assert.Equal(t, b.Start(), reg.Locate(ids[1]))
	assert.Equal(t, 3, reg.Token(ids[2]).Size())
	checkInvariants(t, reg)

	reg.resetToStart(ids[2])
	for _, id := range ids {
		assert.Equal(t, TokenReady, reg.Token(id).State())
	}
	assert.Empty(t, reg.Occupants(b.Start()))
	checkInvariants(t, reg)
}

func TestRegistryFinishCascade(t *testing.T) {
	b, _ := NewBoard(4, 1)
	reg := NewRegistry(b)
	p, _ := reg.AddPlayer("a", 2)
	q, _ := reg.AddPlayer("b", 2)
	ids := p.Tokens()
	require.NoError(t, reg.placeAtStart(ids[0]))
	require.NoError(t, reg.placeAtStart(ids[1]))
	reg.stackOnto(ids[0], ids[1])

	assert.Equal(t, 0, reg.FinishedCount(p.Index()))
	reg.moveRepresentative(ids[0], NoNode)
	assert.Equal(t, 2, reg.FinishedCount(p.Index()))
	assert.True(t, reg.AllFinished(p.Index()))
	assert.False(t, reg.AllFinished(q.Index()))
	assert.False(t, reg.AllFinished(7))
	assert.Empty(t, reg.Occupants(b.Start()))
	checkInvariants(t, reg)
}
