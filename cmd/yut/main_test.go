package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return buf.String()
}

func TestBoardCommand(t *testing.T) {
	out := execute(t, "board", "--sides", "6")
	assert.Contains(t, out, "sides=6")
	assert.Contains(t, out, "start=Edge0-0")
	assert.Contains(t, out, "goal=Edge5-5")
	assert.Contains(t, out, "Center")
}

func TestSimCommand(t *testing.T) {
	out := execute(t, "sim", "-n", "3", "-p", "3", "--parallel", "2")
	assert.Contains(t, out, "GAME")
	assert.Contains(t, out, "p0 wins:")
	assert.Contains(t, out, "yut.games.ended = 3")
}

func TestSimInvalidFlags(t *testing.T) {
	rootCmd.SetArgs([]string{"sim", "-p", "1"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.ExecuteContext(context.Background()))
	simPlayers = 2
}
