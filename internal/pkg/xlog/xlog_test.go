package xlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/yola1107/yut/internal/conf"
)

func TestLoggerLevel(t *testing.T) {
	c := conf.DefaultConfig().Log
	c.Level = "info"
	l, err := NewLogger(c)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, "info", l.GetLevel())
	assert.False(t, l.Zap().Core().Enabled(zapcore.DebugLevel))

	l.SetLevel("debug")
	assert.Equal(t, "debug", l.GetLevel())
	l.SetLevel("nope")
	assert.Equal(t, "debug", l.GetLevel())

	h := log.NewHelper(l)
	h.Debugf("debug %d", 1)
	h.Infow("k", "v")
	assert.NoError(t, l.Log(log.LevelInfo, "odd"))

	_, err = NewLogger(&conf.Log{Level: "loud"})
	assert.Error(t, err)
}

func TestLoggerProdFile(t *testing.T) {
	dir := t.TempDir()
	c := conf.DefaultConfig().Log
	c.Mode = conf.ModeProd
	c.Directory = dir
	c.AppName = "unit"
	c.ErrorFile = true

	l, err := NewLogger(c)
	require.NoError(t, err)
	_ = l.Log(log.LevelError, log.DefaultMessageKey, "boom", "game", "g1")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "unit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
	_, err = os.Stat(filepath.Join(dir, "unit_error.log"))
	assert.NoError(t, err)
}

func TestFileLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_1.log")
	fl := NewFileLog(path)
	fl.Write("[掷棍] player=%d value=%d", 0, 4)
	fl.Infow("move", "token", 3)
	require.NoError(t, fl.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "player=0 value=4")
	assert.Contains(t, string(data), "token")
}
