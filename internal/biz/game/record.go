package game

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/r3labs/diff/v3"

	"github.com/yola1107/yut/internal/model"
	"github.com/yola1107/yut/internal/pkg/xlog"
)

const recordFileFormat = "game_%s.log"

// Record 对局记录. 为 nil 时所有方法都不写
type Record struct {
	gameID string
	logger *xlog.FileLog
}

func NewRecord(dir, gameID string) *Record {
	return &Record{
		gameID: gameID,
		logger: xlog.NewFileLog(filepath.Join(dir, fmt.Sprintf(recordFileFormat, gameID))),
	}
}

func (r *Record) Close() error {
	if r == nil {
		return nil
	}
	return r.logger.Close()
}

func (r *Record) write(msg string, args ...any) {
	if r == nil {
		return
	}
	r.logger.Write(msg, args...)
}

func (r *Record) begin(g *Game) {
	if r == nil {
		return
	}
	logs := []string{fmt.Sprintf("[游戏开始] game=%s sides=%d tokens=%d mode=%s",
		g.id, g.board.Sides(), g.c.TokensPerPlayer, g.c.ThrowMode)}
	for _, p := range g.reg.Players() {
		logs = append(logs, fmt.Sprintf("玩家:%s", p.Desc()))
	}
	r.write(strings.Join(logs, "\r\n"))
}

func (r *Record) turn(player int32, turn int, extra bool) {
	r.write("[轮换] turn=%d player=%d extra=%v", turn, player, extra)
}

func (r *Record) throw(player int32, v int32, throws []int32) {
	r.write("[掷棍] player=%d value=%s(%d) throws=%v", player, model.ThrowName(v), v, throws)
}

func (r *Record) reorder(player int32, steps []int32) {
	r.write("[调整顺序] player=%d steps=%v", player, steps)
}

func (r *Record) request(req *request) {
	r.write("[请求] %v id=%s player=%d cands=%v", req.kind, req.id, req.player, req.candidates)
}

// move 移动结果, 以及前后快照的字段差异
func (r *Record) move(desc string, before, after *Snapshot) {
	if r == nil {
		return
	}
	logs := []string{fmt.Sprintf("[移动] %s", desc)}
	changes, err := diff.Diff(before, after)
	if err != nil {
		log.Warnf("record diff failed. game=%s err=%v", r.gameID, err)
	}
	for _, c := range changes {
		logs = append(logs, fmt.Sprintf("  %s %s: %v -> %v", c.Type, strings.Join(c.Path, "."), c.From, c.To))
	}
	r.write(strings.Join(logs, "\r\n"))
}

func (r *Record) skip(player int32, step int32, err error) {
	r.write("[跳过] player=%d step=%d err=%v", player, step, err)
}

func (r *Record) abort(player int32, err error) {
	r.write("[中止回合] player=%d err=%v", player, err)
}

func (r *Record) end(winner int32, name string, turns int) {
	r.write("[GameEnd] winner=%d(%s) turns=%d", winner, name, turns)
	r.write("\r\n\r\n\r\n")
}
