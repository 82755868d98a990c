package game

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"

	"github.com/yola1107/yut/internal/model"
	"github.com/yola1107/yut/pkg/codes"
)

/*
	回合主逻辑: 掷棍 -> (调整顺序) -> 逐个步数选棋子/选分叉/移动 -> 回合结束
*/

// run 推进到需要外部决定或对局结束为止
func (g *Game) run() {
	for g.status == StInProgress && g.waiting == nil {
		switch g.phase {
		case PhThrowing:
			g.onThrowing()
		case PhReorder:
			g.onReorder()
		case PhMoving:
			g.onMoving()
		case PhTurnEnd:
			g.onTurnEnd()
		default:
			log.Errorf("unhandled phase: %v %s", g.phase, g.Desc())
			return
		}
	}
}

func (g *Game) beginTurn(player int32, extra bool) {
	g.active = player
	g.turn++
	g.throws = nil
	g.steps = nil
	g.stepIdx = 0
	g.capture = false
	g.phase = PhThrowing

	p := g.reg.Player(player)
	g.emit(Event{
		Type:    EvTurnChanged,
		Player:  player,
		Payload: TurnPayload{Extra: extra},
		Message: fmt.Sprintf("turn %d: %s", g.turn, p.Name()),
	})
	g.record.turn(player, g.turn, extra)
	log.Debugf("[Turn] ====> player=%d extra=%v %s", player, extra, g.Desc())
}

// ask 发出请求并停下等待
func (g *Game) ask(kind EventType, candidates []int32, payload any, msg string) *request {
	req := newRequest(kind, g.active, candidates, g.now().Add(g.c.DecisionTimeout))
	g.pending.add(req)
	g.waiting = req
	g.emit(Event{
		Type:       kind,
		Player:     g.active,
		RequestID:  req.id,
		Candidates: candidates,
		Deadline:   req.deadline,
		Payload:    payload,
		Message:    msg,
	})
	g.record.request(req)
	return req
}

// resolve 请求已得到回应
func (g *Game) resolve(req *request) {
	g.pending.remove(req)
	if g.waiting == req {
		g.waiting = nil
	}
}

func (g *Game) onThrowing() {
	if g.c.IsManual() {
		g.ask(EvDiceRequest, model.ThrowValues, nil, fmt.Sprintf("player %d: choose a throw", g.active))
		return
	}
	g.applyThrow(g.thrower.Throw())
}

func (g *Game) applyThrow(v int32) {
	g.throws = append(g.throws, v)
	again := model.ThrowAgain(v, len(g.throws), g.c.MaxThrows)
	g.metrics.throw(v)
	g.emit(Event{
		Type:    EvThrow,
		Player:  g.active,
		Payload: ThrowPayload{Value: v, Again: again, Throws: append([]int32(nil), g.throws...)},
		Message: fmt.Sprintf("player %d threw %s", g.active, model.ThrowName(v)),
	})
	g.record.throw(g.active, v, g.throws)
	log.Debugf("[Throw] player=%d v=%d again=%v throws=%v", g.active, v, again, g.throws)

	switch {
	case again:
	case len(g.throws) > 1:
		g.phase = PhReorder
	default:
		g.steps = append([]int32(nil), g.throws...)
		g.phase = PhMoving
	}
}

func (g *Game) onReorder() {
	g.ask(EvReorderRequest, append([]int32(nil), g.throws...), ReorderPayload{Throws: g.throws},
		fmt.Sprintf("player %d: order the throws %v", g.active, g.throws))
}

func (g *Game) onMoving() {
	if g.stepIdx >= len(g.steps) {
		g.phase = PhTurnEnd
		return
	}
	v := g.steps[g.stepIdx]
	eligible := g.eligible(g.active, v)
	if len(eligible) == 0 {
		g.skipStep(v)
		return
	}
	if len(eligible) == 1 && g.c.AutoSelectSingle {
		g.selectToken(eligible[0], v)
		return
	}
	g.ask(EvTokenRequest, lo.Map(eligible, func(id model.TokenID, _ int) int32 { return int32(id) }),
		TokenPayload{Step: v}, fmt.Sprintf("player %d: choose a token for %s", g.active, model.ThrowName(v)))
}

// eligible 可以使用 v 步的棋子. 前进: 棋盘上的代表棋子 + 第一枚未上棋盘的棋子; 后退: 只有棋盘上的代表棋子
func (g *Game) eligible(player int32, v int32) []model.TokenID {
	p := g.reg.Player(player)
	if p == nil {
		return nil
	}
	var out []model.TokenID
	ready := false
	for _, id := range p.Tokens() {
		t := g.reg.Token(id)
		if t.IsReady() {
			if v < 0 || ready {
				continue
			}
			ready = true
		}
		if g.res.CanMove(id, v) == nil {
			out = append(out, id)
		}
	}
	return out
}

func (g *Game) skipStep(v int32) {
	err := codes.ErrNoEligibleToken.WithCause(fmt.Errorf("player %d step %d", g.active, v))
	g.emit(Event{
		Type:    EvError,
		Player:  g.active,
		Payload: ErrorPayload{Err: err, Step: v},
		Message: fmt.Sprintf("player %d has no token for %s, skipped", g.active, model.ThrowName(v)),
	})
	g.record.skip(g.active, v, err)
	log.Debugf("[Skip] player=%d v=%d %s", g.active, v, g.Desc())

	g.stepIdx++
	g.requireAck(fmt.Sprintf("%s skipped", model.ThrowName(v)))
}

// selectToken 起步即在分叉点时先询问出边, 否则直接移动
func (g *Game) selectToken(id model.TokenID, v int32) {
	if v > 0 {
		if cands := g.res.BranchCandidates(id); len(cands) >= 2 {
			graph := g.board.Graph()
			from := graph.Name(g.reg.PositionOf(id))
			if from == "" {
				from = graph.Name(g.board.Start())
			}
			req := g.ask(EvBranchRequest,
				lo.Map(cands, func(n model.NodeID, _ int) int32 { return int32(n) }),
				BranchPayload{
					Token: id,
					Step:  v,
					From:  from,
					Names: lo.Map(cands, func(n model.NodeID, _ int) string { return graph.Name(n) }),
				},
				fmt.Sprintf("token %d at %s: choose a path", id, from))
			req.token = id
			req.step = v
			return
		}
	}
	g.move(id, v)
}

// move 执行一步移动, 处理击杀/完成/胜利
func (g *Game) move(id model.TokenID, v int32) {
	var before *Snapshot
	if g.record != nil {
		before = g.snapshot()
	}

	res, err := g.res.Enter(id, v, nil)
	g.stepIdx++
	if err != nil {
		g.emit(Event{Type: EvError, Player: g.active, Payload: ErrorPayload{Err: err, Step: v}, Message: err.Error()})
		log.Errorf("move failed. token=%d v=%d err=%v %s", id, v, err, g.Desc())
		return
	}

	finished := 0
	if res.Finished {
		finished = len(res.Moved)
	}
	g.metrics.move(g.active, len(res.CapturedTokens()), finished)
	desc := res.Describe(g.board.Graph())
	g.emit(Event{Type: EvMove, Player: g.active, Payload: MovePayload{Step: v, Result: res}, Message: desc})
	for _, c := range res.Captured {
		g.emit(Event{
			Type:    EvCapture,
			Player:  g.active,
			Payload: CapturePayload{By: id, Capture: c},
			Message: fmt.Sprintf("player %d captured token %d of player %d", g.active, c.Token, c.Owner),
		})
	}
	if g.record != nil {
		g.record.move(desc, before, g.snapshot())
	}
	log.Debugf("[Move] player=%d %s", g.active, desc)

	if g.reg.AllFinished(g.active) {
		g.finish(g.active)
		return
	}
	if res.IsCapture() {
		g.capture = true
		g.requireAck(fmt.Sprintf("player %d captured", g.active))
	}
}

// requireAck 开启确认时等待消息确认
func (g *Game) requireAck(msg string) {
	if !g.c.RequireAck {
		return
	}
	g.ask(EvMessage, nil, nil, msg)
}

func (g *Game) onTurnEnd() {
	if g.capture {
		g.beginTurn(g.active, true)
		return
	}
	g.beginTurn(g.nextPlayer(), false)
}

func (g *Game) nextPlayer() int32 {
	return (g.active + 1) % int32(len(g.reg.Players()))
}

// abort 超时或取消: 已完成的移动保留, 本回合剩余步数作废, 轮到下一位
func (g *Game) abort(err error) {
	g.pending.clear()
	g.waiting = nil
	g.emit(Event{Type: EvError, Player: g.active, Payload: ErrorPayload{Err: err}, Message: err.Error()})
	g.record.abort(g.active, err)
	log.Infof("[Abort] player=%d err=%v %s", g.active, err, g.Desc())
	g.beginTurn(g.nextPlayer(), false)
}

func (g *Game) finish(winner int32) {
	g.status = StFinished
	g.phase = PhNone
	g.winner = winner
	g.pending.clear()
	g.waiting = nil

	name := g.reg.Player(winner).Name()
	g.metrics.gameEnded(winner)
	g.emit(Event{
		Type:    EvGameEnded,
		Player:  winner,
		Payload: EndPayload{Winner: winner, Name: name, Turns: g.turn},
		Message: fmt.Sprintf("%s wins after %d turns", name, g.turn),
	})
	g.record.end(winner, name, g.turn)
	log.Infof("game end. id=%s winner=%d(%s) turns=%d", g.id, winner, name, g.turn)
}
