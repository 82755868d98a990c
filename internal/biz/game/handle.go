package game

import (
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/yola1107/yut/internal/model"
	"github.com/yola1107/yut/pkg/codes"
)

// Respond 提交回应并继续推进.
//   - 未知请求/非法选择: 返回错误, 请求保持不变
//   - 重排输入不合法: 发出 EvError 并返回错误, 请求保持打开以便重新提交
//   - 取消: 本回合中止, 轮到下一位. Ack 没有取消, 只能确认或等待超时
func (g *Game) Respond(r Response) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StInProgress {
		return codes.ErrGameNotRunning
	}
	req, err := g.pending.find(r.kind(), r.RequestID())
	if err != nil {
		return err
	}

	if r.Cancelled() {
		g.resolve(req)
		log.Debugf("[Respond] cancelled. kind=%v id=%s %s", req.kind, req.id, g.Desc())
		g.abort(codes.ErrDecisionCancelled.WithCause(fmt.Errorf("%v %s", req.kind, req.id)))
		g.run()
		return nil
	}

	switch resp := r.(type) {
	case DiceResponse:
		err = g.onDiceResponse(req, resp)
	case ReorderResponse:
		err = g.onReorderResponse(req, resp)
	case TokenResponse:
		err = g.onTokenResponse(req, resp)
	case BranchResponse:
		err = g.onBranchResponse(req, resp)
	case Ack:
		g.resolve(req)
	}
	if err != nil {
		return err
	}
	g.run()
	return nil
}

func (g *Game) onDiceResponse(req *request, r DiceResponse) error {
	if !req.accepts(r.Value) {
		return codes.ErrInvalidSelection.WithCause(fmt.Errorf("throw %d", r.Value))
	}
	g.resolve(req)
	g.applyThrow(r.Value)
	return nil
}

func (g *Game) onReorderResponse(req *request, r ReorderResponse) error {
	steps, err := ParseReorder(req.candidates, r.Input)
	if err != nil {
		g.emit(Event{
			Type:      EvError,
			Player:    req.player,
			RequestID: req.id,
			Payload:   ErrorPayload{Err: err},
			Message:   fmt.Sprintf("invalid order %q: %v", r.Input, err),
		})
		log.Debugf("[Reorder] rejected. input=%q err=%v", r.Input, err)
		return err
	}
	g.resolve(req)
	g.steps = steps
	g.stepIdx = 0
	g.phase = PhMoving
	g.record.reorder(req.player, steps)
	return nil
}

func (g *Game) onTokenResponse(req *request, r TokenResponse) error {
	if !req.accepts(int32(r.Token)) {
		return codes.ErrInvalidSelection.WithCause(fmt.Errorf("token %d", r.Token))
	}
	g.resolve(req)
	g.selectToken(r.Token, g.steps[g.stepIdx])
	return nil
}

func (g *Game) onBranchResponse(req *request, r BranchResponse) error {
	if !req.accepts(int32(r.Node)) {
		return codes.ErrInvalidSelection.WithCause(fmt.Errorf("node %d", r.Node))
	}
	g.resolve(req)
	if err := g.res.SetBranchOverride(req.token, r.Node); err != nil {
		log.Errorf("set branch override failed. token=%d node=%d err=%v", req.token, r.Node, err)
	}
	g.move(req.token, req.step)
	return nil
}

// Expire 处理截止时间已过的请求, 返回其ID.
// 消息确认超时视为已确认, 其余请求超时则中止本回合.
func (g *Game) Expire(now time.Time) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StInProgress {
		return nil
	}
	var ids []string
	for _, req := range g.pending.expired(now) {
		ids = append(ids, req.id)
		g.resolve(req)
		if req.kind == EvMessage {
			continue
		}
		log.Infof("[Expire] %v id=%s player=%d", req.kind, req.id, req.player)
		g.abort(codes.ErrDecisionTimeout.WithCause(fmt.Errorf("%v %s", req.kind, req.id)))
		break
	}
	if len(ids) > 0 {
		g.run()
	}
	return ids
}

// Candidates 当前玩家使用 v 步时可选的棋子
func (g *Game) Candidates(v int32) []model.TokenID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.eligible(g.active, v)
}
