package room

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"

	"github.com/yola1107/yut/internal/biz/game"
	"github.com/yola1107/yut/internal/model"
	"github.com/yola1107/yut/pkg/codes"
)

// Responder 无人值守时对请求的默认回应
type Responder struct {
	thrower model.Thrower // 手动模式下代替玩家掷棍, 为空时取第一个候选
}

func NewResponder(t model.Thrower) *Responder {
	return &Responder{thrower: t}
}

// DefaultResponse 不掷棍的默认回应, 手动模式下取第一个候选结果
func DefaultResponse(ev game.Event) (game.Response, bool) {
	var r *Responder
	return r.Response(ev)
}

// Response 选第一个候选, 重排保持原顺序, 消息直接确认
func (r *Responder) Response(ev game.Event) (game.Response, bool) {
	switch ev.Type {
	case game.EvBranchRequest:
		if len(ev.Candidates) == 0 {
			return nil, false
		}
		return game.BranchResponse{ID: ev.RequestID, Node: model.NodeID(ev.Candidates[0])}, true
	case game.EvTokenRequest:
		if len(ev.Candidates) == 0 {
			return nil, false
		}
		return game.TokenResponse{ID: ev.RequestID, Token: model.TokenID(ev.Candidates[0])}, true
	case game.EvReorderRequest:
		input := strings.Join(lo.Map(ev.Candidates, func(v int32, _ int) string {
			return strconv.Itoa(int(v))
		}), ",")
		return game.ReorderResponse{ID: ev.RequestID, Input: input}, true
	case game.EvDiceRequest:
		if r != nil && r.thrower != nil {
			return game.DiceResponse{ID: ev.RequestID, Value: r.thrower.Throw()}, true
		}
		if len(ev.Candidates) == 0 {
			return nil, false
		}
		return game.DiceResponse{ID: ev.RequestID, Value: ev.Candidates[0]}, true
	case game.EvMessage:
		return game.Ack{ID: ev.RequestID}, true
	}
	return nil, false
}

// Autoplay 消费事件流并自动回应, 直到事件流关闭. 返回胜者下标, 未分胜负时为 -1
func Autoplay(ctx context.Context, s *Session, r *Responder, observe func(game.Event)) (int32, error) {
	for {
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		case ev, ok := <-s.Events():
			if !ok {
				return s.Game().Winner(), nil
			}
			if observe != nil {
				observe(ev)
			}
			if !ev.Type.IsRequest() {
				continue
			}
			resp, ok := r.Response(ev)
			if !ok {
				continue
			}
			if err := s.Respond(resp); err != nil {
				// 请求可能已超时或被处理
				if errors.Is(err, codes.ErrUnknownRequest) || errors.Is(err, codes.ErrGameNotRunning) {
					log.Debugf("[Autoplay] stale request. id=%s err=%v", ev.RequestID, err)
					continue
				}
				return -1, err
			}
		}
	}
}
