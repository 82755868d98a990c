package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/yola1107/yut/internal/model"
	"github.com/yola1107/yut/pkg/codes"
)

// request 等待外部回应的请求
type request struct {
	id         string
	kind       EventType
	player     int32
	token      model.TokenID // 分叉请求对应的棋子
	step       int32         // 对应的步数
	candidates []int32
	deadline   time.Time
}

func newRequest(kind EventType, player int32, candidates []int32, deadline time.Time) *request {
	return &request{
		id:         uuid.NewString(),
		kind:       kind,
		player:     player,
		token:      model.NoToken,
		candidates: candidates,
		deadline:   deadline,
	}
}

func (r *request) accepts(v int32) bool { return lo.Contains(r.candidates, v) }

// decisions 每类请求各自一张表, 互不冲突
type decisions struct {
	tables map[EventType]map[string]*request
}

func newDecisions() *decisions {
	d := &decisions{tables: make(map[EventType]map[string]*request)}
	for _, k := range []EventType{EvBranchRequest, EvTokenRequest, EvReorderRequest, EvDiceRequest, EvMessage} {
		d.tables[k] = make(map[string]*request)
	}
	return d
}

func (d *decisions) add(r *request) {
	d.tables[r.kind][r.id] = r
}

// find 按类型和ID查找. 类型不符时同样视为未知请求
func (d *decisions) find(kind EventType, id string) (*request, error) {
	if r, ok := d.tables[kind][id]; ok {
		return r, nil
	}
	return nil, codes.ErrUnknownRequest
}

func (d *decisions) remove(r *request) {
	delete(d.tables[r.kind], r.id)
}

func (d *decisions) clear() {
	for _, t := range d.tables {
		clear(t)
	}
}

// expired 截止时间不晚于 now 的请求
func (d *decisions) expired(now time.Time) []*request {
	var out []*request
	for _, t := range d.tables {
		for _, r := range t {
			if !r.deadline.After(now) {
				out = append(out, r)
			}
		}
	}
	return out
}

func (d *decisions) len() int {
	return lo.SumBy(lo.Values(d.tables), func(t map[string]*request) int { return len(t) })
}
