package model

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/exp/constraints"
)

// 掷棍结果
const (
	Backdo int32 = -1 // 后退一步
	Do     int32 = 1
	Gae    int32 = 2
	Geol   int32 = 3
	Yut    int32 = 4 // 再掷一次
	Mo     int32 = 5 // 再掷一次
)

// ThrowValues 全部合法结果
var ThrowValues = []int32{Backdo, Do, Gae, Geol, Yut, Mo}

var throwNames = map[int32]string{
	Backdo: "Backdo",
	Do:     "Do",
	Gae:    "Gae",
	Geol:   "Geol",
	Yut:    "Yut",
	Mo:     "Mo",
}

// ThrowName 结果名称
func ThrowName(v int32) string {
	if name, ok := throwNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Throw(%d)", v)
}

// IsAgain Yut/Mo 奖励再掷一次
func IsAgain(v int32) bool { return v == Yut || v == Mo }

// ValidThrow 是否合法结果
func ValidThrow(v int32) bool {
	_, ok := throwNames[v]
	return ok
}

// Thrower 单次掷棍
type Thrower interface {
	Throw() int32
}

// StickThrower 四根棍子, 其中一根背面有标记.
// 平面朝上的根数: 0 Mo, 1 Do(标记棍则为Backdo), 2 Gae, 3 Geol, 4 Yut
type StickThrower struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewStickThrower seed 为 0 时按当前时间
func NewStickThrower(seed int64) *StickThrower {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &StickThrower{rand: rand.New(rand.NewSource(seed))}
}

func (s *StickThrower) Throw() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	flat, marked := 0, false
	for i := 0; i < 4; i++ {
		if randInt(s.rand, 0, 2) == 1 {
			flat++
			marked = i == 0
		}
	}
	switch flat {
	case 0:
		return Mo
	case 1:
		if marked {
			return Backdo
		}
		return Do
	case 2:
		return Gae
	case 3:
		return Geol
	default:
		return Yut
	}
}

// SequenceThrower 按顺序循环给出固定结果
type SequenceThrower struct {
	mu     sync.Mutex
	values []int32
	next   int
}

func NewSequenceThrower(values ...int32) *SequenceThrower {
	return &SequenceThrower{values: append([]int32(nil), values...)}
}

func (s *SequenceThrower) Throw() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return Do
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// ThrowAgain 已掷 n 次且最后一次为 v 时是否还能再掷. limit<=0 不限次数
func ThrowAgain(v int32, n, limit int) bool {
	return IsAgain(v) && (limit <= 0 || n < limit)
}

// ThrowAll 连续掷, 直到结果不再是 Yut/Mo. limit>0 时最多掷 limit 次
func ThrowAll(t Thrower, limit int) []int32 {
	var out []int32
	for {
		v := t.Throw()
		out = append(out, v)
		if !ThrowAgain(v, len(out), limit) {
			return out
		}
	}
}

func randInt[T constraints.Integer](r *rand.Rand, min, max T) T {
	if max <= min {
		return min
	}
	return T(r.Int63n(int64(max-min))) + min
}
