package game

import "github.com/yola1107/yut/internal/model"

// Response 表现层对请求的回应, 由 RequestID 关联
type Response interface {
	RequestID() string
	Cancelled() bool
	kind() EventType
}

type BranchResponse struct {
	ID       string
	Node     model.NodeID
	Canceled bool
}

type TokenResponse struct {
	ID       string
	Token    model.TokenID
	Canceled bool
}

// ReorderResponse Input 为逗号分隔的数字, 如 "4,4,5,2"
type ReorderResponse struct {
	ID       string
	Input    string
	Canceled bool
}

type DiceResponse struct {
	ID       string
	Value    int32
	Canceled bool
}

// Ack 消息确认
type Ack struct {
	ID string
}

func (r BranchResponse) RequestID() string  { return r.ID }
func (r BranchResponse) Cancelled() bool    { return r.Canceled }
func (r BranchResponse) kind() EventType    { return EvBranchRequest }
func (r TokenResponse) RequestID() string   { return r.ID }
func (r TokenResponse) Cancelled() bool     { return r.Canceled }
func (r TokenResponse) kind() EventType     { return EvTokenRequest }
func (r ReorderResponse) RequestID() string { return r.ID }
func (r ReorderResponse) Cancelled() bool   { return r.Canceled }
func (r ReorderResponse) kind() EventType   { return EvReorderRequest }
func (r DiceResponse) RequestID() string    { return r.ID }
func (r DiceResponse) Cancelled() bool      { return r.Canceled }
func (r DiceResponse) kind() EventType      { return EvDiceRequest }
func (r Ack) RequestID() string             { return r.ID }
func (r Ack) Cancelled() bool               { return false }
func (r Ack) kind() EventType               { return EvMessage }
