package model

import "fmt"

const (
	MinTokensPerPlayer = 2
	MaxTokensPerPlayer = 5
)

// Player 玩家, 棋子在创建时固定
type Player struct {
	index  int32
	name   string
	tokens []TokenID
}

func (p *Player) Index() int32      { return p.index }
func (p *Player) Name() string      { return p.name }
func (p *Player) Tokens() []TokenID { return append([]TokenID(nil), p.tokens...) }

func (p *Player) Desc() string {
	return fmt.Sprintf("(%d %s tokens:%v)", p.index, p.name, p.tokens)
}
