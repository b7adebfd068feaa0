// Package portfolio 持有当前开仓的权威内存表。
// Book 自身不做并发控制：所有读写都发生在 trader 的单一事件循环里。
package portfolio

import (
	"errors"

	"github.com/shopspring/decimal"

	"talon/internal/types"
)

var (
	ErrAlreadyHeld = errors.New("portfolio: token already held")
	ErrNotFound    = errors.New("portfolio: position not found")
)

type Book struct {
	positions map[string]*types.Position

	// realizedPnlUSD 在每笔成交的卖出上单调更新，可为负。
	realizedPnlUSD decimal.Decimal
}

func NewBook() *Book {
	return &Book{positions: make(map[string]*types.Position)}
}

// Add 登记新仓位；同一 mint 重复建仓直接拒绝。
func (b *Book) Add(pos *types.Position) error {
	if pos == nil || pos.Mint == "" {
		return errors.New("portfolio: invalid position")
	}
	if _, ok := b.positions[pos.Mint]; ok {
		return ErrAlreadyHeld
	}
	b.positions[pos.Mint] = pos
	return nil
}

func (b *Book) Get(mint string) (*types.Position, error) {
	pos, ok := b.positions[mint]
	if !ok {
		return nil, ErrNotFound
	}
	return pos, nil
}

func (b *Book) Has(mint string) bool {
	_, ok := b.positions[mint]
	return ok
}

func (b *Book) Remove(mint string) {
	delete(b.positions, mint)
}

// All 返回仓位快照切片。遍历顺序不影响正确性，每个仓位独立评估。
func (b *Book) All() []*types.Position {
	out := make([]*types.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, pos)
	}
	return out
}

func (b *Book) Size() int {
	return len(b.positions)
}

func (b *Book) RealizedPnlUSD() decimal.Decimal {
	return b.realizedPnlUSD
}

// AddRealizedPnlUSD 累加一笔已实现盈亏（带符号）。
func (b *Book) AddRealizedPnlUSD(delta decimal.Decimal) decimal.Decimal {
	b.realizedPnlUSD = b.realizedPnlUSD.Add(delta)
	return b.realizedPnlUSD
}

// SetRealizedPnlUSD 仅用于启动时从持久层恢复累计值。
func (b *Book) SetRealizedPnlUSD(v decimal.Decimal) {
	b.realizedPnlUSD = v
}
