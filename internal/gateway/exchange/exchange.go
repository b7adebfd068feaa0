package exchange

import (
	"context"

	"github.com/shopspring/decimal"
)

type Client interface {
	Name() string

	// GetPrice 返回代币单价（SOL / token）。无路由时返回 ErrPriceUnavailable。
	GetPrice(ctx context.Context, mint string) (decimal.Decimal, error)

	// GetTokenBalance 返回钱包当前持有的代币原始数量（链上权威值）。
	GetTokenBalance(ctx context.Context, mint string) (decimal.Decimal, error)

	// GetQuoteBalance 返回钱包可用的 SOL 余额。
	GetQuoteBalance(ctx context.Context) (decimal.Decimal, error)

	// GetQuoteUSDPrice 返回 SOL 的美元价格，用于折算已实现盈亏。
	GetQuoteUSDPrice(ctx context.Context) (decimal.Decimal, error)

	// Swap 执行一次兑换并等待链上确认。
	Swap(ctx context.Context, req SwapRequest) (*SwapResult, error)

	// CloseTokenAccount 关闭代币账户回收租金。尽力而为，失败只记日志。
	CloseTokenAccount(ctx context.Context, mint string) error
}
