package trader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talon/internal/config"
	"talon/internal/gateway/exchange"
	"talon/internal/portfolio"
	"talon/internal/store"
	"talon/internal/store/model"
	"talon/internal/strategy/exitrule"
	"talon/internal/types"
	"talon/internal/vetting"
)

const testMint = "9gP2kCy3wA1ctvYWQk75guqXuHfrEomqydHLtcTCqiLa"

type fakeExchange struct {
	mu sync.Mutex

	priceFn  func(mint string) (decimal.Decimal, error)
	tokenBal decimal.Decimal
	balErr   error
	quoteBal decimal.Decimal
	solUSD   decimal.Decimal
	swapFn   func(req exchange.SwapRequest) (*exchange.SwapResult, error)

	swaps  []exchange.SwapRequest
	closed []string
}

func (f *fakeExchange) Name() string { return "fake" }

func (f *fakeExchange) GetPrice(_ context.Context, mint string) (decimal.Decimal, error) {
	if f.priceFn != nil {
		return f.priceFn(mint)
	}
	return decimal.Zero, exchange.ErrPriceUnavailable
}

func (f *fakeExchange) GetTokenBalance(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.tokenBal, f.balErr
}

func (f *fakeExchange) GetQuoteBalance(_ context.Context) (decimal.Decimal, error) {
	return f.quoteBal, nil
}

func (f *fakeExchange) GetQuoteUSDPrice(_ context.Context) (decimal.Decimal, error) {
	return f.solUSD, nil
}

func (f *fakeExchange) Swap(_ context.Context, req exchange.SwapRequest) (*exchange.SwapResult, error) {
	f.mu.Lock()
	f.swaps = append(f.swaps, req)
	fn := f.swapFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &exchange.SwapResult{Signature: "swap-sig", OutAmount: decimal.Zero}, nil
}

func (f *fakeExchange) CloseTokenAccount(_ context.Context, mint string) error {
	f.mu.Lock()
	f.closed = append(f.closed, mint)
	f.mu.Unlock()
	return nil
}

func (f *fakeExchange) swapCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.swaps)
}

func (f *fakeExchange) closedMints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.closed...)
}

type fakeTradeLog struct {
	records   []store.TradeRecord
	statuses  map[string]model.TradeStatus
	purchased map[string]bool
}

func newFakeTradeLog() *fakeTradeLog {
	return &fakeTradeLog{
		statuses:  make(map[string]model.TradeStatus),
		purchased: make(map[string]bool),
	}
}

func (f *fakeTradeLog) RecordTrade(_ context.Context, rec store.TradeRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeTradeLog) UpdateStatus(_ context.Context, signature string, status model.TradeStatus) error {
	f.statuses[signature] = status
	return nil
}

func (f *fakeTradeLog) ListOpenTrades(_ context.Context) ([]model.TradeModel, error) {
	return nil, nil
}

func (f *fakeTradeLog) LastRunningPnlUSD(_ context.Context) (decimal.Decimal, error) {
	if len(f.records) == 0 {
		return decimal.Zero, nil
	}
	return f.records[len(f.records)-1].RunningPnlUSD, nil
}

func (f *fakeTradeLog) HasPurchased(_ context.Context, mint string) (bool, error) {
	return f.purchased[mint], nil
}

func (f *fakeTradeLog) AddPurchased(_ context.Context, mint string) error {
	f.purchased[mint] = true
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeNotifier) SendText(text string) error {
	f.mu.Lock()
	f.msgs = append(f.msgs, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type fakeVetter struct {
	meta     *vetting.Metadata
	metaErr  error
	verdict  *vetting.Verdict
	checkErr error
}

func (f *fakeVetter) TokenMetadata(_ context.Context, _ string) (*vetting.Metadata, error) {
	return f.meta, f.metaErr
}

func (f *fakeVetter) Check(_ context.Context, _ string) (*vetting.Verdict, error) {
	return f.verdict, f.checkErr
}

type fakeDenyList struct {
	entries map[string]bool
	added   []string
}

func newFakeDenyList(entries ...string) *fakeDenyList {
	m := make(map[string]bool)
	for _, e := range entries {
		m[e] = true
	}
	return &fakeDenyList{entries: m}
}

func (f *fakeDenyList) Contains(s string) bool { return f.entries[s] }

func (f *fakeDenyList) Add(s string) error {
	f.entries[s] = true
	f.added = append(f.added, s)
	return nil
}

func testRules() exitrule.Rules {
	return exitrule.Rules{
		TrailingStopPercent: decimal.NewFromInt(20),
		HardStopPercent:     exitrule.FixedHardStopPercent,
		DeepLossPercent:     decimal.NewFromInt(-15),
		StaleDangerAfter:    45 * time.Minute,
		TakeProfitWarning:   decimal.NewFromInt(30),
		TakeProfitDanger:    decimal.NewFromInt(30),
		GoodTier1:           exitrule.TierRule{ProfitPercent: decimal.NewFromInt(25), SellPercent: decimal.NewFromInt(40)},
		GoodTier2:           exitrule.TierRule{ProfitPercent: decimal.NewFromInt(50), SellPercent: decimal.NewFromInt(40)},
		GoodTier3:           exitrule.TierRule{ProfitPercent: decimal.NewFromInt(100), SellPercent: decimal.NewFromInt(100)},
	}
}

func testPosition() *types.Position {
	return &types.Position{
		Mint:           testMint,
		PurchasePrice:  decimal.NewFromFloat(0.000001),
		TradeAmountSOL: decimal.NewFromInt(1),
		HeldAmount:     decimal.NewFromInt(1_000_000),
		RiskTier:       types.RiskGood,
		OpenedAt:       time.Now().Add(-10 * time.Minute),
		HighWaterPrice: decimal.NewFromFloat(0.000001),
		BuySignature:   "buy-sig",
	}
}

func newSeller(ex *fakeExchange, book *portfolio.Book, trades *fakeTradeLog, notify *fakeNotifier, attempts int) *Seller {
	return NewSeller(ex, book, trades, nil, notify, 100, NewRetryPolicy(attempts, 0), 0)
}

func TestSellerZeroBalanceClosesWithoutSwap(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	require.NoError(t, book.Add(pos))

	ex := &fakeExchange{tokenBal: decimal.Zero}
	trades := newFakeTradeLog()
	s := newSeller(ex, book, trades, &fakeNotifier{}, 3)

	err := s.Execute(context.Background(), pos, exitrule.Action{SellPercent: decimal.NewFromInt(100), Reason: exitrule.ReasonHardStop})
	require.NoError(t, err)
	assert.False(t, book.Has(testMint))
	assert.Equal(t, model.TradeStatusSold, trades.statuses["buy-sig"])
	assert.Zero(t, ex.swapCount())
}

func TestSellerPartialSell(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	require.NoError(t, book.Add(pos))

	ex := &fakeExchange{
		tokenBal: decimal.NewFromInt(1_000_000),
		solUSD:   decimal.NewFromInt(100),
		swapFn: func(req exchange.SwapRequest) (*exchange.SwapResult, error) {
			// 卖出一半收回 1.2 SOL
			return &exchange.SwapResult{Signature: "sell-sig", OutAmount: decimal.NewFromInt(1_200_000_000)}, nil
		},
	}
	trades := newFakeTradeLog()
	notify := &fakeNotifier{}
	s := newSeller(ex, book, trades, notify, 3)

	act := exitrule.Action{SellPercent: decimal.NewFromInt(50), Reason: exitrule.ReasonTakeProfit1, Tier: types.ProfitTier1}
	require.NoError(t, s.Execute(context.Background(), pos, act))

	assert.True(t, book.Has(testMint))
	assert.True(t, pos.HeldAmount.Equal(decimal.NewFromInt(500_000)), "held %s", pos.HeldAmount)
	// 回收 1.2 SOL，分摊成本 0.5 SOL，盈亏 +0.7 SOL * 100 USD
	assert.True(t, book.RealizedPnlUSD().Equal(decimal.NewFromInt(70)), "pnl %s", book.RealizedPnlUSD())

	require.Len(t, trades.records, 1)
	rec := trades.records[0]
	assert.Equal(t, model.TradeSideSell, rec.Side)
	assert.Equal(t, "TAKE_PROFIT_TP1", rec.Reason)
	assert.Equal(t, 1, notify.count())
}

func TestSellerFullExitClosesAccount(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	require.NoError(t, book.Add(pos))

	ex := &fakeExchange{
		tokenBal: decimal.NewFromInt(1_000_000),
		solUSD:   decimal.NewFromInt(100),
		swapFn: func(req exchange.SwapRequest) (*exchange.SwapResult, error) {
			assert.True(t, req.Amount.Equal(decimal.NewFromInt(1_000_000)))
			return &exchange.SwapResult{Signature: "sell-sig", OutAmount: decimal.NewFromInt(900_000_000)}, nil
		},
	}
	trades := newFakeTradeLog()
	s := newSeller(ex, book, trades, &fakeNotifier{}, 3)

	act := exitrule.Action{SellPercent: decimal.NewFromInt(100), Reason: exitrule.ReasonTrailingStop}
	require.NoError(t, s.Execute(context.Background(), pos, act))

	assert.False(t, book.Has(testMint))
	assert.Equal(t, model.TradeStatusSold, trades.statuses["buy-sig"])
	assert.Eventually(t, func() bool {
		return len(ex.closedMints()) == 1
	}, time.Second, 10*time.Millisecond, "token account should be closed")
}

func TestSellerRetriesThenSucceeds(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	require.NoError(t, book.Add(pos))

	var calls int
	ex := &fakeExchange{
		tokenBal: decimal.NewFromInt(1_000_000),
		solUSD:   decimal.NewFromInt(100),
		swapFn: func(req exchange.SwapRequest) (*exchange.SwapResult, error) {
			calls++
			if calls < 3 {
				return nil, exchange.ErrSwapFailed
			}
			return &exchange.SwapResult{Signature: "sell-sig", OutAmount: decimal.NewFromInt(800_000_000)}, nil
		},
	}
	trades := newFakeTradeLog()
	s := newSeller(ex, book, trades, &fakeNotifier{}, 3)

	act := exitrule.Action{SellPercent: decimal.NewFromInt(100), Reason: exitrule.ReasonHardStop}
	require.NoError(t, s.Execute(context.Background(), pos, act))
	assert.Equal(t, 3, calls)
	assert.False(t, book.Has(testMint))
}

func TestSellerExhaustionKeepsPosition(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	require.NoError(t, book.Add(pos))

	ex := &fakeExchange{
		tokenBal: decimal.NewFromInt(1_000_000),
		swapFn: func(req exchange.SwapRequest) (*exchange.SwapResult, error) {
			return nil, exchange.ErrSwapFailed
		},
	}
	trades := newFakeTradeLog()
	notify := &fakeNotifier{}
	s := newSeller(ex, book, trades, notify, 3)

	act := exitrule.Action{SellPercent: decimal.NewFromInt(100), Reason: exitrule.ReasonHardStop}
	err := s.Execute(context.Background(), pos, act)
	require.ErrorIs(t, err, exchange.ErrSwapFailed)

	assert.Equal(t, 3, ex.swapCount())
	assert.True(t, book.Has(testMint), "failed sell must keep the position for the next cycle")
	assert.Equal(t, model.TradeStatusSellFailed, trades.statuses["buy-sig"])
	assert.Equal(t, 1, notify.count())
	assert.Empty(t, trades.records)
}

func testTradingConfig() config.TradingConfig {
	return config.TradingConfig{
		MaxPortfolioSize: 3,
		AmountSOLGood:    0.5,
		AmountSOLWarning: 0.25,
		AmountSOLDanger:  0.1,
		MinSOLBalance:    0.05,
	}
}

func newBuyer(ex *fakeExchange, book *portfolio.Book, trades *fakeTradeLog, vet *fakeVetter, deny *fakeDenyList, notify *fakeNotifier) *Buyer {
	return NewBuyer(ex, book, trades, vet, deny, nil, notify, testTradingConfig(), 100)
}

func TestBuyerHappyPath(t *testing.T) {
	book := portfolio.NewBook()
	ex := &fakeExchange{
		quoteBal: decimal.NewFromInt(2),
		swapFn: func(req exchange.SwapRequest) (*exchange.SwapResult, error) {
			assert.Equal(t, exchange.Buy, req.Direction)
			assert.True(t, req.Amount.Equal(decimal.NewFromInt(500_000_000)))
			return &exchange.SwapResult{Signature: "buy-sig", OutAmount: decimal.NewFromInt(1_000_000)}, nil
		},
	}
	trades := newFakeTradeLog()
	vet := &fakeVetter{
		meta:    &vetting.Metadata{Name: "gigacoin", Symbol: "giga"},
		verdict: &vetting.Verdict{Tier: types.RiskGood, RawJSON: []byte(`{"score":1}`)},
	}
	deny := newFakeDenyList()
	notify := &fakeNotifier{}
	b := newBuyer(ex, book, trades, vet, deny, notify)

	bought, err := b.TryBuy(context.Background(), testMint)
	require.NoError(t, err)
	assert.True(t, bought)

	pos, err := book.Get(testMint)
	require.NoError(t, err)
	assert.Equal(t, types.RiskGood, pos.RiskTier)
	assert.True(t, pos.HeldAmount.Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, pos.HighWaterPrice.Equal(pos.PurchasePrice))
	assert.Equal(t, "buy-sig", pos.BuySignature)
	// 单价 = 0.5 SOL / 1_000_000 raw
	assert.True(t, pos.PurchasePrice.Equal(decimal.RequireFromString("0.0000005")), "price %s", pos.PurchasePrice)

	assert.True(t, trades.purchased[testMint])
	require.Len(t, trades.records, 1)
	assert.Equal(t, model.TradeSideBuy, trades.records[0].Side)
	assert.NotEmpty(t, trades.records[0].VettingJSON)
	assert.ElementsMatch(t, []string{"gigacoin", "giga"}, deny.added)
	assert.Equal(t, 1, notify.count())
}

func TestBuyerAdmissionGates(t *testing.T) {
	vetOK := func() *fakeVetter {
		return &fakeVetter{
			meta:    &vetting.Metadata{Name: "x", Symbol: "x"},
			verdict: &vetting.Verdict{Tier: types.RiskDanger},
		}
	}

	t.Run("already held", func(t *testing.T) {
		book := portfolio.NewBook()
		require.NoError(t, book.Add(testPosition()))
		ex := &fakeExchange{quoteBal: decimal.NewFromInt(2)}
		b := newBuyer(ex, book, newFakeTradeLog(), vetOK(), newFakeDenyList(), &fakeNotifier{})

		bought, err := b.TryBuy(context.Background(), testMint)
		require.NoError(t, err)
		assert.False(t, bought)
		assert.Zero(t, ex.swapCount())
	})

	t.Run("portfolio full", func(t *testing.T) {
		book := portfolio.NewBook()
		for _, m := range []string{"m1", "m2", "m3"} {
			p := testPosition()
			p.Mint = m
			require.NoError(t, book.Add(p))
		}
		ex := &fakeExchange{quoteBal: decimal.NewFromInt(2)}
		b := newBuyer(ex, book, newFakeTradeLog(), vetOK(), newFakeDenyList(), &fakeNotifier{})

		bought, err := b.TryBuy(context.Background(), testMint)
		require.NoError(t, err)
		assert.False(t, bought)
		assert.Zero(t, ex.swapCount())
	})

	t.Run("purchased before", func(t *testing.T) {
		trades := newFakeTradeLog()
		trades.purchased[testMint] = true
		ex := &fakeExchange{quoteBal: decimal.NewFromInt(2)}
		b := newBuyer(ex, portfolio.NewBook(), trades, vetOK(), newFakeDenyList(), &fakeNotifier{})

		bought, err := b.TryBuy(context.Background(), testMint)
		require.NoError(t, err)
		assert.False(t, bought)
		assert.Zero(t, ex.swapCount())
	})

	t.Run("blacklisted symbol", func(t *testing.T) {
		vet := &fakeVetter{
			meta:    &vetting.Metadata{Name: "scamcoin", Symbol: "scam"},
			verdict: &vetting.Verdict{Tier: types.RiskGood},
		}
		ex := &fakeExchange{quoteBal: decimal.NewFromInt(2)}
		b := newBuyer(ex, portfolio.NewBook(), newFakeTradeLog(), vet, newFakeDenyList("scam"), &fakeNotifier{})

		bought, err := b.TryBuy(context.Background(), testMint)
		require.NoError(t, err)
		assert.False(t, bought)
		assert.Zero(t, ex.swapCount())
	})

	t.Run("vetting rejection", func(t *testing.T) {
		vet := &fakeVetter{
			meta:     &vetting.Metadata{Name: "x", Symbol: "x"},
			checkErr: vetting.ErrRejected,
		}
		ex := &fakeExchange{quoteBal: decimal.NewFromInt(2)}
		b := newBuyer(ex, portfolio.NewBook(), newFakeTradeLog(), vet, newFakeDenyList(), &fakeNotifier{})

		bought, err := b.TryBuy(context.Background(), testMint)
		require.NoError(t, err, "rejection is a skip, not an error")
		assert.False(t, bought)
		assert.Zero(t, ex.swapCount())
	})

	t.Run("vetting backend error propagates", func(t *testing.T) {
		vet := &fakeVetter{
			meta:     &vetting.Metadata{Name: "x", Symbol: "x"},
			checkErr: errors.New("rugcheck down"),
		}
		ex := &fakeExchange{quoteBal: decimal.NewFromInt(2)}
		b := newBuyer(ex, portfolio.NewBook(), newFakeTradeLog(), vet, newFakeDenyList(), &fakeNotifier{})

		_, err := b.TryBuy(context.Background(), testMint)
		require.Error(t, err)
		assert.Zero(t, ex.swapCount())
	})

	t.Run("insufficient balance", func(t *testing.T) {
		// DANGER 档 0.1 SOL + 底仓 0.05，余额 0.12 不够
		ex := &fakeExchange{quoteBal: decimal.NewFromFloat(0.12)}
		b := newBuyer(ex, portfolio.NewBook(), newFakeTradeLog(), vetOK(), newFakeDenyList(), &fakeNotifier{})

		bought, err := b.TryBuy(context.Background(), testMint)
		require.NoError(t, err)
		assert.False(t, bought)
		assert.Zero(t, ex.swapCount())
	})
}

func newTestTrader(ex *fakeExchange, book *portfolio.Book, trades *fakeTradeLog, notify *fakeNotifier, stopUSD decimal.Decimal) *Trader {
	seller := newSeller(ex, book, trades, notify, 3)
	buyer := newBuyer(ex, book, trades, &fakeVetter{meta: &vetting.Metadata{}, verdict: &vetting.Verdict{Tier: types.RiskDanger}}, newFakeDenyList(), notify)
	return New(Options{
		Exchange:          ex,
		Book:              book,
		Buyer:             buyer,
		Seller:            seller,
		Notify:            notify,
		Rules:             testRules(),
		Interval:          5 * time.Millisecond,
		GlobalStopLossUSD: stopUSD,
	})
}

func TestMonitorUpdatesHighWaterAndSells(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	pos.HighWaterPrice = decimal.NewFromFloat(0.0000015) // 峰值 +50%
	require.NoError(t, book.Add(pos))

	ex := &fakeExchange{
		priceFn: func(string) (decimal.Decimal, error) {
			// 当前 +20%，自峰值回撤 20%，触发移动止损
			return decimal.NewFromFloat(0.0000012), nil
		},
		tokenBal: decimal.NewFromInt(1_000_000),
		solUSD:   decimal.NewFromInt(100),
		swapFn: func(req exchange.SwapRequest) (*exchange.SwapResult, error) {
			return &exchange.SwapResult{Signature: "sell-sig", OutAmount: decimal.NewFromInt(1_200_000_000)}, nil
		},
	}
	trades := newFakeTradeLog()
	tr := newTestTrader(ex, book, trades, &fakeNotifier{}, decimal.Zero)

	tr.monitorOnce(context.Background())

	assert.False(t, book.Has(testMint))
	require.Len(t, trades.records, 1)
	assert.Equal(t, "TRAILING_STOP", trades.records[0].Reason)
}

func TestMonitorHighWaterRises(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	require.NoError(t, book.Add(pos))

	ex := &fakeExchange{
		priceFn: func(string) (decimal.Decimal, error) {
			return decimal.NewFromFloat(0.0000011), nil // +10%，无动作
		},
	}
	tr := newTestTrader(ex, book, newFakeTradeLog(), &fakeNotifier{}, decimal.Zero)

	tr.monitorOnce(context.Background())

	assert.True(t, book.Has(testMint))
	assert.True(t, pos.HighWaterPrice.Equal(decimal.NewFromFloat(0.0000011)))
	assert.Zero(t, ex.swapCount())
}

func TestMonitorPriceLostForcesExit(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	require.NoError(t, book.Add(pos))

	ex := &fakeExchange{
		priceFn: func(string) (decimal.Decimal, error) {
			return decimal.Zero, exchange.ErrPriceUnavailable
		},
		tokenBal: decimal.NewFromInt(1_000_000),
		solUSD:   decimal.NewFromInt(100),
		swapFn: func(req exchange.SwapRequest) (*exchange.SwapResult, error) {
			return &exchange.SwapResult{Signature: "sell-sig", OutAmount: decimal.NewFromInt(100_000_000)}, nil
		},
	}
	trades := newFakeTradeLog()
	tr := newTestTrader(ex, book, trades, &fakeNotifier{}, decimal.Zero)

	tr.monitorOnce(context.Background())

	assert.False(t, book.Has(testMint))
	require.Len(t, trades.records, 1)
	assert.Equal(t, "PRICE_LOST", trades.records[0].Reason)
}

func TestMonitorTransientErrorSkipsPosition(t *testing.T) {
	book := portfolio.NewBook()
	pos := testPosition()
	require.NoError(t, book.Add(pos))

	ex := &fakeExchange{
		priceFn: func(string) (decimal.Decimal, error) {
			return decimal.Zero, errors.New("rpc timeout")
		},
	}
	tr := newTestTrader(ex, book, newFakeTradeLog(), &fakeNotifier{}, decimal.Zero)

	tr.monitorOnce(context.Background())

	assert.True(t, book.Has(testMint), "transient price failures must not dump the position")
	assert.Zero(t, ex.swapCount())
}

func TestRunReturnsOnGlobalStop(t *testing.T) {
	book := portfolio.NewBook()
	book.SetRealizedPnlUSD(decimal.NewFromInt(-600))

	ex := &fakeExchange{}
	notify := &fakeNotifier{}
	tr := newTestTrader(ex, book, newFakeTradeLog(), notify, decimal.NewFromInt(-500))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := tr.Run(ctx)
	require.ErrorIs(t, err, ErrGlobalStop)
	assert.Equal(t, 1, notify.count())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	book := portfolio.NewBook()
	tr := newTestTrader(&fakeExchange{}, book, newFakeTradeLog(), &fakeNotifier{}, decimal.Zero)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
