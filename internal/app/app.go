// Package app 负责应用级编排：加载配置→初始化依赖→启动监听、交易循环与 HTTP。
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"talon/internal/config"
	"talon/internal/gateway/jupiter"
	"talon/internal/gateway/notifier"
	"talon/internal/gateway/solana"
	"talon/internal/logger"
	"talon/internal/portfolio"
	"talon/internal/store/eventlog"
	storesqlite "talon/internal/store/sqlite"
	apihttp "talon/internal/transport/http/api"
	"talon/internal/trader"
	"talon/internal/vetting"
	"talon/internal/watcher"
)

// App 持有全部长生命周期组件。
type App struct {
	cfg   *config.Config
	runID string

	trades    *storesqlite.SqliteStore
	events    *eventlog.Store
	blacklist *vetting.Blacklist
	trader    *trader.Trader
	watcher   *watcher.Watcher
	server    *apihttp.Server
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	rpc, err := solana.New(solana.Config{
		RPCURL:     cfg.Solana.RPCURL,
		WSURL:      cfg.Solana.WSURL,
		Commitment: cfg.Solana.Commitment,
	})
	if err != nil {
		return nil, err
	}
	wallet, err := solana.NewWallet(cfg.Solana.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	logger.Infof("app: wallet %s", wallet.Address())

	ex, err := jupiter.New(jupiter.Config{
		QuoteAPIURL:   cfg.Jupiter.QuoteAPIURL,
		PriceAPIURL:   cfg.Jupiter.PriceAPIURL,
		SlippageBps:   cfg.Jupiter.SlippageBps,
		PreQuoteDelay: time.Duration(cfg.Jupiter.PreQuoteDelayMS) * time.Millisecond,
	}, rpc, wallet)
	if err != nil {
		return nil, err
	}

	trades, err := storesqlite.NewSqliteStore(cfg.Store.TradesPath)
	if err != nil {
		return nil, fmt.Errorf("open trade store: %w", err)
	}
	events, err := eventlog.Open(cfg.Store.EventLogPath)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	var notify notifier.TextNotifier = notifier.Nop{}
	if cfg.Notify.Telegram.Enabled {
		notify = notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}

	vet := vetting.NewService(cfg.Vetting, rpc)
	blacklist, err := vetting.NewBlacklist(cfg.Vetting.BlacklistPath)
	if err != nil {
		return nil, fmt.Errorf("load blacklist: %w", err)
	}

	book := portfolio.NewBook()
	if err := rehydrate(context.Background(), book, trades); err != nil {
		return nil, fmt.Errorf("rehydrate positions: %w", err)
	}

	seller := trader.NewSeller(ex, book, trades, events, notify,
		cfg.Jupiter.SlippageBps,
		trader.NewRetryPolicy(cfg.Monitor.SellRetryAttempts, cfg.Monitor.SellRetryDelay()),
		cfg.Monitor.CloseAccountDelay())
	buyer := trader.NewBuyer(ex, book, trades, vet, blacklist, events, notify,
		cfg.Trading, cfg.Jupiter.SlippageBps)

	tr := trader.New(trader.Options{
		Exchange:          ex,
		Book:              book,
		Buyer:             buyer,
		Seller:            seller,
		Events:            events,
		Notify:            notify,
		Rules:             cfg.Risk.Rules(),
		Interval:          cfg.Monitor.Interval(),
		GlobalStopLossUSD: decimal.NewFromFloat(cfg.Risk.GlobalStopLossUSD),
	})

	w := watcher.New(rpc, tr.Submit)

	server, err := apihttp.NewServer(apihttp.ServerConfig{
		Addr:     cfg.App.HTTPAddr,
		Snapshot: tr.Snapshot,
	})
	if err != nil {
		return nil, err
	}

	// 每次启动一个独立的 run id，事件日志靠它区分不同的运行批次
	runID := uuid.NewString()
	logger.Infof("app: run %s", runID)
	events.Append("info", "service starting", map[string]any{
		"run_id": runID,
		"env":    cfg.App.Env,
		"wallet": wallet.Address(),
	}, 0)

	return &App{
		cfg:       cfg,
		runID:     runID,
		trades:    trades,
		events:    events,
		blacklist: blacklist,
		trader:    tr,
		watcher:   w,
		server:    server,
	}, nil
}

// Run 启动全部组件并阻塞，任一组件出错（含全局止损）即整体停机。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("api http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return a.watcher.Run(ctx)
	})
	group.Go(func() error {
		return a.trader.Run(ctx)
	})

	err := group.Wait()
	a.Close()
	return err
}

// Close 释放持久层与黑名单监听资源。
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.blacklist != nil {
		_ = a.blacklist.Close()
	}
	if a.events != nil {
		_ = a.events.Close()
	}
	if a.trades != nil {
		_ = a.trades.Close()
	}
}
