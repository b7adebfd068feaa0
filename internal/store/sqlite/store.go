package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"talon/internal/store"
	"talon/internal/store/model"
)

// SqliteStore 实现 store.TradeLog，单文件 sqlite + WAL。
type SqliteStore struct {
	db *gorm.DB
}

var _ store.TradeLog = (*SqliteStore)(nil)

func NewSqliteStore(path string) (*SqliteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return newSqliteStore(db)
}

func NewSqliteStoreFromDB(db *gorm.DB) (*SqliteStore, error) {
	if db == nil {
		return nil, errors.New("gorm db 不能为空")
	}
	return newSqliteStore(db)
}

func newSqliteStore(db *gorm.DB) (*SqliteStore, error) {
	models := []interface{}{
		&model.TradeModel{},
		&model.PurchasedTokenModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) RecordTrade(ctx context.Context, rec store.TradeRecord) error {
	row := &model.TradeModel{
		Side:          rec.Side,
		Mint:          rec.Mint,
		RiskTier:      rec.RiskTier,
		AmountSOL:     rec.AmountSOL.InexactFloat64(),
		PriceSOL:      rec.PriceSOL.String(),
		FeeLamports:   rec.FeeLamports.IntPart(),
		Signature:     rec.Signature,
		Reason:        rec.Reason,
		RunningPnlUSD: rec.RunningPnlUSD.InexactFloat64(),
		VettingJSON:   rec.VettingJSON,
		CreatedAtUnix: rec.CreatedAt.Unix(),
	}
	if rec.Side == model.TradeSideBuy {
		row.Status = model.TradeStatusOpen
	}
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *SqliteStore) UpdateStatus(ctx context.Context, signature string, status model.TradeStatus) error {
	if strings.TrimSpace(signature) == "" {
		return errors.New("signature cannot be empty")
	}
	return s.db.WithContext(ctx).
		Model(&model.TradeModel{}).
		Where("signature = ? AND side = ?", signature, model.TradeSideBuy).
		Update("status", status).Error
}

// ListOpenTrades 也包含 SELL_FAILED 的行：卖出失败的仓位链上仍持有代币，
// 重启后要继续纳入监控而不是弃管。
func (s *SqliteStore) ListOpenTrades(ctx context.Context) ([]model.TradeModel, error) {
	var rows []model.TradeModel
	err := s.db.WithContext(ctx).
		Where("side = ? AND status IN ?", model.TradeSideBuy,
			[]model.TradeStatus{model.TradeStatusOpen, model.TradeStatusSellFailed}).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LastRunningPnlUSD 读取最后一笔成交携带的累计已实现盈亏。
func (s *SqliteStore) LastRunningPnlUSD(ctx context.Context) (decimal.Decimal, error) {
	var row model.TradeModel
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	if row.ID == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(row.RunningPnlUSD), nil
}

func (s *SqliteStore) HasPurchased(ctx context.Context, mint string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.PurchasedTokenModel{}).
		Where("mint = ?", mint).
		Count(&count).Error
	return count > 0, err
}

func (s *SqliteStore) AddPurchased(ctx context.Context, mint string) error {
	row := &model.PurchasedTokenModel{Mint: mint, CreatedAtUnix: nowUnix()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mint"}},
		DoNothing: true,
	}).Create(row).Error
}

func (s *SqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
