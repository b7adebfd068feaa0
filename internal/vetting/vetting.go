// Package vetting 在买入前对新代币做欺诈/跑路启发式审查，产出风险级别。
// 核心交易逻辑只消费一次审查结论，之后不再复查。
package vetting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"talon/internal/config"
	"talon/internal/gateway/solana"
	"talon/internal/logger"
	"talon/internal/types"
)

// ErrRejected 表示代币未通过审查。原因放在包装消息里。
var ErrRejected = errors.New("vetting: token rejected")

// Verdict 是一次通过审查的结论。
type Verdict struct {
	Tier    types.RiskTier
	Score   float64
	RawJSON []byte // rugcheck 报告原文，随 BUY 行落库
}

// Metadata 是代币的链上元数据。
type Metadata struct {
	Name   string
	Symbol string
}

type Service struct {
	cfg  config.VettingConfig
	http *http.Client
	rpc  *solana.Client
}

func NewService(cfg config.VettingConfig, rpc *solana.Client) *Service {
	return &Service{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		rpc:  rpc,
	}
}

// TokenMetadata 通过 RPC getAsset（DAS 接口）取代币名称与符号。
func (s *Service) TokenMetadata(ctx context.Context, mint string) (*Metadata, error) {
	res, err := s.rpc.Call(ctx, "getAsset", map[string]any{"id": mint})
	if err != nil {
		return nil, err
	}
	meta := res.Get("content.metadata")
	if !meta.Exists() {
		return nil, fmt.Errorf("vetting: no metadata for %s", mint)
	}
	return &Metadata{
		Name:   meta.Get("name").String(),
		Symbol: meta.Get("symbol").String(),
	}, nil
}

// Check 拉取 rugcheck 报告并依次套用过滤器。全部通过才返回 Verdict。
func (s *Service) Check(ctx context.Context, mint string) (*Verdict, error) {
	endpoint := fmt.Sprintf("%s/tokens/%s/report", strings.TrimRight(s.cfg.RugcheckAPIURL, "/"), mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vetting: rugcheck request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("vetting: rugcheck status=%d", resp.StatusCode)
	}
	report := gjson.ParseBytes(body)
	if reason := rejectReason(report, s.cfg); reason != "" {
		logger.Warnf("vetting: %s rejected: %s", mint, reason)
		return nil, fmt.Errorf("%w: %s", ErrRejected, reason)
	}
	verdict := &Verdict{
		Tier:    deriveTier(report),
		Score:   report.Get("score_normalised").Float(),
		RawJSON: body,
	}
	logger.Infof("vetting: %s passed, tier=%s score=%.1f", mint, verdict.Tier, verdict.Score)
	return verdict, nil
}
