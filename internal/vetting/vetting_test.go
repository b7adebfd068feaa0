package vetting

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"talon/internal/config"
	"talon/internal/types"
)

func testVettingConfig() config.VettingConfig {
	return config.VettingConfig{
		MinLiquidityUSD:   1000,
		MaxLiquidityUSD:   50000,
		MinMarketCapUSD:   5000,
		MaxSimulationLoss: 25,
		MaxTaxPercent:     8,
		MaxOwnerPercent:   5,
		MaxDevWallets:     3,
		MinLPLockDays:     30,
		TimeoutSeconds:    5,
	}
}

func cleanReport() string {
	return `{
		"token": {"freezeAuthority": "", "mintAuthority": "", "supply": 1000000000, "decimals": 0},
		"price": 0.00002,
		"totalMarketLiquidity": 12000,
		"simulationLoss": 2,
		"buyTax": 0, "sellTax": 1,
		"ownerPercent": 2,
		"devWalletCount": 1,
		"lpLockDurationDays": 180,
		"score_normalised": 12.5,
		"risks": [{"name": "Low amount of LP Providers", "level": "warn"}]
	}`
}

func TestRejectReason(t *testing.T) {
	cfg := testVettingConfig()

	cases := []struct {
		name   string
		mutate string
		want   string
	}{
		{"freezable", `{"token":{"freezeAuthority":"abc"}}`, "freezable"},
		{"mintable", `{"token":{"mintAuthority":"abc"}}`, "mintable"},
		{"low liquidity", `{"totalMarketLiquidity":500}`, "below floor"},
		{"high liquidity", `{"totalMarketLiquidity":90000}`, "above ceiling"},
		{"high simulation loss", `{"totalMarketLiquidity":12000,"token":{"supply":1000000000},"price":0.00002,"simulationLoss":40}`, "simulation loss"},
		{"high tax", `{"totalMarketLiquidity":12000,"token":{"supply":1000000000},"price":0.00002,"sellTax":20}`, "tax"},
		{"owner concentration", `{"totalMarketLiquidity":12000,"token":{"supply":1000000000},"price":0.00002,"ownerPercent":40}`, "owner"},
		{"dev wallets", `{"totalMarketLiquidity":12000,"token":{"supply":1000000000},"price":0.00002,"devWalletCount":9}`, "dev wallets"},
		{"short lp lock", `{"totalMarketLiquidity":12000,"token":{"supply":1000000000},"price":0.00002,"lpLockDurationDays":3}`, "lp lock"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason := rejectReason(gjson.Parse(tc.mutate), cfg)
			assert.Contains(t, reason, tc.want)
		})
	}

	t.Run("clean report passes", func(t *testing.T) {
		assert.Empty(t, rejectReason(gjson.Parse(cleanReport()), cfg))
	})
}

func TestRejectReasonMarketCap(t *testing.T) {
	cfg := testVettingConfig()
	// 价格*供应/10^decimals = 0.000001 * 1e9 = 1000 < 5000
	report := `{"totalMarketLiquidity":12000,"token":{"supply":1000000000,"decimals":0},"price":0.000001,"lpLockDurationDays":180}`
	assert.Contains(t, rejectReason(gjson.Parse(report), cfg), "market cap")
}

func TestDeriveTier(t *testing.T) {
	cases := []struct {
		name string
		json string
		want types.RiskTier
	}{
		{"no risks defaults to danger", `{"risks":[]}`, types.RiskDanger},
		{"missing risks defaults to danger", `{}`, types.RiskDanger},
		{"all clear", `{"risks":[{"level":"info"}]}`, types.RiskGood},
		{"warn only", `{"risks":[{"level":"info"},{"level":"warn"}]}`, types.RiskWarning},
		{"danger wins", `{"risks":[{"level":"warn"},{"level":"danger"}]}`, types.RiskDanger},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deriveTier(gjson.Parse(tc.json)))
		})
	}
}

func TestServiceCheck(t *testing.T) {
	mint := "9gP2kCy3wA1ctvYWQk75guqXuHfrEomqydHLtcTCqiLa"

	t.Run("passing token returns verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, fmt.Sprintf("/tokens/%s/report", mint), r.URL.Path)
			fmt.Fprint(w, cleanReport())
		}))
		defer srv.Close()

		cfg := testVettingConfig()
		cfg.RugcheckAPIURL = srv.URL
		svc := NewService(cfg, nil)

		v, err := svc.Check(context.Background(), mint)
		require.NoError(t, err)
		assert.Equal(t, types.RiskWarning, v.Tier)
		assert.InDelta(t, 12.5, v.Score, 0.001)
		assert.NotEmpty(t, v.RawJSON)
	})

	t.Run("rejected token returns ErrRejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"token":{"mintAuthority":"abc"}}`)
		}))
		defer srv.Close()

		cfg := testVettingConfig()
		cfg.RugcheckAPIURL = srv.URL
		svc := NewService(cfg, nil)

		_, err := svc.Check(context.Background(), mint)
		require.ErrorIs(t, err, ErrRejected)
	})

	t.Run("upstream error is not a rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		cfg := testVettingConfig()
		cfg.RugcheckAPIURL = srv.URL
		svc := NewService(cfg, nil)

		_, err := svc.Check(context.Background(), mint)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRejected)
	})
}

func TestBlacklist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blacklist.txt")
	require.NoError(t, os.WriteFile(path, []byte("PEPE\n# comment\n\ndogwifhat\n"), 0o644))

	bl, err := NewBlacklist(path)
	require.NoError(t, err)
	defer bl.Close()

	assert.True(t, bl.Contains("pepe"))
	assert.True(t, bl.Contains("PEPE"))
	assert.True(t, bl.Contains(" dogwifhat "))
	assert.False(t, bl.Contains("bonk"))
	assert.False(t, bl.Contains(""))

	require.NoError(t, bl.Add("BONK"))
	assert.True(t, bl.Contains("bonk"))

	// 重复追加不应报错，文件里应该已经有持久化条目
	require.NoError(t, bl.Add("bonk"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bonk")
}

func TestBlacklistMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")
	bl, err := NewBlacklist(path)
	require.NoError(t, err)
	defer bl.Close()
	assert.False(t, bl.Contains("anything"))

	require.NoError(t, bl.Add("scamcoin"))
	assert.True(t, bl.Contains("scamcoin"))
}
