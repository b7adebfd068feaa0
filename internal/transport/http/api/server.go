// Package apihttp 提供最小化的只读 HTTP 服务：健康检查与组合/盈亏查询。
package apihttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"talon/internal/logger"
	"talon/internal/trader"
)

// SnapshotFunc 返回账本的最新只读快照。
type SnapshotFunc func() *trader.Snapshot

// Server 提供 /healthz 与 /api 下的查询接口。
type Server struct {
	addr   string
	router *gin.Engine
}

type ServerConfig struct {
	Addr     string
	Snapshot SnapshotFunc
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Snapshot == nil {
		return nil, errors.New("api http server requires a snapshot source")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9966"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/portfolio", func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Snapshot())
	})
	api.GET("/pnl", func(c *gin.Context) {
		snap := cfg.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"realized_pnl_usd": snap.RealizedPnlUSD,
			"open_positions":   len(snap.Positions),
			"halted":           snap.Halted,
			"updated_at":       snap.UpdatedAt,
		})
	})

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}
