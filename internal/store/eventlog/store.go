// Package eventlog 把运行事件落到独立的 sqlite 文件，方便事后排查。
// 写入失败只降级为标准日志，不影响交易链路。
package eventlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"talon/internal/logger"
)

type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("eventlog path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		context_json TEXT,
		pnl_usd REAL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Append 记录一条事件。context 可为 nil。
func (s *Store) Append(level, message string, context map[string]any, pnlUSD float64) {
	if s == nil || s.db == nil {
		return
	}
	var ctxJSON any
	if len(context) > 0 {
		if raw, err := json.Marshal(context); err == nil {
			ctxJSON = string(raw)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		"INSERT INTO events(level, message, context_json, pnl_usd, created_at) VALUES(?,?,?,?,?)",
		strings.ToUpper(level), message, ctxJSON, pnlUSD, time.Now().Unix(),
	)
	if err != nil {
		logger.Warnf("eventlog: append failed: %v", err)
	}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
