package vetting

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"talon/internal/logger"
)

// Blacklist 维护一份不再买入的代币名称/符号集合。文件一行一条，
// 大小写不敏感，被外部编辑后自动热加载。
type Blacklist struct {
	path string

	mu      sync.RWMutex
	entries map[string]struct{}

	watcher *fsnotify.Watcher
}

func NewBlacklist(path string) (*Blacklist, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	b := &Blacklist{
		path:    path,
		entries: make(map[string]struct{}),
	}
	if err := b.reload(); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("vetting: blacklist watcher: %w", err)
	}
	// 盯目录而不是文件：编辑器保存往往是 rename+create。
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	b.watcher = w
	go b.watch()
	return b, nil
}

// Contains 检查名称或符号是否在黑名单里。
func (b *Blacklist) Contains(nameOrSymbol string) bool {
	key := strings.ToLower(strings.TrimSpace(nameOrSymbol))
	if key == "" {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[key]
	return ok
}

// Add 把条目写入内存集合并追加到文件。买入成功后调用，
// 防止同名仿盘反复触发买入。
func (b *Blacklist) Add(entry string) error {
	key := strings.ToLower(strings.TrimSpace(entry))
	if key == "" {
		return nil
	}
	b.mu.Lock()
	if _, ok := b.entries[key]; ok {
		b.mu.Unlock()
		return nil
	}
	b.entries[key] = struct{}{}
	b.mu.Unlock()

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, key)
	return err
}

func (b *Blacklist) Close() error {
	if b.watcher != nil {
		return b.watcher.Close()
	}
	return nil
}

func (b *Blacklist) reload() error {
	f, err := os.Open(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	entries := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
	return nil
}

func (b *Blacklist) watch() {
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(b.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := b.reload(); err != nil {
				logger.Warnf("vetting: blacklist reload: %v", err)
				continue
			}
			b.mu.RLock()
			n := len(b.entries)
			b.mu.RUnlock()
			logger.Infof("vetting: blacklist reloaded, %d entries", n)
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("vetting: blacklist watcher: %v", err)
		}
	}
}
