package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path, content string) {
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// TestWatcherReload 测试配置文件变更触发重载回调
func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "log:\n  level: info\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)

	watcher := NewWatcher(cfg, path)
	var mu sync.Mutex
	var got *Config
	watcher.OnChange(func(next *Config) {
		mu.Lock()
		defer mu.Unlock()
		got = next
	})
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	// 等待监听器就绪后修改配置文件
	time.Sleep(100 * time.Millisecond)
	writeConfigFile(t, path, "log:\n  level: warn\n")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.Log.Level == "warn"
	}, 3*time.Second, 50*time.Millisecond)

	// 重载后未覆盖的字段保留默认值,快照同步更新
	mu.Lock()
	assert.Equal(t, 8080, got.Server.Port)
	mu.Unlock()
	assert.Equal(t, "warn", watcher.Current().Log.Level)
}

// TestWatcherStop 测试停止后不再派发通知
func TestWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "log:\n  level: info\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	watcher := NewWatcher(cfg, path)
	var mu sync.Mutex
	called := false
	watcher.OnChange(func(*Config) {
		mu.Lock()
		defer mu.Unlock()
		called = true
	})
	require.NoError(t, watcher.Start())

	watcher.Stop()
	time.Sleep(100 * time.Millisecond)
	writeConfigFile(t, path, "log:\n  level: warn\n")
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called)
}

// TestWatcherMissingFile 测试配置文件不存在时启动失败
func TestWatcherMissingFile(t *testing.T) {
	watcher := NewWatcher(Default(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, watcher.Start())
}
