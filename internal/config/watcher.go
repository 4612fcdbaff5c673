package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watcher 配置文件监听器
// 监听配置文件变更并重载,用于运行时调整日志级别与限流参数
type Watcher struct {
	mu        sync.Mutex
	current   *Config
	viper     *viper.Viper
	callbacks []func(*Config)
	stopped   bool
}

// NewWatcher 创建配置监听器
func NewWatcher(cfg *Config, configPath string) *Watcher {
	v := viper.New()
	// 重载不完整的配置文件时保留默认值
	setDefaults(v)
	v.SetConfigFile(configPath)

	return &Watcher{current: cfg, viper: v}
}

// OnChange 注册配置变更回调
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start 读取配置文件并开始监听变更
func (w *Watcher) Start() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	w.viper.OnConfigChange(func(fsnotify.Event) { w.reload() })
	w.viper.WatchConfig()
	return nil
}

// reload 重新解析配置并通知回调
func (w *Watcher) reload() {
	var next Config
	if err := w.viper.Unmarshal(&next); err != nil {
		return
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.current = &next
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	// 在锁外调用回调,避免回调里读配置时死锁
	for _, fn := range callbacks {
		fn(&next)
	}
}

// Stop 停止派发变更通知
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
}

// Current 当前配置快照
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}
