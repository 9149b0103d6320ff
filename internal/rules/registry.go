package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ordersift/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
)

// ChangeListener 在规则重载成功后收到新快照。
type ChangeListener func(Snapshot)

// Registry 负责读取、校验并监听规则文件。
// 加载失败时保留上一份有效快照，避免热更新把运行中的流水线打挂。
type Registry struct {
	path   string
	v      *viper.Viper
	schema *jsonschema.Schema

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewRegistry 读取规则文件并开始监听变更。
// 文件不存在时先落一份默认规则（与线上部署的初始配置一致）。
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("rules registry requires path")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteDefaultRules(path); err != nil {
			return nil, fmt.Errorf("写入默认规则失败: %w", err)
		}
		logger.Infof("规则文件不存在，已生成默认规则: %s", path)
	}
	schema, err := compileRuleSchema()
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read rules file failed: %w", err)
	}
	r := &Registry{path: path, v: v, schema: schema}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("规则热更新失败，沿用旧规则: %v", err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// Snapshot 返回当前规则快照。
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// OnChange 注册规则变更回调。
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Replace 用新的规则表覆盖规则文件（配置面板的保存入口）。
// 先校验再落盘，落盘后由 fsnotify 触发正常的 reload 流程。
func (r *Registry) Replace(rs RuleSet) error {
	if err := r.validateSchema(rs); err != nil {
		return err
	}
	check := rs
	if err := check.Compile(); err != nil {
		return err
	}
	if err := writeRulesFile(r.path, rs); err != nil {
		return err
	}
	// WatchConfig 的回调可能有延迟，这里同步刷一次保证立即生效。
	if err := r.reload(); err != nil {
		return err
	}
	r.notifyListeners()
	return nil
}

func (r *Registry) reload() error {
	if err := r.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read rules file failed: %w", err)
	}
	var rs RuleSet
	if err := r.v.Unmarshal(&rs); err != nil {
		return fmt.Errorf("parse rules file failed: %w", err)
	}
	if err := r.validateSchema(rs); err != nil {
		return err
	}
	if err := rs.Compile(); err != nil {
		return err
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Rules:    rs,
	}
	version := r.snapshot.Version
	r.mu.Unlock()
	logger.Infof("规则表已加载 v%d（交易关键词 %d 个，排除关键词 %d 个）: %s",
		version, len(rs.Filter.TradingKeywords), len(rs.Filter.ExcludeKeywords), filepath.Base(r.path))
	return nil
}

func (r *Registry) validateSchema(rs RuleSet) error {
	raw, err := json.Marshal(rs)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := r.schema.Validate(doc); err != nil {
		return fmt.Errorf("规则文件不符合 schema: %w", err)
	}
	return nil
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := r.snapshot
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer safeRecover("rules listener")
			cb(snap)
		}(fn)
	}
}

func compileRuleSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.json", strings.NewReader(ruleFileSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("rules.json")
}

func safeRecover(tag string) {
	if rec := recover(); rec != nil {
		logger.Errorf("%s panic: %v", tag, rec)
	}
}
