package lua

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	ErrUnknownScript = errors.New("script not loaded")
	ErrKeysMismatch  = errors.New("script keys mismatch")
)

type Executor struct {
	client  *redis.Client
	mu      sync.RWMutex
	sha     map[string]string
	scripts map[string]*Script
}

func NewExecutor(client *redis.Client) *Executor {
	return &Executor{
		client:  client,
		sha:     make(map[string]string),
		scripts: make(map[string]*Script),
	}
}

// Load 预加载脚本，返回出错脚本的序号(从1开始)
func (e *Executor) Load(ctx context.Context, scripts []*Script) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(scripts))
	for i, script := range scripts {
		if _, ok := e.sha[script.Name()]; ok {
			return i + 1, errors.New("repeat script name:" + script.Name())
		}
		res, err := e.client.ScriptLoad(ctx, script.Function()).Result()
		if err != nil {
			return i + 1, err
		}
		e.sha[script.Name()] = res
		e.scripts[script.Name()] = script
		names = append(names, script.Name())
	}
	slog.Debug("load lua scripts", "scripts", strings.Join(names, ","))
	return 0, nil
}

// Execute 通过sha执行脚本，redis重启导致脚本丢失时退化为eval
func (e *Executor) Execute(ctx context.Context, script *Script, keys []string, args ...interface{}) *redis.Cmd {
	if len(keys) != script.Keys() {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(ErrKeysMismatch)
		return cmd
	}
	e.mu.RLock()
	sha, ok := e.sha[script.Name()]
	e.mu.RUnlock()
	if !ok {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(ErrUnknownScript)
		return cmd
	}
	cmd := e.client.EvalSha(ctx, sha, keys, args...)
	if err := cmd.Err(); err != nil && redis.HasErrorPrefix(err, "NOSCRIPT") {
		return e.client.Eval(ctx, script.Function(), keys, args...)
	}
	return cmd
}
