package sync

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Mutex struct {
	sync      *Sync
	key       string
	retry     int                           // 加锁最大重试次数
	value     string                        // 锁的value，标识谁加的锁
	delayFunc func(times int) time.Duration // 获取下次申请加锁的等待时间
	valueFunc func() string                 // 获取锁value的函数
	ttl       time.Duration                 // 锁过期时间
	keepalive float64                       // 保活系数，ttl*keepalive为保活间隔
	util      time.Duration                 // 最大保活时间
	stop      chan struct{}
}

type Sync struct {
	client       *redis.Client
	unlockSha    string
	keepaliveSha string
}

// Lock 尝试加锁，直到达到最大重试次数
func (m *Mutex) Lock(ctx context.Context) error {
	return m.LockWithTimeout(ctx, 0)
}

// LockWithTimeout 尝试加锁，直到超时或达到最大重试次数，0表示不设置超时时间
func (m *Mutex) LockWithTimeout(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := m.TryLock(ctx)
	if !errors.Is(err, ErrFailed) {
		return err
	}

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for i := 1; i <= m.retry; i++ {
		timer.Reset(m.delayFunc(i))
		select {
		case <-ctx.Done():
			return ErrTimeout
		case <-timer.C:
		}
		err = m.TryLock(ctx)
		if !errors.Is(err, ErrFailed) {
			return err
		}
	}
	// 达到最大重试次数
	return ErrFailed
}

// TryLock 尝试加锁一次，成功后启动续期协程
func (m *Mutex) TryLock(ctx context.Context) error {
	value := m.valueFunc()
	ok, err := m.sync.client.SetNX(ctx, m.key, value, m.ttl).Result()
	if err != nil {
		return err
	}
	// 被其他实例锁住
	if !ok {
		return ErrFailed
	}
	m.value = value
	m.stop = make(chan struct{})
	go m.keepAlive(m.stop)
	return nil
}

func (m *Mutex) keepAlive(stop chan struct{}) {
	timeout, cancel := context.WithTimeout(context.Background(), m.util)
	defer cancel()
	interval := time.Duration(float64(m.ttl) * m.keepalive)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			res, err := m.sync.client.EvalSha(timeout, m.sync.keepaliveSha, []string{m.key}, m.value, int64(m.ttl/time.Second)+1).Result()
			if err != nil || res == nil {
				return
			}
		case <-stop:
			return
		case <-timeout.Done():
			return
		}
	}
}

// Unlock 解锁，只能解除自己持有的锁
func (m *Mutex) Unlock(ctx context.Context) error {
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	res, err := m.sync.client.EvalSha(ctx, m.sync.unlockSha, []string{m.key}, m.value).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if res.(string) == "also unlock" {
		return ErrAlsoUnlock
	}
	return ErrUnlockByOther
}

// NewMutex 并发不安全，一个Mutex只应被一个协程使用
func (s *Sync) NewMutex(key string, options ...Option) *Mutex {
	mu := &Mutex{
		sync:  s,
		key:   key,
		retry: 50,
		value: "",
		// 重试时间间隔递增
		delayFunc: func(times int) time.Duration { return time.Duration((times/5+1)*(10+rand.Intn(20))) * time.Millisecond },
		valueFunc: func() string { return uuid.New().String() },
		ttl:       5 * time.Second,
		keepalive: 0.5,
		util:      time.Second * 60,
	}
	for _, option := range options {
		option.Apply(mu)
	}
	return mu
}

func NewSync(ctx context.Context, client *redis.Client) (*Sync, error) {
	sync := &Sync{client: client}
	timeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := sync.loadUnlock(timeout); err != nil {
		return nil, err
	}
	if err := sync.loadKeepalive(timeout); err != nil {
		return nil, err
	}
	return sync, nil
}

func (s *Sync) loadUnlock(ctx context.Context) error {
	sha, err := s.client.ScriptLoad(ctx, `
local key=KEYS[1]
local value=ARGV[1]

local res=redis.call("GET",key)

if not res then
    return "also unlock"
end

if res~=value then
    return "unlock by other"
end

redis.call("DEL",key)

return nil
`).Result()
	if err != nil {
		return err
	}
	s.unlockSha = sha
	return nil
}

func (s *Sync) loadKeepalive(ctx context.Context) error {
	sha, err := s.client.ScriptLoad(ctx, `
local key=KEYS[1]
local value=ARGV[1]
local ttl=ARGV[2]

local res=redis.call("GET",key)
if not res then
    return nil
end

if res~=value then
    return nil
end

redis.call("EXPIRE",key,ttl)

return 1
`).Result()
	if err != nil {
		return err
	}
	s.keepaliveSha = sha
	return nil
}

type Option interface {
	Apply(mutex *Mutex)
}

type OptionFunc func(mutex *Mutex)

func (f OptionFunc) Apply(mutex *Mutex) {
	f(mutex)
}

// WithRetry 设置最大重试次数，默认值50
func WithRetry(Retry int) OptionFunc {
	if Retry <= 0 {
		panic("invalid retry value")
	}
	return func(mutex *Mutex) {
		mutex.retry = Retry
	}
}

// WithDelayFunc 设置重试间隔函数，默认采取递增策略
func WithDelayFunc(f func(times int) time.Duration) OptionFunc {
	return func(mutex *Mutex) {
		mutex.delayFunc = f
	}
}

// WithValueFunc 设置value获取函数，默认为uuid
func WithValueFunc(f func() string) OptionFunc {
	return func(mutex *Mutex) {
		mutex.valueFunc = f
	}
}

// WithTTL 设置锁过期时间，默认为5s
func WithTTL(ttl time.Duration) OptionFunc {
	if ttl <= 0 {
		panic("invalid ttl value")
	}
	return func(mutex *Mutex) {
		mutex.ttl = ttl
	}
}

// WithKeepAlive 设置保活系数，默认0.5
func WithKeepAlive(keepalive float64) OptionFunc {
	if keepalive <= 0 || keepalive >= 1 {
		panic("invalid keepalive value")
	}
	return func(mutex *Mutex) {
		mutex.keepalive = keepalive
	}
}

// WithUtil 设置最大保活时间，默认60s
func WithUtil(util time.Duration) OptionFunc {
	if util <= 0 {
		panic("invalid util value")
	}
	return func(mutex *Mutex) {
		mutex.util = util
	}
}

var (
	ErrFailed        = errors.New("try lock failed")
	ErrTimeout       = errors.New("try lock timeout")
	ErrAlsoUnlock    = errors.New("also unlock")
	ErrUnlockByOther = errors.New("unlock by other")
)
