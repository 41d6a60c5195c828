package snowflake

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// maxStep 可以等待的最大时钟回拨(millisecond)
const maxStep = 500

func (c *Creator) GetId() (int64, bool) {
	if !c.working.Load() {
		return 0, false
	}
	return c.snowNode.Generate().Int64(), true
}

func (c *Creator) GetIdWithContext(ctx context.Context) (int64, error) {
	for {
		if id, ok := c.GetId(); ok {
			return id, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Millisecond * 50):
		}
	}
}

func (c *Creator) GetIdWithTimeout(timeout time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.GetIdWithContext(ctx)
}

// observe 检查时钟回拨，小步长回拨时暂停发号双倍时间，大步长回拨时停止发号
func (c *Creator) observe(now int64) {
	last := c.lastTime.Load()
	if now >= last {
		c.lastTime.Store(now)
		return
	}
	step := last - now
	if step > maxStep {
		slog.Error("snowflake clock moved backwards", "name", c.name, "step", step)
		c.working.Store(false)
		return
	}
	c.working.Store(false)
	time.Sleep(time.Duration(step*2) * time.Millisecond)
	c.working.Store(true)
}

// heartCheck 心跳，定时上报时钟到本地和etcd
func (c *Creator) heartCheck() {
	ticker := time.NewTicker(time.Millisecond * 200)
	defer ticker.Stop()
	key := "IdCreatorForever/" + c.name + "/" + c.addr

	for range ticker.C {
		now := time.Now().UnixMilli()
		if c.local.Load() {
			c.observe(now)
			continue
		}
		timeout, cancel := context.WithTimeout(context.Background(), time.Millisecond*500)
		resp, err := c.client.Get(timeout, key)
		// 当etcd请求失效时将本地存储的时钟作为依据
		if err == nil && len(resp.Kvs) == 1 {
			if t, err := strconv.ParseInt(string(resp.Kvs[0].Value), 10, 64); err == nil && t > c.lastTime.Load() {
				c.lastTime.Store(t)
			}
		}
		c.observe(now)
		_, _ = c.client.Put(timeout, key, strconv.FormatInt(time.Now().UnixMilli(), 10))
		cancel()
	}
}
