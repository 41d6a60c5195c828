package leaf_go

import (
	"context"
	"time"
)

type Core interface {
	// GetId 获取一个分布式唯一id，若可用则返回id+true，否则返回0+false
	GetId() (int64, bool)
	// GetIdWithContext 内部循环调用GetId，context结束则返回err
	GetIdWithContext(ctx context.Context) (int64, error)
	// GetIdWithTimeout 内部调用GetIdWithContext
	GetIdWithTimeout(time.Duration) (int64, error)
}
