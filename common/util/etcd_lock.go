package util

import (
	"context"
	"errors"
	"time"

	etcd "go.etcd.io/etcd/client/v3"
)

var ErrLockTimeout = errors.New("etcd lock timeout")

type Lock struct {
	client  *etcd.Client
	leaseId etcd.LeaseID
	closed  chan struct{}
}

// EtcdLock 基于lease+txn的互斥锁，用于分配snowflake的workerId
func EtcdLock(ctx context.Context, client *etcd.Client, key string) (*Lock, error) {
	leaseResp, err := client.Grant(ctx, 10)
	if err != nil {
		return nil, err
	}

	lock := &Lock{
		client:  client,
		leaseId: leaseResp.ID,
		closed:  make(chan struct{}),
	}

	ch, err := client.KeepAlive(ctx, leaseResp.ID)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	go func() {
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
			case <-lock.closed:
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		res, err := client.Txn(ctx).
			If(etcd.Compare(etcd.CreateRevision(key), "=", 0)).
			Then(etcd.OpPut(key, "locked", etcd.WithLease(leaseResp.ID))).
			Commit()
		if err == nil && res.Succeeded {
			return lock, nil
		}
		select {
		case <-ctx.Done():
			lock.Unlock()
			return nil, ctx.Err()
		case <-time.After(time.Millisecond * 15):
		}
	}
	lock.Unlock()
	return nil, ErrLockTimeout
}

func (l *Lock) Unlock() {
	select {
	case <-l.closed:
		return
	default:
		close(l.closed)
	}
	_, _ = l.client.Revoke(context.Background(), l.leaseId)
}
