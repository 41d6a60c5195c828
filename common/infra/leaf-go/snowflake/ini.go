package snowflake

import (
	"Imstagramoo/common/util"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	etcd "go.etcd.io/etcd/client/v3"
)

var (
	ErrWorkerIdExhausted = errors.New("worker id not enough")
	ErrClockBackwards    = errors.New("clock failed")
)

// NewLocalCreator 不依赖etcd，使用固定workerId，适用于单实例和测试
func NewLocalCreator(name string, node int64) (*Creator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}
	c := &Creator{name: name, snowNode: n}
	c.local.Store(true)
	c.working.Store(true)
	c.lastTime.Store(time.Now().UnixMilli())
	return c, nil
}

func NewCreator(ctx context.Context, config *Config) (*Creator, error) {
	client, err := etcd.New(etcd.Config{
		Endpoints:   config.EtcdAddr,
		DialTimeout: time.Second,
	})
	if err != nil {
		return nil, err
	}

	// 申请etcd分布式锁，因为我们需要获取唯一的workerId
	lock, err := util.EtcdLock(ctx, client, "lock/"+config.CreatorName)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	res, err := client.Get(ctx, "IdCreator/"+config.CreatorName+"/"+config.Addr)
	if err != nil {
		return nil, err
	}

	// 该服务之前申请过workerId，复用之前创建的workerId
	if len(res.Kvs) == 1 {
		id, err := strconv.ParseInt(string(res.Kvs[0].Value), 10, 64)
		if err != nil {
			return nil, err
		}
		return initCreator(ctx, client, config, id)
	}
	// 获取同一服务的个数，本地节点使用该个数作为workerId
	res, err = client.Get(ctx, "IdCreator/"+config.CreatorName, etcd.WithPrefix(), etcd.WithCountOnly())
	if err != nil {
		return nil, err
	}

	id := res.Count
	if id >= 1<<snowflake.NodeBits {
		return nil, ErrWorkerIdExhausted
	}

	_, err = client.Put(ctx, "IdCreator/"+config.CreatorName+"/"+config.Addr, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}

	return initCreator(ctx, client, config, id)
}

func initCreator(ctx context.Context, client *etcd.Client, config *Config, id int64) (*Creator, error) {
	node, err := snowflake.NewNode(id)
	if err != nil {
		return nil, err
	}
	// 该key永久存储在etcd中，定时上报时钟到该节点
	key := "IdCreatorForever/" + config.CreatorName + "/" + config.Addr
	res, err := client.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if len(res.Kvs) == 0 {
		if _, err = client.Put(ctx, key, strconv.FormatInt(time.Now().UnixMilli(), 10)); err != nil {
			return nil, err
		}
	} else {
		num, err := strconv.ParseInt(string(res.Kvs[0].Value), 10, 64)
		if err != nil {
			return nil, err
		}
		if time.Now().UnixMilli() < num {
			return nil, ErrClockBackwards
		}
	}

	leaseResp, err := client.Grant(ctx, 10)
	if err != nil {
		return nil, err
	}
	ch, err := client.KeepAlive(context.Background(), leaseResp.ID)
	if err != nil {
		return nil, err
	}

	// 使用lease将实例地址和节点绑定，节点活跃时自动续约，下线时自动删除
	_, err = client.Put(ctx, "IdCreatorTemporary/"+config.CreatorName+"/"+config.Addr, config.Addr, etcd.WithLease(leaseResp.ID))
	if err != nil {
		return nil, err
	}

	c := &Creator{
		name:     config.CreatorName,
		addr:     config.Addr,
		client:   client,
		snowNode: node,
		lease:    leaseResp.ID,
	}
	c.lastTime.Store(time.Now().UnixMilli())
	c.working.Store(true)
	go c.heartCheck()
	go c.watchLease(ch)

	return c, nil
}

// watchLease 续约失效，认为etcd不可用，改为只在本地记录时钟
func (c *Creator) watchLease(ch <-chan *etcd.LeaseKeepAliveResponse) {
	for range ch {
	}
	slog.Error(fmt.Sprintf("snowflake %s lease lost, change to use local time record", c.name))
	c.local.Store(true)
}
