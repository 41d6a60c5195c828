package snowflake

import (
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	etcd "go.etcd.io/etcd/client/v3"
)

type Creator struct {
	name string
	addr string
	// 当前节点是否可正常工作，小步长回拨时将该值设置为false
	working  atomic.Bool
	client   *etcd.Client
	snowNode *snowflake.Node
	lease    etcd.LeaseID
	// 是否只上报时钟到本地，在etcd不可用时将该变量设置为true
	local atomic.Bool
	// 本地时钟(millisecond)
	lastTime atomic.Int64
}

type Config struct {
	CreatorName string
	Addr        string
	EtcdAddr    []string
}
