package leaf_go

const (
	Snowflake = 2
)

type SnowflakeConfig struct {
	// 使用的服务名称，同一服务保证不分发相同id，同一服务上限1024个节点
	CreatorName string
	// 该服务的ip+port，其他同一服务启动时获取该机器的时钟，验证时钟回拨的风险
	Addr string
	// etcd地址，为空时使用Node作为workerId并只在本地记录时钟
	EtcdAddr []string
	Node     int64
}

type Config struct {
	Model           int
	SnowflakeConfig *SnowflakeConfig
}
