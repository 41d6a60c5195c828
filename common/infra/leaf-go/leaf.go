package leaf_go

import (
	"Imstagramoo/common/infra/leaf-go/snowflake"
	"context"
	"errors"
)

var ErrNoModel = errors.New("no such model")

// NewCore 省略factory的简单工厂模式
func NewCore(ctx context.Context, config Config) (Core, error) {
	switch config.Model {
	case Snowflake:
		if config.SnowflakeConfig == nil {
			return nil, errors.New("snowflake config required")
		}
		if len(config.SnowflakeConfig.EtcdAddr) == 0 {
			return snowflake.NewLocalCreator(config.SnowflakeConfig.CreatorName, config.SnowflakeConfig.Node)
		}
		return snowflake.NewCreator(ctx, &snowflake.Config{
			CreatorName: config.SnowflakeConfig.CreatorName,
			Addr:        config.SnowflakeConfig.Addr,
			EtcdAddr:    config.SnowflakeConfig.EtcdAddr,
		})
	default:
		return nil, ErrNoModel
	}
}
