package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	_ "github.com/spf13/viper/remote"
)

type Config struct {
	Name      string
	Log       LogConfig
	Mysql     MysqlConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Etcd      EtcdConfig
	Snowflake SnowflakeConfig
	Thread    ThreadConfig
}

type LogConfig struct {
	// Path 为空时输出到stdout
	Path  string
	Level string
}

type MysqlConfig struct {
	DSN         string
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	DB       int
	Password string
}

type KafkaConfig struct {
	// Brokers 为空时不发送事件
	Brokers      []string
	CommentTopic string
	LikeTopic    string
}

type EtcdConfig struct {
	Endpoints []string
}

type SnowflakeConfig struct {
	CreatorName string
	Addr        string
	// Node 未配置etcd时使用的workerId
	Node int64
}

type ThreadConfig struct {
	MaxDepth int
	PageSize int
	// byte
	LocalCacheSize int
	// second
	RootListTTL int
	// second
	LikeTTL int
}

func setDefault(v *viper.Viper) {
	v.SetDefault("name", "comment")
	v.SetDefault("log.level", "info")
	v.SetDefault("kafka.commenttopic", "comment")
	v.SetDefault("kafka.liketopic", "like")
	v.SetDefault("snowflake.creatorname", "comment")
	v.SetDefault("thread.maxdepth", 3)
	v.SetDefault("thread.pagesize", 5)
	v.SetDefault("thread.localcachesize", 64*1024*1024)
	v.SetDefault("thread.rootlistttl", 5)
	v.SetDefault("thread.likettl", 600)
}

// Load 读取本地yaml配置
func Load(path string) (Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return unmarshal(v)
}

// LoadRemote 在etcd中读取配置
func LoadRemote(addr string, path string) (Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetConfigType("yaml")
	if err := v.AddRemoteProvider("etcd3", addr, path); err != nil {
		return Config{}, err
	}
	if err := v.ReadRemoteConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "read remote config %s", path)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (Config, error) {
	cf := Config{}
	if err := v.Unmarshal(&cf); err != nil {
		return Config{}, err
	}
	if cf.Thread.MaxDepth <= 0 || cf.Thread.PageSize <= 0 {
		return Config{}, errors.Errorf("invalid thread config: max depth %d, page size %d", cf.Thread.MaxDepth, cf.Thread.PageSize)
	}
	return cf, nil
}
