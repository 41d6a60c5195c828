package svc

import (
	"context"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/coocood/freecache"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	leaf "Imstagramoo/common/infra/leaf-go"
	"Imstagramoo/common/infra/lua"
	syncx "Imstagramoo/common/infra/sync"
	"Imstagramoo/common/model/database"
	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/cache"
	"Imstagramoo/services/comment/internal/config"
	"Imstagramoo/services/comment/internal/mutation"
	"Imstagramoo/services/comment/internal/pager"
	"Imstagramoo/services/comment/internal/script"
	"Imstagramoo/services/comment/internal/store"
)

// Backend 评论存储，Store或MemoryStore
type Backend interface {
	pager.Fetcher
	mutation.Writer
}

type ServiceContext struct {
	Config   config.Config
	Client   *redis.Client
	Executor *lua.Executor
	DB       *gorm.DB
	Producer sarama.SyncProducer
	Logger   *slog.Logger
	Creator  leaf.Core
	Local    *freecache.Cache
	Sync     *syncx.Sync

	Backend     Backend
	Cache       *cache.Cache
	Pager       *pager.Pager
	Coordinator *mutation.Coordinator
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{Config: c}
	ctx := context.Background()

	logger, err := util.InitLog(c.Name, util.ParseLevel(c.Log.Level), c.Log.Path)
	if err != nil {
		panic(err.Error())
	}
	svc.Logger = logger

	db, err := gorm.Open(mysql.Open(c.Mysql.DSN), &gorm.Config{})
	if err != nil {
		panic(err.Error())
	}
	if c.Mysql.AutoMigrate {
		if err = database.Migrate(db); err != nil {
			panic(err.Error())
		}
	}
	svc.DB = db

	rClient := redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		DB:       c.Redis.DB,
		Password: c.Redis.Password,
	})
	if err := rClient.Ping(ctx).Err(); err != nil {
		panic(err.Error())
	}
	svc.Client = rClient

	sync, err := syncx.NewSync(ctx, rClient)
	if err != nil {
		panic(err.Error())
	}
	svc.Sync = sync

	executor := lua.NewExecutor(rClient)
	_, err = executor.Load(ctx, script.All())
	if err != nil {
		panic(err.Error())
	}
	svc.Executor = executor

	creator, err := leaf.NewCore(ctx, leaf.Config{
		Model: leaf.Snowflake,
		SnowflakeConfig: &leaf.SnowflakeConfig{
			CreatorName: c.Snowflake.CreatorName,
			Addr:        c.Snowflake.Addr,
			EtcdAddr:    c.Etcd.Endpoints,
			Node:        c.Snowflake.Node,
		},
	})
	if err != nil {
		panic(err.Error())
	}
	svc.Creator = creator

	if len(c.Kafka.Brokers) > 0 {
		kafkaConfig := sarama.NewConfig()
		kafkaConfig.Producer.Return.Successes = true
		kafkaConfig.Producer.RequiredAcks = sarama.WaitForLocal
		producer, err := sarama.NewSyncProducer(c.Kafka.Brokers, kafkaConfig)
		if err != nil {
			panic(err.Error())
		}
		svc.Producer = producer
	}

	svc.Local = freecache.NewCache(c.Thread.LocalCacheSize)

	backend := &store.Store{
		DB:           svc.DB,
		Client:       svc.Client,
		Executor:     svc.Executor,
		Sync:         svc.Sync,
		Producer:     svc.Producer,
		Creator:      svc.Creator,
		Local:        svc.Local,
		Logger:       svc.Logger,
		CommentTopic: c.Kafka.CommentTopic,
		LikeTopic:    c.Kafka.LikeTopic,
		MaxDepth:     c.Thread.MaxDepth,
		RootListTTL:  c.Thread.RootListTTL,
		LikeTTL:      time.Duration(c.Thread.LikeTTL) * time.Second,
	}
	svc.wire(backend)
	return svc
}

// NewWithBackend 只组装缓存和协调器，用于本地运行和测试
func NewWithBackend(c config.Config, backend Backend, logger *slog.Logger) *ServiceContext {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &ServiceContext{Config: c, Logger: logger}
	svc.wire(backend)
	return svc
}

func (svc *ServiceContext) wire(backend Backend) {
	c := svc.Config
	svc.Backend = backend
	svc.Cache = cache.New()

	pagerOptions := []pager.Option{pager.WithLogger(svc.Logger)}
	if c.Thread.PageSize > 0 {
		pagerOptions = append(pagerOptions, pager.WithPageSize(c.Thread.PageSize))
	}
	svc.Pager = pager.New(svc.Cache, backend, pagerOptions...)

	coordinatorOptions := []mutation.Option{
		mutation.WithLikeLoader(svc.Pager),
		mutation.WithLogger(svc.Logger),
	}
	if c.Thread.MaxDepth > 0 {
		coordinatorOptions = append(coordinatorOptions, mutation.WithMaxDepth(c.Thread.MaxDepth))
	}
	svc.Coordinator = mutation.New(svc.Cache, backend, coordinatorOptions...)
}

// Close 释放外部连接
func (svc *ServiceContext) Close() {
	if svc.Producer != nil {
		if err := svc.Producer.Close(); err != nil {
			svc.Logger.Error("close kafka producer:" + err.Error())
		}
	}
	if svc.Client != nil {
		_ = svc.Client.Close()
	}
}
