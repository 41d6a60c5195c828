// Package store 评论存储：MemoryStore用于测试和本地运行，Store连接mysql、redis和kafka
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/coocood/freecache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	leaf "Imstagramoo/common/infra/leaf-go"
	"Imstagramoo/common/infra/lua"
	syncx "Imstagramoo/common/infra/sync"
	"Imstagramoo/common/model/database"
	"Imstagramoo/common/util"
	"Imstagramoo/services/comment/internal/model"
	"Imstagramoo/services/comment/internal/pathcodec"
)

// Store 评论行写mysql，点赞计数在redis中原子翻转，变更事件发往kafka供异步落库
type Store struct {
	DB       *gorm.DB
	Client   *redis.Client
	Executor *lua.Executor
	Sync     *syncx.Sync
	// Producer 为空时不发送事件
	Producer sarama.SyncProducer
	Creator  leaf.Core
	// Local 根评论列表的本地缓存
	Local  *freecache.Cache
	Logger *slog.Logger

	CommentTopic string
	LikeTopic    string
	MaxDepth     int
	// RootListTTL 本地缓存过期时间(s)
	RootListTTL int
	LikeTTL     time.Duration
}

func rootListKey(postID int64) string {
	return "RootCommentList:" + strconv.FormatInt(postID, 10)
}

func likeKeys(postID int64) []string {
	id := strconv.FormatInt(postID, 10)
	return []string{"LikeNums:" + id, "LikeUsers:" + id}
}

func (s *Store) maxDepth() int {
	if s.MaxDepth <= 0 {
		return pathcodec.MaxDepth
	}
	return s.MaxDepth
}

func (s *Store) likeTTL() int64 {
	if s.LikeTTL <= 0 {
		return 600
	}
	return int64(s.LikeTTL / time.Second)
}

func (s *Store) publish(ctx context.Context, topic string, key int64, v any) {
	if s.Producer == nil || topic == "" {
		return
	}
	logger := util.SetTrace(ctx, s.log())
	value, err := json.Marshal(v)
	if err != nil {
		logger.Error("marshal kafka msg json:" + err.Error())
		return
	}
	message := sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(key, 10)),
		Value: sarama.ByteEncoder(value),
	}
	if _, _, err = s.Producer.SendMessage(&message); err != nil {
		logger.Error("send msg to kafka:"+err.Error(), "topic", topic)
	}
}

func (s *Store) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func toModel(record database.Comment, author database.Profile) model.Comment {
	return model.Comment{
		ID:              record.Id,
		PostID:          record.PostId,
		AuthorID:        record.AuthorId,
		Author:          model.Profile{ID: record.AuthorId, Nickname: author.Nickname, AvatarURL: author.AvatarUrl},
		Content:         record.Content,
		CreatedAt:       time.UnixMilli(record.CreatedAt),
		ParentCommentID: record.ParentId,
		RootCommentID:   record.RootId,
		Depth:           record.Depth,
		Path:            record.Path,
		ReplyCount:      record.ReplyCount,
	}
}
