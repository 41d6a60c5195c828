// Package mutation 执行评论写操作，并决定哪些缓存结果集需要失效或局部修改
package mutation

import (
	"context"
	"log/slog"
	"strings"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"

	"Imstagramoo/services/comment/internal/cache"
	"Imstagramoo/services/comment/internal/model"
	"Imstagramoo/services/comment/internal/pathcodec"
)

// Writer 评论存储的写接口
type Writer interface {
	CreateComment(ctx context.Context, in model.CreateInput) (model.Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) (model.Comment, error)
	// DeleteComment 返回被删除的记录
	DeleteComment(ctx context.Context, id int64) (model.Comment, error)
	// ToggleLike 原子翻转，返回服务端的最新状态
	ToggleLike(ctx context.Context, postID int64, userID string) (model.LikeState, error)
}

// LikeLoader 点赞状态不在缓存中时用于加载
type LikeLoader interface {
	Like(ctx context.Context, postID int64, userID string) (model.LikeState, error)
}

type CreateRequest struct {
	PostID   int64
	AuthorID string
	Content  string
	// ParentCommentID 为0时创建根评论
	ParentCommentID int64
}

type Coordinator struct {
	cache    *cache.Cache
	writer   Writer
	loader   LikeLoader
	maxDepth int
	lanes    cmap.ConcurrentMap[cache.LikeKey, *lane]
	logger   *slog.Logger
}

type Option func(c *Coordinator)

func WithMaxDepth(depth int) Option {
	if depth <= 0 {
		panic("invalid max depth")
	}
	return func(c *Coordinator) {
		c.maxDepth = depth
	}
}

func WithLikeLoader(loader LikeLoader) Option {
	return func(c *Coordinator) {
		c.loader = loader
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func New(c *cache.Cache, writer Writer, options ...Option) *Coordinator {
	m := &Coordinator{
		cache:    c,
		writer:   writer,
		maxDepth: pathcodec.MaxDepth,
		lanes:    cmap.NewStringer[cache.LikeKey, *lane](),
		logger:   slog.Default(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Create 回复的父评论必须已在缓存中，路径和深度由父评论计算
func (m *Coordinator) Create(ctx context.Context, req CreateRequest) (model.Comment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return model.Comment{}, errors.WithStack(model.ErrInvalidContent)
	}

	in := model.CreateInput{
		PostID:   req.PostID,
		AuthorID: req.AuthorID,
		Content:  req.Content,
	}
	if req.ParentCommentID != 0 {
		parent, ok := m.cache.Get(req.ParentCommentID)
		if !ok || parent.PostID != req.PostID {
			return model.Comment{}, errors.Wrapf(model.ErrNotFound, "parent comment %d", req.ParentCommentID)
		}
		path, depth, err := pathcodec.Next(parent.Path, parent.Depth, parent.ID, m.maxDepth)
		if err != nil {
			return model.Comment{}, err
		}
		in.ParentCommentID = parent.ID
		in.RootCommentID = parent.ThreadID()
		in.Depth = depth
		in.Path = path
	}

	created, err := m.writer.CreateComment(ctx, in)
	if err != nil {
		m.logger.Error("create comment:"+err.Error(), "post", req.PostID, "parent", req.ParentCommentID)
		return model.Comment{}, errors.Wrapf(model.Transport("create comment", err), "post %d", req.PostID)
	}

	m.cache.Upsert(created)
	if created.Kind() == model.KindRoot {
		m.cache.Invalidate(cache.RootKey(created.PostID))
	} else {
		m.cache.Invalidate(cache.ReplyKey(created.PostID, created.RootCommentID))
	}
	m.logger.Debug("comment created", "id", created.ID, "depth", created.Depth, "path", created.Path)
	return created, nil
}

// Update 只修改内容，不改变任何结果集
func (m *Coordinator) Update(ctx context.Context, id int64, content string) (model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return model.Comment{}, errors.WithStack(model.ErrInvalidContent)
	}
	updated, err := m.writer.UpdateComment(ctx, id, content)
	if err != nil {
		m.logger.Error("update comment:"+err.Error(), "id", id)
		return model.Comment{}, errors.Wrapf(model.Transport("update comment", err), "comment %d", id)
	}
	return m.cache.UpsertContent(updated), nil
}

// Delete 删除根评论使根评论列表及其回复列表失效，删除回复只从其回复列表中移除
func (m *Coordinator) Delete(ctx context.Context, id int64) (model.Comment, error) {
	target, ok := m.cache.Get(id)
	if !ok {
		return model.Comment{}, errors.Wrapf(model.ErrNotFound, "comment %d not cached", id)
	}
	replies := cache.ReplyKey(target.PostID, target.ThreadID())
	if target.Kind() == model.KindReply {
		if set, ok := m.cache.Set(replies); !ok || !set.Fetched() {
			return model.Comment{}, errors.Wrapf(model.ErrNotFound, "replies of comment %d not fetched", target.RootCommentID)
		}
	}

	deleted, err := m.writer.DeleteComment(ctx, id)
	if err != nil {
		m.logger.Error("delete comment:"+err.Error(), "id", id)
		return model.Comment{}, errors.Wrapf(model.Transport("delete comment", err), "comment %d", id)
	}

	m.cache.Remove(id)
	if target.Kind() == model.KindRoot {
		// 根评论下已加载的回复一并移出byID
		if set, ok := m.cache.Set(replies); ok {
			for _, reply := range set.IDs() {
				m.cache.Remove(reply)
			}
			m.cache.Invalidate(replies)
		}
		m.cache.Invalidate(cache.RootKey(target.PostID))
		return deleted, nil
	}
	if err = m.cache.RemoveFromSet(replies, id); err != nil {
		return deleted, err
	}
	return deleted, nil
}
