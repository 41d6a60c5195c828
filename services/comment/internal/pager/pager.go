// Package pager 分页拉取评论并写入规范缓存
package pager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang/groupcache/singleflight"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"

	"Imstagramoo/services/comment/internal/cache"
	"Imstagramoo/services/comment/internal/model"
)

const (
	PageSize = 5
	// 共享拉取的超时时间，与发起方的ctx无关
	FetchTimeout = 3 * time.Second
	// 加载过程中结果集再次失效时的最大重试次数
	maxLoadAttempts = 3
)

// Fetcher 评论存储的读接口
type Fetcher interface {
	// FetchRootComments 按回复数升序
	FetchRootComments(ctx context.Context, postID int64) ([]model.Comment, error)
	// FetchReplyComments 按创建时间升序，[from, to]闭区间
	FetchReplyComments(ctx context.Context, postID, rootID int64, from, to int) ([]model.Comment, error)
	FetchLikeState(ctx context.Context, postID int64, userID string) (model.LikeState, error)
}

type Page struct {
	IDs       []int64
	Exhausted bool
}

type Replies struct {
	Comments         []model.Comment
	HasNextPage      bool
	FetchingNextPage bool
}

type Pager struct {
	cache    *cache.Cache
	fetcher  Fetcher
	size     int
	timeout  time.Duration
	group    singleflight.Group
	fetching cmap.ConcurrentMap[cache.Key, int]
	logger   *slog.Logger
}

type Option func(p *Pager)

// WithPageSize 默认5
func WithPageSize(size int) Option {
	if size <= 0 {
		panic("invalid page size")
	}
	return func(p *Pager) {
		p.size = size
	}
}

// WithFetchTimeout 默认3s
func WithFetchTimeout(timeout time.Duration) Option {
	if timeout <= 0 {
		panic("invalid fetch timeout")
	}
	return func(p *Pager) {
		p.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pager) {
		p.logger = logger
	}
}

func New(c *cache.Cache, fetcher Fetcher, options ...Option) *Pager {
	p := &Pager{
		cache:    c,
		fetcher:  fetcher,
		size:     PageSize,
		timeout:  FetchTimeout,
		fetching: cmap.NewStringer[cache.Key, int](),
		logger:   slog.Default(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *Pager) Size() int {
	return p.size
}

// Page 拉取根评论下第cursor页回复，评论写入byID，只返回id
func (p *Pager) Page(ctx context.Context, postID, rootID int64, cursor int) (Page, error) {
	if cursor < 0 {
		return Page{}, errors.Errorf("invalid cursor %d", cursor)
	}
	return p.fetch(ctx, postID, rootID, cursor*p.size)
}

// fetch 从第from条开始拉取一页
func (p *Pager) fetch(ctx context.Context, postID, rootID int64, from int) (Page, error) {
	comments, err := p.fetcher.FetchReplyComments(ctx, postID, rootID, from, from+p.size-1)
	if err != nil {
		return Page{}, errors.Wrapf(model.Transport("fetch replies", err), "post %d root %d from %d", postID, rootID, from)
	}
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		p.cache.Upsert(c)
		ids = append(ids, c.ID)
	}
	return Page{IDs: ids, Exhausted: len(comments) < p.size}, nil
}

// Replies 回复列表不存在或已失效时整体重新加载第一页，然后经byID解析
func (p *Pager) Replies(ctx context.Context, postID, rootID int64) (Replies, error) {
	key := cache.ReplyKey(postID, rootID)
	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		set, ok := p.cache.Set(key)
		if ok && set.Fetched() && !set.Stale {
			break
		}
		gen := set.Generation
		_, err := p.group.Do(flightKey(key, 0, gen), func() (interface{}, error) {
			shared, cancel := p.detach(ctx)
			defer cancel()
			page, err := p.fetch(shared, postID, rootID, 0)
			if err != nil {
				return nil, err
			}
			if !p.cache.Replace(key, gen, page.IDs, page.Exhausted) {
				p.logger.Debug("discard replaced reply page", "key", key.String(), "generation", gen)
			}
			return nil, nil
		})
		if err != nil {
			return Replies{}, err
		}
	}
	return p.replies(key), nil
}

// Next 追加下一页，拉取偏移取已解析的id数，页号只用于校验
func (p *Pager) Next(ctx context.Context, postID, rootID int64) (Replies, error) {
	key := cache.ReplyKey(postID, rootID)
	set, ok := p.cache.Set(key)
	if !ok || !set.Fetched() || set.Stale {
		return p.Replies(ctx, postID, rootID)
	}
	if set.Exhausted {
		return p.replies(key), nil
	}

	cursor, from, gen := set.Cursor(), set.Len(), set.Generation
	p.begin(key)
	_, err := p.group.Do(flightKey(key, from, gen), func() (interface{}, error) {
		shared, cancel := p.detach(ctx)
		defer cancel()
		page, err := p.fetch(shared, postID, rootID, from)
		if err != nil {
			return nil, err
		}
		if !p.cache.Append(key, gen, cursor, from, page.IDs, page.Exhausted) {
			p.logger.Debug("discard reply page", "key", key.String(), "cursor", cursor, "from", from, "generation", gen)
		}
		return nil, nil
	})
	p.done(key)
	if err != nil {
		return Replies{}, err
	}
	return p.replies(key), nil
}

func (p *Pager) begin(key cache.Key) {
	p.fetching.Upsert(key, 1, func(exist bool, valueInMap, newValue int) int {
		return valueInMap + newValue
	})
}

func (p *Pager) done(key cache.Key) {
	p.fetching.Upsert(key, 0, func(exist bool, valueInMap, _ int) int {
		return valueInMap - 1
	})
	p.fetching.RemoveCb(key, func(_ cache.Key, v int, exists bool) bool {
		return exists && v <= 0
	})
}

func (p *Pager) replies(key cache.Key) Replies {
	comments, set, _ := p.cache.Resolve(key)
	fetching, _ := p.fetching.Get(key)
	return Replies{
		Comments:         comments,
		HasNextPage:      set.Fetched() && !set.Exhausted,
		FetchingNextPage: fetching > 0,
	}
}

// Fetching 该回复列表是否有进行中的下一页请求
func (p *Pager) Fetching(postID, rootID int64) bool {
	n, _ := p.fetching.Get(cache.ReplyKey(postID, rootID))
	return n > 0
}

// Roots 根评论列表不存在或已失效时重新加载
func (p *Pager) Roots(ctx context.Context, postID int64) ([]model.Comment, error) {
	key := cache.RootKey(postID)
	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		set, ok := p.cache.Set(key)
		if ok && set.Fetched() && !set.Stale {
			break
		}
		gen := set.Generation
		_, err := p.group.Do(flightKey(key, 0, gen), func() (interface{}, error) {
			shared, cancel := p.detach(ctx)
			defer cancel()
			comments, err := p.fetcher.FetchRootComments(shared, postID)
			if err != nil {
				return nil, errors.Wrapf(model.Transport("fetch root comments", err), "post %d", postID)
			}
			ids := make([]int64, 0, len(comments))
			for _, c := range comments {
				p.cache.Upsert(c)
				ids = append(ids, c.ID)
			}
			if !p.cache.Replace(key, gen, ids, true) {
				p.logger.Debug("discard root list", "key", key.String(), "generation", gen)
			}
			return nil, nil
		})
		if err != nil {
			return nil, err
		}
	}
	comments, _, _ := p.cache.Resolve(key)
	return comments, nil
}

// Like 加载点赞状态，已缓存时直接返回
func (p *Pager) Like(ctx context.Context, postID int64, userID string) (model.LikeState, error) {
	if state, ok := p.cache.Like(postID, userID); ok {
		return state, nil
	}
	key := cache.LikeKey{PostID: postID, UserID: userID}.String()
	res, err := p.group.Do(key, func() (interface{}, error) {
		shared, cancel := p.detach(ctx)
		defer cancel()
		state, err := p.fetcher.FetchLikeState(shared, postID, userID)
		if err != nil {
			return nil, errors.Wrapf(model.Transport("fetch like state", err), "post %d", postID)
		}
		return p.cache.SeedLike(postID, userID, state), nil
	})
	if err != nil {
		return model.LikeState{}, err
	}
	return res.(model.LikeState), nil
}

// detach 共享拉取使用独立的超时，第一个调用方取消不影响合并进来的调用方
func (p *Pager) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
}

func flightKey(key cache.Key, from int, gen uint64) string {
	return fmt.Sprintf("%s:%d:%d", key, from, gen)
}
