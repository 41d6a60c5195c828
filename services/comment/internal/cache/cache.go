// Package cache 评论的客户端规范缓存：按id存放评论，结果集只保存id
package cache

import (
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"

	"Imstagramoo/services/comment/internal/model"
)

type Cache struct {
	byID  cmap.ConcurrentMap[int64, model.Comment]
	sets  cmap.ConcurrentMap[Key, ResultSet]
	likes cmap.ConcurrentMap[LikeKey, model.LikeState]
}

func New() *Cache {
	return &Cache{
		byID:  cmap.NewWithCustomShardingFunction[int64, model.Comment](shard),
		sets:  cmap.NewStringer[Key, ResultSet](),
		likes: cmap.NewStringer[LikeKey, model.LikeState](),
	}
}

func shard(id int64) uint32 {
	// murmur3 fmix64，打散连续的雪花id
	x := uint64(id)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return uint32(x)
}

// Upsert 覆盖byID中的评论，不影响任何结果集
func (c *Cache) Upsert(comment model.Comment) {
	c.byID.Set(comment.ID, comment)
}

// UpsertContent 只替换内容，保留已缓存的作者等字段；未缓存时整体写入
func (c *Cache) UpsertContent(comment model.Comment) model.Comment {
	return c.byID.Upsert(comment.ID, comment, func(exist bool, valueInMap, newValue model.Comment) model.Comment {
		if !exist {
			return newValue
		}
		valueInMap.Content = newValue.Content
		return valueInMap
	})
}

func (c *Cache) Get(id int64) (model.Comment, bool) {
	return c.byID.Get(id)
}

func (c *Cache) Remove(id int64) {
	c.byID.Remove(id)
}

// Len byID中的评论数
func (c *Cache) Len() int {
	return c.byID.Count()
}

func (c *Cache) Set(key Key) (ResultSet, bool) {
	return c.sets.Get(key)
}

// Replace 整体替换为只有第一页的结果集，gen与当前代数不一致时放弃
func (c *Cache) Replace(key Key, gen uint64, ids []int64, exhausted bool) bool {
	replaced := false
	page := append(make([]int64, 0, len(ids)), ids...)
	c.sets.Upsert(key, ResultSet{}, func(exist bool, valueInMap, _ ResultSet) ResultSet {
		if valueInMap.Generation != gen {
			return valueInMap
		}
		replaced = true
		return ResultSet{
			Pages:      [][]int64{page},
			Exhausted:  exhausted,
			Generation: gen + 1,
		}
	})
	return replaced
}

// Append 追加第page页，要求代数一致、未过期、未拉完，page正好是下一页
// 且offset等于当前已加载的id数(拉取期间删除过回复时丢弃)
func (c *Cache) Append(key Key, gen uint64, page, offset int, ids []int64, exhausted bool) bool {
	appended := false
	c.sets.Upsert(key, ResultSet{}, func(exist bool, valueInMap, _ ResultSet) ResultSet {
		if !exist || valueInMap.Stale || valueInMap.Exhausted ||
			valueInMap.Generation != gen || valueInMap.Cursor() != page ||
			valueInMap.Len() != offset {
			return valueInMap
		}
		appended = true
		pages := append(valueInMap.clonePages(), append(make([]int64, 0, len(ids)), ids...))
		return ResultSet{
			Pages:      pages,
			Exhausted:  exhausted,
			Generation: valueInMap.Generation,
		}
	})
	return appended
}

// Invalidate 标记过期并推进代数，进行中的拉取结果将被丢弃
func (c *Cache) Invalidate(key Key) {
	c.sets.Upsert(key, ResultSet{}, func(exist bool, valueInMap, _ ResultSet) ResultSet {
		valueInMap.Stale = true
		valueInMap.Generation++
		return valueInMap
	})
}

// RemoveFromSet 从结果集中移除一个id，结果集从未拉取过时返回ErrNotFound
func (c *Cache) RemoveFromSet(key Key, id int64) error {
	if set, ok := c.sets.Get(key); !ok || !set.Fetched() {
		return errors.Wrapf(model.ErrNotFound, "result set %s not fetched", key)
	}
	c.sets.Upsert(key, ResultSet{}, func(exist bool, valueInMap, _ ResultSet) ResultSet {
		pages := valueInMap.clonePages()
		for i, page := range pages {
			for j, v := range page {
				if v != id {
					continue
				}
				next := make([]int64, 0, len(page)-1)
				next = append(next, page[:j]...)
				next = append(next, page[j+1:]...)
				pages[i] = next
				valueInMap.Pages = pages
				return valueInMap
			}
		}
		return valueInMap
	})
	return nil
}

// Resolve 通过byID解析结果集，已不在byID中的id被跳过
func (c *Cache) Resolve(key Key) ([]model.Comment, ResultSet, bool) {
	set, ok := c.sets.Get(key)
	if !ok || !set.Fetched() {
		return nil, set, false
	}
	comments := make([]model.Comment, 0, set.Len())
	for _, id := range set.IDs() {
		if comment, ok := c.byID.Get(id); ok {
			comments = append(comments, comment)
		}
	}
	return comments, set, true
}

func (c *Cache) Like(postID int64, userID string) (model.LikeState, bool) {
	return c.likes.Get(LikeKey{PostID: postID, UserID: userID})
}

func (c *Cache) SetLike(postID int64, userID string, state model.LikeState) {
	c.likes.Set(LikeKey{PostID: postID, UserID: userID}, state)
}

// SeedLike 只在不存在时写入，返回当前值；已有的乐观状态不会被覆盖
func (c *Cache) SeedLike(postID int64, userID string, state model.LikeState) model.LikeState {
	key := LikeKey{PostID: postID, UserID: userID}
	c.likes.SetIfAbsent(key, state)
	current, _ := c.likes.Get(key)
	return current
}
