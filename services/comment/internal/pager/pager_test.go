package pager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Imstagramoo/services/comment/internal/cache"
	"Imstagramoo/services/comment/internal/model"
	"Imstagramoo/services/comment/internal/store"
)

// gatedFetcher 统计拉取次数，gate非空时回复拉取会阻塞到gate关闭
type gatedFetcher struct {
	*store.MemoryStore
	replyCalls atomic.Int32
	started    chan struct{}
	gate       chan struct{}
	err        error
}

func (f *gatedFetcher) FetchReplyComments(ctx context.Context, postID, rootID int64, from, to int) ([]model.Comment, error) {
	f.replyCalls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.MemoryStore.FetchReplyComments(ctx, postID, rootID, from, to)
}

func seedThread(t *testing.T, s *store.MemoryStore, replies int) (model.Comment, []int64) {
	t.Helper()
	ctx := context.Background()
	s.AddProfile(model.Profile{ID: "u1", Nickname: "alice"})
	root, err := s.CreateComment(ctx, model.CreateInput{PostID: 1, AuthorID: "u1", Content: "root"})
	require.NoError(t, err)
	ids := make([]int64, 0, replies)
	for i := 0; i < replies; i++ {
		c, err := s.CreateComment(ctx, model.CreateInput{
			PostID: 1, AuthorID: "u1", Content: "reply",
			ParentCommentID: root.ID, RootCommentID: root.ID, Depth: 1, Path: "1",
		})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	return root, ids
}

func ids(comments []model.Comment) []int64 {
	res := make([]int64, 0, len(comments))
	for _, c := range comments {
		res = append(res, c.ID)
	}
	return res
}

func TestPage(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	root, all := seedThread(t, s, 7)
	c := cache.New()
	p := New(c, s)

	first, err := p.Page(ctx, 1, root.ID, 0)
	require.NoError(t, err)
	assert.Len(t, first.IDs, 5)
	assert.False(t, first.Exhausted)

	second, err := p.Page(ctx, 1, root.ID, 1)
	require.NoError(t, err)
	assert.Len(t, second.IDs, 2)
	assert.True(t, second.Exhausted)

	assert.Equal(t, all, append(first.IDs, second.IDs...))
	assert.Equal(t, 7, c.Len())
	// Page不修改结果集
	_, ok := c.Set(cache.ReplyKey(1, root.ID))
	assert.False(t, ok)
}

func TestRepliesAndNext(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	root, all := seedThread(t, s, 7)
	p := New(cache.New(), s)

	replies, err := p.Replies(ctx, 1, root.ID)
	require.NoError(t, err)
	assert.Equal(t, all[:5], ids(replies.Comments))
	assert.True(t, replies.HasNextPage)
	assert.False(t, replies.FetchingNextPage)

	replies, err = p.Next(ctx, 1, root.ID)
	require.NoError(t, err)
	assert.Equal(t, all, ids(replies.Comments))
	assert.False(t, replies.HasNextPage)

	// 拉完之后不再请求
	replies, err = p.Next(ctx, 1, root.ID)
	require.NoError(t, err)
	assert.Equal(t, all, ids(replies.Comments))
}

func TestRepliesCached(t *testing.T) {
	ctx := context.Background()
	f := &gatedFetcher{MemoryStore: store.NewMemoryStore()}
	root, _ := seedThread(t, f.MemoryStore, 3)
	c := cache.New()
	p := New(c, f)

	_, err := p.Replies(ctx, 1, root.ID)
	require.NoError(t, err)
	_, err = p.Replies(ctx, 1, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.replyCalls.Load())

	c.Invalidate(cache.ReplyKey(1, root.ID))
	_, err = p.Replies(ctx, 1, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.replyCalls.Load())
}

func TestConcurrentNextNoSkipNoDuplicate(t *testing.T) {
	ctx := context.Background()
	f := &gatedFetcher{MemoryStore: store.NewMemoryStore()}
	root, all := seedThread(t, f.MemoryStore, 12)
	p := New(cache.New(), f)

	_, err := p.Replies(ctx, 1, root.ID)
	require.NoError(t, err)

	f.started = make(chan struct{}, 8)
	f.gate = make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Next(ctx, 1, root.ID)
			assert.NoError(t, err)
		}()
	}
	<-f.started
	assert.True(t, p.Fetching(1, root.ID))
	close(f.gate)
	wg.Wait()

	replies, err := p.Next(ctx, 1, root.ID)
	require.NoError(t, err)
	assert.Equal(t, all, ids(replies.Comments))
	assert.False(t, replies.HasNextPage)
	assert.False(t, replies.FetchingNextPage)
}

func TestInvalidateDuringNextDiscardsPage(t *testing.T) {
	ctx := context.Background()
	f := &gatedFetcher{MemoryStore: store.NewMemoryStore()}
	root, all := seedThread(t, f.MemoryStore, 7)
	c := cache.New()
	p := New(c, f)

	_, err := p.Replies(ctx, 1, root.ID)
	require.NoError(t, err)

	f.started = make(chan struct{}, 1)
	f.gate = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Next(ctx, 1, root.ID)
	}()
	<-f.started
	c.Invalidate(cache.ReplyKey(1, root.ID))
	close(f.gate)
	<-done

	set, _ := c.Set(cache.ReplyKey(1, root.ID))
	assert.True(t, set.Stale)
	assert.Equal(t, all[:5], set.IDs())

	f.started = nil
	replies, err := p.Replies(ctx, 1, root.ID)
	require.NoError(t, err)
	assert.Equal(t, all[:5], ids(replies.Comments))
	assert.True(t, replies.HasNextPage)
}

func TestNextAfterRemoveFromSet(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	root, all := seedThread(t, s, 7)
	c := cache.New()
	p := New(c, s)

	_, err := p.Replies(ctx, 1, root.ID)
	require.NoError(t, err)
	_, err = s.DeleteComment(ctx, all[1])
	require.NoError(t, err)
	c.Remove(all[1])
	require.NoError(t, c.RemoveFromSet(cache.ReplyKey(1, root.ID), all[1]))

	replies, err := p.Next(ctx, 1, root.ID)
	require.NoError(t, err)
	want := append([]int64{all[0]}, all[2:]...)
	assert.Equal(t, want, ids(replies.Comments))
	assert.False(t, replies.HasNextPage)
}

func TestCancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	f := &gatedFetcher{MemoryStore: store.NewMemoryStore()}
	root, all := seedThread(t, f.MemoryStore, 7)
	p := New(cache.New(), f)

	_, err := p.Replies(context.Background(), 1, root.ID)
	require.NoError(t, err)

	f.started = make(chan struct{}, 1)
	f.gate = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Next(ctx, 1, root.ID)
		done <- err
	}()
	<-f.started
	cancel()
	close(f.gate)
	require.NoError(t, <-done)

	f.started = nil
	replies, err := p.Next(context.Background(), 1, root.ID)
	require.NoError(t, err)
	assert.Equal(t, all, ids(replies.Comments))
}

func TestFetchFailure(t *testing.T) {
	ctx := context.Background()
	f := &gatedFetcher{MemoryStore: store.NewMemoryStore(), err: errors.New("connection reset")}
	root, _ := seedThread(t, f.MemoryStore, 2)
	p := New(cache.New(), f)

	_, err := p.Replies(ctx, 1, root.ID)
	assert.ErrorIs(t, err, model.ErrTransportFailure)
}

func TestRoots(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	busy, _ := seedThread(t, s, 2)
	quiet, err := s.CreateComment(ctx, model.CreateInput{PostID: 1, AuthorID: "u1", Content: "quiet"})
	require.NoError(t, err)
	c := cache.New()
	p := New(c, s)

	roots, err := p.Roots(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{quiet.ID, busy.ID}, ids(roots))
	assert.Equal(t, "alice", roots[1].Author.Nickname)

	set, ok := c.Set(cache.RootKey(1))
	require.True(t, ok)
	assert.True(t, set.Exhausted)
}

func TestLike(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	s.SetLikes(1, "a", "b", "c")
	c := cache.New()
	p := New(c, s)

	state, err := p.Like(ctx, 1, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.LikeState{Count: 3}, state)

	c.SetLike(1, "u1", model.LikeState{Count: 4, Liked: true})
	state, err = p.Like(ctx, 1, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.LikeState{Count: 4, Liked: true}, state)
}
