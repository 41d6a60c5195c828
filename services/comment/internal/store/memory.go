package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"Imstagramoo/services/comment/internal/model"
	"Imstagramoo/services/comment/internal/pathcodec"
)

// MemoryStore 进程内存储，排序、回复数和软删除语义与Store一致
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	maxDepth int
	now      func() time.Time

	comments map[int64]*memoryComment
	order    []int64
	profiles map[string]model.Profile
	likes    map[int64]map[string]struct{}
}

type memoryComment struct {
	model.Comment
	deleted bool
}

type MemoryOption func(s *MemoryStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func WithMemoryMaxDepth(depth int) MemoryOption {
	return func(s *MemoryStore) {
		s.maxDepth = depth
	}
}

func NewMemoryStore(options ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		maxDepth: pathcodec.MaxDepth,
		now:      time.Now,
		comments: make(map[int64]*memoryComment),
		profiles: make(map[string]model.Profile),
		likes:    make(map[int64]map[string]struct{}),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *MemoryStore) AddProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

// SetLikes 直接设置帖子的点赞用户
func (s *MemoryStore) SetLikes(postID int64, userIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		users[id] = struct{}{}
	}
	s.likes[postID] = users
}

func (s *MemoryStore) FetchRootComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var roots []model.Comment
	for _, id := range s.order {
		c := s.comments[id]
		if c.deleted || c.PostID != postID || c.Kind() != model.KindRoot {
			continue
		}
		roots = append(roots, s.join(c.Comment))
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].ReplyCount < roots[j].ReplyCount
	})
	return roots, nil
}

func (s *MemoryStore) FetchReplyComments(ctx context.Context, postID, rootID int64, from, to int) ([]model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if from < 0 || to < from {
		return nil, errors.Errorf("invalid range [%d, %d]", from, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var replies []model.Comment
	index := 0
	for _, id := range s.order {
		c := s.comments[id]
		if c.deleted || c.PostID != postID || c.RootCommentID != rootID || c.Kind() != model.KindReply {
			continue
		}
		if index >= from && index <= to {
			replies = append(replies, s.join(c.Comment))
		}
		index++
	}
	return replies, nil
}

func (s *MemoryStore) FetchLikeState(ctx context.Context, postID int64, userID string) (model.LikeState, error) {
	if err := ctx.Err(); err != nil {
		return model.LikeState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likeState(postID, userID), nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, in model.CreateInput) (model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return model.Comment{}, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return model.Comment{}, errors.WithStack(model.ErrInvalidContent)
	}
	if in.Depth < 0 || in.Depth > s.maxDepth {
		return model.Comment{}, errors.Wrapf(model.ErrDepthExceeded, "depth %d", in.Depth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var root *memoryComment
	if in.RootCommentID != 0 {
		var ok bool
		root, ok = s.comments[in.RootCommentID]
		if !ok || root.deleted || root.PostID != in.PostID {
			return model.Comment{}, errors.Wrapf(model.ErrNotFound, "root comment %d", in.RootCommentID)
		}
		if parent, ok := s.comments[in.ParentCommentID]; !ok || parent.deleted {
			return model.Comment{}, errors.Wrapf(model.ErrNotFound, "parent comment %d", in.ParentCommentID)
		}
	}

	s.nextID++
	c := &memoryComment{Comment: model.Comment{
		ID:              s.nextID,
		PostID:          in.PostID,
		AuthorID:        in.AuthorID,
		Content:         in.Content,
		CreatedAt:       s.now(),
		ParentCommentID: in.ParentCommentID,
		RootCommentID:   in.RootCommentID,
		Depth:           in.Depth,
		Path:            in.Path,
	}}
	s.comments[c.ID] = c
	s.order = append(s.order, c.ID)
	if root != nil {
		root.ReplyCount++
	}
	return s.join(c.Comment), nil
}

// UpdateComment 返回不带作者信息的行
func (s *MemoryStore) UpdateComment(ctx context.Context, id int64, content string) (model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return model.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return model.Comment{}, errors.WithStack(model.ErrInvalidContent)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok || c.deleted {
		return model.Comment{}, errors.Wrapf(model.ErrNotFound, "comment %d", id)
	}
	c.Content = content
	return c.Comment, nil
}

func (s *MemoryStore) DeleteComment(ctx context.Context, id int64) (model.Comment, error) {
	if err := ctx.Err(); err != nil {
		return model.Comment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok || c.deleted {
		return model.Comment{}, errors.Wrapf(model.ErrNotFound, "comment %d", id)
	}
	c.deleted = true
	if root, ok := s.comments[c.RootCommentID]; ok && c.RootCommentID != 0 && root.ReplyCount > 0 {
		root.ReplyCount--
	}
	return s.join(c.Comment), nil
}

func (s *MemoryStore) ToggleLike(ctx context.Context, postID int64, userID string) (model.LikeState, error) {
	if err := ctx.Err(); err != nil {
		return model.LikeState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.likes[postID]
	if !ok {
		users = make(map[string]struct{})
		s.likes[postID] = users
	}
	if _, liked := users[userID]; liked {
		delete(users, userID)
	} else {
		users[userID] = struct{}{}
	}
	return s.likeState(postID, userID), nil
}

func (s *MemoryStore) likeState(postID int64, userID string) model.LikeState {
	users := s.likes[postID]
	_, liked := users[userID]
	return model.LikeState{Count: int64(len(users)), Liked: liked}
}

func (s *MemoryStore) join(c model.Comment) model.Comment {
	if p, ok := s.profiles[c.AuthorID]; ok {
		c.Author = p
	} else {
		c.Author = model.Profile{ID: c.AuthorID}
	}
	return c
}
