package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Imstagramoo/services/comment/internal/model"
)

func TestMemoryStoreReplies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.AddProfile(model.Profile{ID: "u1", Nickname: "alice"})

	root, err := s.CreateComment(ctx, model.CreateInput{PostID: 1, AuthorID: "u1", Content: "root"})
	require.NoError(t, err)
	assert.Equal(t, "alice", root.Author.Nickname)

	var ids []int64
	for i := 0; i < 7; i++ {
		c, err := s.CreateComment(ctx, model.CreateInput{
			PostID: 1, AuthorID: "u1", Content: "reply",
			ParentCommentID: root.ID, RootCommentID: root.ID, Depth: 1, Path: "1",
		})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	first, err := s.FetchReplyComments(ctx, 1, root.ID, 0, 4)
	require.NoError(t, err)
	second, err := s.FetchReplyComments(ctx, 1, root.ID, 5, 9)
	require.NoError(t, err)
	require.Len(t, first, 5)
	require.Len(t, second, 2)
	assert.Equal(t, ids[5], second[0].ID)

	roots, err := s.FetchRootComments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, int64(7), roots[0].ReplyCount)

	_, err = s.DeleteComment(ctx, ids[0])
	require.NoError(t, err)
	roots, _ = s.FetchRootComments(ctx, 1)
	assert.Equal(t, int64(6), roots[0].ReplyCount)
	_, err = s.DeleteComment(ctx, ids[0])
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryStoreRootOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	busy, _ := s.CreateComment(ctx, model.CreateInput{PostID: 1, AuthorID: "u1", Content: "busy"})
	quiet, _ := s.CreateComment(ctx, model.CreateInput{PostID: 1, AuthorID: "u1", Content: "quiet"})
	_, err := s.CreateComment(ctx, model.CreateInput{
		PostID: 1, AuthorID: "u2", Content: "r", ParentCommentID: busy.ID, RootCommentID: busy.ID, Depth: 1, Path: "1",
	})
	require.NoError(t, err)

	roots, err := s.FetchRootComments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, quiet.ID, roots[0].ID)
	assert.Equal(t, busy.ID, roots[1].ID)
}

func TestMemoryStoreValidation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.CreateComment(ctx, model.CreateInput{PostID: 1, Content: "  "})
	assert.ErrorIs(t, err, model.ErrInvalidContent)
	_, err = s.CreateComment(ctx, model.CreateInput{PostID: 1, Content: "x", RootCommentID: 1, ParentCommentID: 1, Depth: 4})
	assert.ErrorIs(t, err, model.ErrDepthExceeded)
	_, err = s.CreateComment(ctx, model.CreateInput{PostID: 1, Content: "x", RootCommentID: 9, ParentCommentID: 9, Depth: 1})
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.UpdateComment(ctx, 9, "x")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryStoreUpdateReturnsBareRow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.AddProfile(model.Profile{ID: "u1", Nickname: "alice"})
	c, _ := s.CreateComment(ctx, model.CreateInput{PostID: 1, AuthorID: "u1", Content: "old"})

	updated, err := s.UpdateComment(ctx, c.ID, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Content)
	assert.Empty(t, updated.Author.Nickname)
}

func TestMemoryStoreToggleLike(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.SetLikes(1, "a", "b", "c")

	state, err := s.FetchLikeState(ctx, 1, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.LikeState{Count: 3}, state)

	state, err = s.ToggleLike(ctx, 1, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.LikeState{Count: 4, Liked: true}, state)
	state, _ = s.ToggleLike(ctx, 1, "u1")
	assert.Equal(t, model.LikeState{Count: 3}, state)
}
