package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Imstagramoo/services/comment/internal/model"
)

func reply(id, parent int64, depth int, path, nickname string) model.Comment {
	return model.Comment{
		ID:              id,
		PostID:          100,
		RootCommentID:   1,
		ParentCommentID: parent,
		Depth:           depth,
		Path:            path,
		Author:          model.Profile{ID: nickname, Nickname: nickname},
	}
}

// 1 <- A(10) <- B(20) <- C(30), D(40)回复C后平铺挂在B下
func thread() []model.Comment {
	return []model.Comment{
		reply(10, 1, 1, "1", "alice"),
		reply(20, 10, 2, "1.10", "bob"),
		reply(30, 20, 3, "1.10.20", "carol"),
		reply(40, 30, 3, "1.10.20", "dave"),
		reply(11, 1, 1, "1", "erin"),
	}
}

func TestBuildThread(t *testing.T) {
	f := Build(thread())

	assert.Equal(t, []int64{10, 11}, f.Top())
	assert.Equal(t, []int64{20}, f.Children(10))
	assert.Equal(t, []int64{30, 40}, f.Children(20))
	assert.Equal(t, 5, f.Len())

	b, ok := f.Node(20)
	require.True(t, ok)
	assert.Equal(t, "alice", b.RepliedTo)
	assert.Equal(t, model.KindReply, b.Kind)

	d, ok := f.Node(40)
	require.True(t, ok)
	assert.Equal(t, "carol", d.RepliedTo)
}

func TestBuildDeterministic(t *testing.T) {
	input := thread()
	first := Build(input)
	second := Build(input)
	assert.Equal(t, first, second)
}

func TestBuildDropsUnresolved(t *testing.T) {
	input := []model.Comment{
		reply(10, 1, 1, "1", "alice"),
		// 挂载节点21不在当前页中
		reply(22, 21, 2, "1.21", "bob"),
		// 被回复的评论不在当前页中
		reply(23, 99, 2, "1.10", "carol"),
		// 子节点随父节点一起丢弃
		reply(24, 22, 3, "1.21.22", "dave"),
		reply(25, 10, 2, "1.10", "erin"),
	}
	f := Build(input)

	assert.Equal(t, []int64{10}, f.Top())
	assert.Equal(t, []int64{25}, f.Children(10))
	assert.Equal(t, 2, f.Len())
	_, ok := f.Node(24)
	assert.False(t, ok)
}

func TestBuildCycleIsDropped(t *testing.T) {
	input := []model.Comment{
		reply(10, 20, 2, "1.20", "alice"),
		reply(20, 10, 2, "1.10", "bob"),
	}
	f := Build(input)
	assert.Empty(t, f.Top())
	assert.Equal(t, 0, f.Len())
}

func TestWalk(t *testing.T) {
	f := Build(thread())

	var visited []int64
	var levels []int
	f.Walk(func(n *NestedComment, level int) bool {
		visited = append(visited, n.ID)
		levels = append(levels, level)
		return true
	})
	assert.Equal(t, []int64{10, 20, 30, 40, 11}, visited)
	assert.Equal(t, []int{0, 1, 2, 2, 0}, levels)

	visited = visited[:0]
	f.Walk(func(n *NestedComment, level int) bool {
		visited = append(visited, n.ID)
		return n.ID != 20
	})
	assert.Equal(t, []int64{10, 20}, visited)
}
