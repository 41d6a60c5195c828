package logic

import (
	"Imstagramoo/services/comment/internal/model"
	"Imstagramoo/services/comment/internal/tree"
	"Imstagramoo/services/comment/internal/types"
)

func toComment(c model.Comment) *types.Comment {
	return &types.Comment{
		Id:         c.ID,
		PostId:     c.PostID,
		AuthorId:   c.AuthorID,
		AuthorName: c.Author.Nickname,
		AvatarUrl:  c.Author.AvatarURL,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt.UnixMilli(),
		ParentId:   c.ParentCommentID,
		RootId:     c.RootCommentID,
		Depth:      c.Depth,
		Path:       c.Path,
		ReplyCount: c.ReplyCount,
	}
}

// renderForest 每次请求都从缓存重新组装，不保留嵌套结果
func renderForest(f *tree.Forest) []*types.Comment {
	var render func(id int64) *types.Comment
	render = func(id int64) *types.Comment {
		n, _ := f.Node(id)
		c := toComment(n.Comment)
		c.RepliedTo = n.RepliedTo
		for _, child := range n.Children {
			c.Replies = append(c.Replies, render(child))
		}
		return c
	}
	top := f.Top()
	res := make([]*types.Comment, 0, len(top))
	for _, id := range top {
		res = append(res, render(id))
	}
	return res
}
