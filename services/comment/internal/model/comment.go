package model

import "time"

// Kind 区分根评论和回复，由字段推导，不依赖字段是否存在
type Kind uint8

const (
	KindRoot Kind = iota + 1
	KindReply
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindReply:
		return "reply"
	default:
		return "unknown"
	}
}

type Profile struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

// Comment 评论，RootCommentID==0 则为根评论
type Comment struct {
	ID              int64     `json:"id"`
	PostID          int64     `json:"post_id"`
	AuthorID        string    `json:"author_id"`
	Author          Profile   `json:"author"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	ParentCommentID int64     `json:"parent_comment_id"`
	RootCommentID   int64     `json:"root_comment_id"`
	Depth           int       `json:"depth"`
	Path            string    `json:"path"`
	ReplyCount      int64     `json:"reply_count"`
}

func (c Comment) Kind() Kind {
	if c.RootCommentID == 0 && c.ParentCommentID == 0 && c.Depth == 0 {
		return KindRoot
	}
	return KindReply
}

// ThreadID 该评论所属回复列表的根评论id
func (c Comment) ThreadID() int64 {
	if c.RootCommentID == 0 {
		return c.ID
	}
	return c.RootCommentID
}

// CreateInput 写入存储的新评论，depth和path已由客户端计算
type CreateInput struct {
	PostID          int64
	AuthorID        string
	Content         string
	ParentCommentID int64
	RootCommentID   int64
	Depth           int
	Path            string
}

// LikeState 当前用户视角下某个帖子的点赞状态
type LikeState struct {
	Count int64 `json:"like_count"`
	Liked bool  `json:"is_liked"`
}

// Flip 翻转一次点赞，两次Flip恢复原值
func (s LikeState) Flip() LikeState {
	if s.Liked {
		return LikeState{Count: s.Count - 1, Liked: false}
	}
	return LikeState{Count: s.Count + 1, Liked: true}
}
