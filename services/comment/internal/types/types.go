package types

type Comment struct {
	Id         int64  `json:"id"`
	PostId     int64  `json:"post_id"`
	AuthorId   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	AvatarUrl  string `json:"avatar_url"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
	ParentId   int64  `json:"parent_id"`
	RootId     int64  `json:"root_id"`
	Depth      int    `json:"depth"`
	Path       string `json:"path"`
	ReplyCount int64  `json:"reply_count"`
	// RepliedTo 被回复评论作者的昵称，仅嵌套回复有值
	RepliedTo string     `json:"replied_to,omitempty"`
	Replies   []*Comment `json:"replies,omitempty"`
}

type GetRootCommentsReq struct {
	PostId int64
}

type GetRootCommentsResp struct {
	Comments []*Comment
}

type GetNestedRepliesReq struct {
	PostId int64
	RootId int64
}

type NestedRepliesResp struct {
	Replies          []*Comment
	HasNextPage      bool
	FetchingNextPage bool
}

type CreateCommentReq struct {
	PostId  int64
	UserId  string
	Content string
}

type CreateReplyReq struct {
	PostId   int64
	UserId   string
	ParentId int64
	Content  string
}

type EditCommentReq struct {
	UserId    string
	CommentId int64
	Content   string
}

type DeleteCommentReq struct {
	UserId    string
	CommentId int64
}

type CommentResp struct {
	Comment *Comment
}

type LikeReq struct {
	PostId int64
	UserId string
}

type LikeResp struct {
	LikeCount int64
	IsLiked   bool
}
