package mq

type CommentKafkaJson struct {
	Id        int64  `json:"id"`
	PostId    int64  `json:"post_id"`
	AuthorId  string `json:"author_id"`
	RootId    int64  `json:"root_id"`
	ParentId  int64  `json:"parent_id"`
	Depth     int    `json:"depth"`
	Path      string `json:"path"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

type UpdateCommentKafkaJson struct {
	CommentId int64  `json:"comment_id"`
	PostId    int64  `json:"post_id"`
	Content   string `json:"content"`
}

type DelCommentKafkaJson struct {
	AuthorId  string `json:"author_id"`
	CommentId int64  `json:"comment_id"`
	PostId    int64  `json:"post_id"`
	RootId    int64  `json:"root_id"`
}
