package cache

import "fmt"

type SetKind uint8

const (
	RootList SetKind = iota + 1
	ReplyList
)

// Key 结果集的名字，根评论列表按帖子划分，回复列表按根评论划分
type Key struct {
	Kind   SetKind
	PostID int64
	RootID int64
}

func RootKey(postID int64) Key {
	return Key{Kind: RootList, PostID: postID}
}

func ReplyKey(postID, rootID int64) Key {
	return Key{Kind: ReplyList, PostID: postID, RootID: rootID}
}

func (k Key) String() string {
	if k.Kind == RootList {
		return fmt.Sprintf("comment:root:%d", k.PostID)
	}
	return fmt.Sprintf("comment:replies:%d:%d", k.PostID, k.RootID)
}

type LikeKey struct {
	PostID int64
	UserID string
}

func (k LikeKey) String() string {
	return fmt.Sprintf("like:%d:%s", k.PostID, k.UserID)
}
