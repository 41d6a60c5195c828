package database

import "time"

// Comment 若RootId==0 则该评论为根评论
// Path 为从根评论开始的祖先id序列，以"."分隔，不包含自身
type Comment struct {
	Id         int64 `gorm:"PRIMARY_KEY;autoIncrement:false"`
	PostId     int64 `gorm:"not null;index:time,priority:10;index:hot,priority:10"`
	RootId     int64 `gorm:"not null;index:time,priority:20;index:hot,priority:20"`
	Status     int   `gorm:"not null;index:time,priority:30;index:hot,priority:30"`
	CreatedAt  int64 `gorm:"not null;index:time,priority:40;autoCreateTime:milli"`
	ReplyCount int64 `gorm:"not null;index:hot,priority:40;default:0"`

	AuthorId  string    `gorm:"not null;size:36;index"`
	ParentId  int64     `gorm:"not null;default:0"`
	Depth     int       `gorm:"not null;default:0"`
	Path      string    `gorm:"not null;size:255"`
	Content   string    `gorm:"not null;size:2048"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

const (
	CommentStatusCommon = 1
	CommentStatusDelete = 2
)

// Profile 评论作者，昵称用于回复的@展示
type Profile struct {
	Id        string    `gorm:"PRIMARY_KEY;size:36"`
	Nickname  string    `gorm:"not null;size:64"`
	AvatarUrl string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
