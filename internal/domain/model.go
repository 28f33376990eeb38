package domain

import (
	"time"
)

// UserModel mirrors identities seen through the authentication provider.
type UserModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Username  string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserModel) TableName() string { return "users" }

// GroupModel is the GORM model for the post_groups table.
type GroupModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(200);uniqueIndex;not null"`
	Description string `gorm:"type:text"`
}

func (GroupModel) TableName() string { return "post_groups" }

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	AuthorID  string    `gorm:"column:author_id;type:varchar(36);not null;index"`
	GroupID   *uint     `gorm:"column:group_id;index"`
	Image     string    `gorm:"type:varchar(255)"`
}

func (PostModel) TableName() string { return "posts" }

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	PostID    *uint     `gorm:"column:post_id;index"`
	AuthorID  string    `gorm:"column:author_id;type:varchar(36);not null"`
	Text      string    `gorm:"type:varchar(1000);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CommentModel) TableName() string { return "comments" }

// FollowModel is the GORM model for the follows table.
// One row per (user, author) pair.
type FollowModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:uidx_follow_pair"`
	AuthorID  string    `gorm:"column:author_id;type:varchar(36);not null;uniqueIndex:uidx_follow_pair;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (FollowModel) TableName() string { return "follows" }

// Models lists every table the service migrates.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&GroupModel{},
		&PostModel{},
		&CommentModel{},
		&FollowModel{},
	}
}
