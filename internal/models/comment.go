package models

import "time"

// CommentPageSize is the number of root comments returned per page.
const CommentPageSize = 20

// Comment is a root comment (ParentID nil) or a reply to a root comment.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;index:idx_comments_post_parent_created,priority:1" json:"postId"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ParentID  *uint     `gorm:"index:idx_comments_post_parent_created,priority:2;index:idx_comments_parent_created,priority:1" json:"parentId"`
	Parent    *Comment  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	LikeCount int       `gorm:"not null;default:0" json:"likeCount"`
	CreatedAt time.Time `gorm:"index:idx_comments_post_parent_created,priority:3;index:idx_comments_parent_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsRoot reports whether the comment is a top-level comment.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// CommentView is the formatted shape returned by the API.
type CommentView struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	Author    Author         `json:"author"`
	PostID    uint           `json:"postId"`
	ParentID  *uint          `json:"parentId"`
	LikeCount int            `json:"likeCount"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Replies   []*CommentView `json:"replies"`
}

// CommentPage is one page of root comments with their replies.
type CommentPage struct {
	Comments []*CommentView
	Total    int64
	Page     int
}

// NewCommentView formats a comment with its preloaded author and no replies.
func NewCommentView(c *Comment) *CommentView {
	return &CommentView{
		ID:      c.ID,
		Content: c.Content,
		Author: Author{
			ID:       c.Author.ID,
			Username: c.Author.Username,
			Avatar:   c.Author.Avatar,
		},
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		LikeCount: c.LikeCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Replies:   []*CommentView{},
	}
}
