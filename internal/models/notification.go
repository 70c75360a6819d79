package models

import "time"

// Notification types.
const (
	NotificationTypeComment      = "comment"
	NotificationTypeCommentReply = "comment_reply"
)

// Notification is a persisted inbox entry for a single recipient.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index:idx_notifications_inbox,priority:1" json:"userId"`
	User          *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type          string    `gorm:"size:32;not null" json:"type"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Content       string    `gorm:"type:text" json:"content"`
	RelatedPostID *uint     `json:"relatedPostId"`
	RelatedUserID *uint     `json:"relatedUserId"`
	IsRead        bool      `gorm:"not null;default:false;index:idx_notifications_inbox,priority:2" json:"isRead"`
	CreatedAt     time.Time `gorm:"index:idx_notifications_inbox,priority:3" json:"createdAt"`
}

// NotificationPage is one page of a user's inbox.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Unread        int64          `json:"unread"`
	Page          int            `json:"page"`
}
