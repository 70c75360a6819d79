// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a forum member.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    string    `json:"avatar"`
	Bio       string    `json:"bio"`
	Tag       string    `gorm:"size:32" json:"tag"`
	Exp       int       `gorm:"not null;default:0" json:"exp"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Author is the nested user shape embedded in comment views.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// PublicProfile is what any visitor can see about a user.
type PublicProfile struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Avatar       string    `json:"avatar"`
	Bio          string    `json:"bio"`
	Tag          string    `json:"tag"`
	Exp          int       `json:"exp"`
	Level        int       `json:"level"`
	JoinDate     time.Time `json:"joinDate"`
	PostCount    int64     `json:"postCount"`
	CommentCount int64     `json:"commentCount"`
}

// OwnProfile is the signed-in user's view of themselves.
type OwnProfile struct {
	PublicProfile
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updatedAt"`
}
