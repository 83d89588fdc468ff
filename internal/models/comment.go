package models

import "time"

// Comment is an anonymous reply on a post. Like posts, the alias is frozen
// at creation. Comments are append-only; there is no edit or delete path.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	UserID      uint      `gorm:"not null" json:"-"`
	AnonymousID string    `gorm:"not null" json:"anonymous_id"`
	Content     string    `gorm:"not null" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
