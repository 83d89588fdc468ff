package models

import (
	"time"

	"gorm.io/gorm"
)

// Mood categorizes a forum post.
type Mood string

const (
	MoodSad        Mood = "Sad"
	MoodNeedAdvice Mood = "NeedAdvice"
	MoodVenting    Mood = "Venting"
	MoodFrustrated Mood = "Frustrated"
	MoodSuccess    Mood = "Success"
)

// ValidMood reports whether m is one of the accepted mood values.
func ValidMood(m Mood) bool {
	switch m {
	case MoodSad, MoodNeedAdvice, MoodVenting, MoodFrustrated, MoodSuccess:
		return true
	}
	return false
}

// Post is an anonymous forum post. AnonymousID is frozen at creation time so
// later alias changes never retroactively relabel old content. The author
// link is kept server-side only.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"-"`
	AnonymousID string         `gorm:"not null" json:"anonymous_id"`
	Mood        Mood           `gorm:"not null" json:"mood"`
	Content     string         `gorm:"not null" json:"content"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy   *uint          `json:"-"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	// Computed on read via subquery.
	LikeCount    int64 `gorm:"->" json:"like_count"`
	CommentCount int64 `gorm:"->" json:"comment_count"`
	Liked        bool  `gorm:"->" json:"liked"`

	// IsDeleted is only surfaced on admin listings that include
	// soft-deleted rows.
	IsDeleted bool `gorm:"-" json:"is_deleted,omitempty"`
}
