// Package models defines the domain models and the error taxonomy.
package models

import (
	"fmt"
	"math/rand"
	"time"
)

// User is a registered student account. The bcrypt hash and the real
// identity fields never appear next to forum content; posts and comments
// carry only the anonymous alias.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"unique;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	FullName    string    `gorm:"not null" json:"full_name"`
	StudentID   string    `gorm:"unique;not null" json:"student_id"`
	AnonymousID string    `gorm:"not null" json:"anonymous_id"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	IsAdmin     bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewAnonymousID generates a fresh display alias. Aliases are not unique;
// collisions between users are accepted.
func NewAnonymousID() string {
	return fmt.Sprintf("Anonymous#%d", 1000+rand.Intn(9000))
}
