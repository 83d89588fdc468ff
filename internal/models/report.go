package models

import "time"

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report flags a post for moderator review. A reporter may file at most one
// report per post; handling is a one-way transition out of pending.
type Report struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	PostID     uint         `gorm:"not null;uniqueIndex:idx_report_post_reporter" json:"post_id"`
	ReporterID uint         `gorm:"not null;uniqueIndex:idx_report_post_reporter" json:"-"`
	Reason     string       `gorm:"not null" json:"reason"`
	Note       string       `json:"note,omitempty"`
	Status     ReportStatus `gorm:"not null;default:pending" json:"status"`
	HandledBy  *uint        `json:"handled_by,omitempty"`
	HandledAt  *time.Time   `json:"handled_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`

	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
