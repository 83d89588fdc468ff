package repository

import (
	"context"
	"errors"
	"time"

	"mindsupport/internal/cache"
	"mindsupport/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines the interface for moderation report operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error)
	Handle(ctx context.Context, report *models.Report, status models.ReportStatus, handledBy uint) error
	CountPending(ctx context.Context) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You have already reported this post")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateAdminStats(ctx)
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	// Unscoped preload keeps the post preview visible after a takedown
	err := r.db.WithContext(ctx).
		Preload("Post", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}

// List returns a page of reports, newest first, with the reported post
// preloaded for preview. A non-empty status narrows the listing.
func (r *reportRepository) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var reports []models.Report
	query := r.db.WithContext(ctx).
		Preload("Post", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return reports, total, nil
}

// Handle moves a pending report to a terminal status and records the
// handling moderator. Reports already handled are rejected with Conflict.
func (r *reportRepository) Handle(ctx context.Context, report *models.Report, status models.ReportStatus, handledBy uint) error {
	if report.Status != models.ReportPending {
		return models.NewConflictError("Report has already been handled")
	}

	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", report.ID, models.ReportPending).
		Updates(map[string]interface{}{
			"status":     status,
			"handled_by": handledBy,
			"handled_at": now,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost a race with another moderator
		return models.NewConflictError("Report has already been handled")
	}

	report.Status = status
	report.HandledBy = &handledBy
	report.HandledAt = &now
	cache.InvalidateAdminStats(ctx)
	return nil
}

func (r *reportRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("status = ?", models.ReportPending).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
