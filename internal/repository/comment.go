package repository

import (
	"context"

	"mindsupport/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, int64, error)
	AttachPreviews(ctx context.Context, posts []*models.Post, perPost int) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

// AttachPreviews loads the oldest perPost comments for each post in a single
// query. Preload with a limit would cap the total, not the per-post count,
// so the capping happens here.
func (r *commentRepository) AttachPreviews(ctx context.Context, posts []*models.Post, perPost int) error {
	if len(posts) == 0 || perPost <= 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Comments = []models.Comment{}
	}

	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return models.NewInternalError(err)
	}

	for _, c := range comments {
		p := byID[c.PostID]
		if p == nil || len(p.Comments) >= perPost {
			continue
		}
		p.Comments = append(p.Comments, c)
	}
	return nil
}
