package repository

import (
	"context"
	"errors"
	"time"

	"mindsupport/internal/models"
	"mindsupport/internal/observability"

	"gorm.io/gorm"
)

// SessionSummary is a session listing row with denormalized message details.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"message_count"`
	LastMessage  string    `json:"last_message"`
}

// ChatRepository defines the interface for chat session persistence
type ChatRepository interface {
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, userID uint, sessionID string) (*models.ChatSession, error)
	GetSessionWithMessages(ctx context.Context, userID uint, sessionID string) (*models.ChatSession, error)
	ListSessionSummaries(ctx context.Context, userID uint, limit, offset int) ([]SessionSummary, int64, error)
	DeleteSession(ctx context.Context, userID uint, sessionID string) error
	DeleteAllSessions(ctx context.Context, userID uint) (int64, error)
	History(ctx context.Context, sessionPK uint, lastN int) ([]models.ChatMessage, error)
	AppendExchange(ctx context.Context, sessionPK uint, userMsg, assistantMsg string) error
	CountSessionsUpdatedSince(ctx context.Context, since time.Time) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetSession resolves the external session handle for one user. Sessions
// belonging to other users surface as not found.
func (r *chatRepository) GetSession(ctx context.Context, userID uint, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat session", sessionID)
		}
		return nil, models.NewInternalError(err)
	}
	return &session, nil
}

func (r *chatRepository) GetSessionWithMessages(ctx context.Context, userID uint, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat session", sessionID)
		}
		return nil, models.NewInternalError(err)
	}
	return &session, nil
}

// ListSessionSummaries pages one user's sessions newest-activity-first with
// message counts and the latest message pulled in via subqueries.
func (r *chatRepository) ListSessionSummaries(ctx context.Context, userID uint, limit, offset int) ([]SessionSummary, int64, error) {
	defer observability.TrackQuery("list_summaries", "chat_sessions")()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var summaries []SessionSummary
	err := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Select(`chat_sessions.session_id, chat_sessions.title, chat_sessions.created_at, chat_sessions.updated_at,
			(SELECT COUNT(*) FROM chat_messages WHERE chat_messages.session_id = chat_sessions.id) AS message_count,
			COALESCE((SELECT content FROM chat_messages WHERE chat_messages.session_id = chat_sessions.id
				ORDER BY created_at DESC, id DESC LIMIT 1), '') AS last_message`).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&summaries).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if summaries == nil {
		summaries = []SessionSummary{}
	}
	return summaries, total, nil
}

func (r *chatRepository) DeleteSession(ctx context.Context, userID uint, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.ChatSession
		err := tx.Where("session_id = ? AND user_id = ?", sessionID, userID).
			First(&session).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Chat session", sessionID)
			}
			return models.NewInternalError(err)
		}

		if err := tx.Where("session_id = ?", session.ID).Delete(&models.ChatMessage{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&session).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

// DeleteAllSessions removes every session of the user, messages included,
// and returns how many sessions went away.
func (r *chatRepository) DeleteAllSessions(ctx context.Context, userID uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.ChatSession{}).
			Where("user_id = ?", userID).
			Pluck("id", &ids).Error; err != nil {
			return models.NewInternalError(err)
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("session_id IN ?", ids).Delete(&models.ChatMessage{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Where("user_id = ?", userID).Delete(&models.ChatSession{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// History returns the last lastN messages of the session in chronological
// order.
func (r *chatRepository) History(ctx context.Context, sessionPK uint, lastN int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionPK).
		Order("created_at DESC, id DESC")
	if lastN > 0 {
		query = query.Limit(lastN)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// AppendExchange writes the user turn and the assistant turn in one
// transaction and bumps the session's updated_at, so a session never holds
// half an exchange.
func (r *chatRepository) AppendExchange(ctx context.Context, sessionPK uint, userMsg, assistantMsg string) error {
	defer observability.TrackQuery("append_exchange", "chat_messages")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		turns := []models.ChatMessage{
			{SessionID: sessionPK, Role: models.RoleUser, Content: userMsg},
			{SessionID: sessionPK, Role: models.RoleAssistant, Content: assistantMsg},
		}
		if err := tx.Create(&turns).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.ChatSession{}).
			Where("id = ?", sessionPK).
			Update("updated_at", time.Now()).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *chatRepository) CountSessionsUpdatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("updated_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
