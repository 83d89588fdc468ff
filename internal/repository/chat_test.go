package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindsupport/internal/models"
)

func mustCreateSession(t *testing.T, userID uint, title string) *models.ChatSession {
	t.Helper()
	session := &models.ChatSession{
		SessionID: uuid.NewString(),
		UserID:    userID,
		Title:     title,
	}
	require.NoError(t, NewChatRepository(testDB).CreateSession(context.Background(), session))
	return session
}

func TestChatRepository_SessionOwnership(t *testing.T) {
	cleanTables(t)
	repo := NewChatRepository(testDB)
	ctx := context.Background()

	owner := mustCreateUser(t, "owner@example.com", "2021-901")
	stranger := mustCreateUser(t, "stranger@example.com", "2021-902")
	session := mustCreateSession(t, owner.ID, "first session")

	got, err := repo.GetSession(ctx, owner.ID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	// Someone else's handle reads as not found, not forbidden
	_, err = repo.GetSession(ctx, stranger.ID, session.SessionID)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestChatRepository_AppendExchangeAndHistory(t *testing.T) {
	cleanTables(t)
	repo := NewChatRepository(testDB)
	ctx := context.Background()

	owner := mustCreateUser(t, "owner2@example.com", "2021-903")
	session := mustCreateSession(t, owner.ID, "exchange test")

	require.NoError(t, repo.AppendExchange(ctx, session.ID, "I feel stressed", "That sounds heavy."))
	require.NoError(t, repo.AppendExchange(ctx, session.ID, "It's the deadlines", "Let's break them down."))

	history, err := repo.History(ctx, session.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "I feel stressed", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[3].Role)
	assert.Equal(t, "Let's break them down.", history[3].Content)

	// Bounded history keeps the most recent turns, still chronological
	history, err = repo.History(ctx, session.ID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "It's the deadlines", history[0].Content)
	assert.Equal(t, "Let's break them down.", history[1].Content)

	// Full session read returns ordered messages
	full, err := repo.GetSessionWithMessages(ctx, owner.ID, session.SessionID)
	require.NoError(t, err)
	require.Len(t, full.Messages, 4)
	assert.Equal(t, "I feel stressed", full.Messages[0].Content)
}

func TestChatRepository_SessionSummaries_RecencyOrder(t *testing.T) {
	cleanTables(t)
	repo := NewChatRepository(testDB)
	ctx := context.Background()

	owner := mustCreateUser(t, "owner3@example.com", "2021-904")
	old := mustCreateSession(t, owner.ID, "older session")
	recent := mustCreateSession(t, owner.ID, "newer session")

	// Spread updated_at apart explicitly; sqlite timestamps can collide
	require.NoError(t, testDB.Model(&models.ChatSession{}).Where("id = ?", old.ID).
		Update("updated_at", time.Now().Add(-time.Hour)).Error)
	require.NoError(t, testDB.Model(&models.ChatSession{}).Where("id = ?", recent.ID).
		Update("updated_at", time.Now()).Error)

	sessions, total, err := repo.ListSessionSummaries(ctx, owner.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, sessions, 2)
	assert.Equal(t, "newer session", sessions[0].Title)

	// Touching the old session moves it to the front
	require.NoError(t, repo.AppendExchange(ctx, old.ID, "hello again", "welcome back"))
	sessions, _, err = repo.ListSessionSummaries(ctx, owner.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "older session", sessions[0].Title)
}

func TestChatRepository_DeleteSession(t *testing.T) {
	cleanTables(t)
	repo := NewChatRepository(testDB)
	ctx := context.Background()

	owner := mustCreateUser(t, "owner4@example.com", "2021-905")
	stranger := mustCreateUser(t, "stranger2@example.com", "2021-906")
	session := mustCreateSession(t, owner.ID, "to be deleted")
	require.NoError(t, repo.AppendExchange(ctx, session.ID, "hi", "hello"))

	// Not the owner's to delete
	err := repo.DeleteSession(ctx, stranger.ID, session.SessionID)
	require.Error(t, err)

	require.NoError(t, repo.DeleteSession(ctx, owner.ID, session.SessionID))

	_, err = repo.GetSession(ctx, owner.ID, session.SessionID)
	require.Error(t, err)

	// Messages went with the session
	var count int64
	require.NoError(t, testDB.Model(&models.ChatMessage{}).Where("session_id = ?", session.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestChatRepository_ListSessionSummaries(t *testing.T) {
	cleanTables(t)
	repo := NewChatRepository(testDB)
	ctx := context.Background()

	owner := mustCreateUser(t, "owner6@example.com", "2021-908")
	quiet := mustCreateSession(t, owner.ID, "quiet session")
	busy := mustCreateSession(t, owner.ID, "busy session")
	require.NoError(t, repo.AppendExchange(ctx, busy.ID, "first question", "first answer"))
	require.NoError(t, repo.AppendExchange(ctx, busy.ID, "second question", "second answer"))

	require.NoError(t, testDB.Model(&models.ChatSession{}).Where("id = ?", quiet.ID).
		Update("updated_at", time.Now().Add(-time.Hour)).Error)

	summaries, total, err := repo.ListSessionSummaries(ctx, owner.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, summaries, 2)

	assert.Equal(t, busy.SessionID, summaries[0].SessionID)
	assert.EqualValues(t, 4, summaries[0].MessageCount)
	assert.Equal(t, "second answer", summaries[0].LastMessage)

	assert.Equal(t, quiet.SessionID, summaries[1].SessionID)
	assert.EqualValues(t, 0, summaries[1].MessageCount)
	assert.Empty(t, summaries[1].LastMessage)
}

func TestChatRepository_DeleteAllSessions(t *testing.T) {
	cleanTables(t)
	repo := NewChatRepository(testDB)
	ctx := context.Background()

	owner := mustCreateUser(t, "owner7@example.com", "2021-909")
	bystander := mustCreateUser(t, "bystander@example.com", "2021-910")
	first := mustCreateSession(t, owner.ID, "one")
	mustCreateSession(t, owner.ID, "two")
	kept := mustCreateSession(t, bystander.ID, "keep me")
	require.NoError(t, repo.AppendExchange(ctx, first.ID, "hi", "hello"))

	deleted, err := repo.DeleteAllSessions(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var sessions, messages int64
	require.NoError(t, testDB.Model(&models.ChatSession{}).Count(&sessions).Error)
	require.NoError(t, testDB.Model(&models.ChatMessage{}).Count(&messages).Error)
	assert.EqualValues(t, 1, sessions)
	assert.EqualValues(t, 0, messages)

	// The other user's session is untouched
	_, err = repo.GetSession(ctx, bystander.ID, kept.SessionID)
	require.NoError(t, err)

	// Deleting nothing reports zero
	deleted, err = repo.DeleteAllSessions(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)
}

func TestChatRepository_CountSessionsUpdatedSince(t *testing.T) {
	cleanTables(t)
	repo := NewChatRepository(testDB)
	ctx := context.Background()

	owner := mustCreateUser(t, "owner5@example.com", "2021-907")
	for i := 0; i < 3; i++ {
		mustCreateSession(t, owner.ID, fmt.Sprintf("session %d", i))
	}

	// Push one session into yesterday
	var all []models.ChatSession
	require.NoError(t, testDB.Find(&all).Error)
	require.Len(t, all, 3)
	require.NoError(t, testDB.Model(&models.ChatSession{}).Where("id = ?", all[0].ID).
		Update("updated_at", time.Now().Add(-48*time.Hour)).Error)

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	count, err := repo.CountSessionsUpdatedSince(ctx, midnight)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
