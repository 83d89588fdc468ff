package server

import (
	"time"

	"mindsupport/internal/ai"
	"mindsupport/internal/models"
	"mindsupport/internal/observability"
	"mindsupport/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// historyTurns caps how many prior messages are replayed to the
	// generator per exchange.
	historyTurns = 10
	// lastMessagePreviewLen caps the listing preview length in runes.
	lastMessagePreviewLen = 100
)

// SendChatMessage handles POST /chat/message. Without a session_id a new
// session is opened and titled from the first message.
func (s *Server) SendChatMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Content   string `json:"content"`
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateChatMessage(req.Content); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	var session *models.ChatSession
	if req.SessionID != "" {
		existing, err := s.chatRepo.GetSession(c.Context(), userID, req.SessionID)
		if err != nil {
			return respondError(c, err)
		}
		session = existing
	} else {
		session = &models.ChatSession{
			SessionID: uuid.NewString(),
			UserID:    userID,
			Title:     models.SessionTitleFrom(req.Content),
		}
		if err := s.chatRepo.CreateSession(c.Context(), session); err != nil {
			return respondError(c, err)
		}
	}

	history, err := s.chatRepo.History(c.Context(), session.ID, historyTurns)
	if err != nil {
		return respondError(c, err)
	}
	past := make([]ai.Message, 0, len(history))
	for _, m := range history {
		past = append(past, ai.Message{Role: m.Role, Content: m.Content})
	}

	reply, _ := s.responder.Respond(c.Context(), req.Content, past)

	if err := s.chatRepo.AppendExchange(c.Context(), session.ID, req.Content, reply); err != nil {
		return respondError(c, err)
	}
	observability.ChatExchangesTotal.Inc()

	return c.JSON(fiber.Map{
		"content":    reply,
		"session_id": session.SessionID,
		"timestamp":  time.Now().UTC(),
	})
}

// GetChatHistory handles GET /chat/history
func (s *Server) GetChatHistory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePage(c)

	summaries, total, err := s.chatRepo.ListSessionSummaries(c.Context(), userID, page.Limit(), page.Offset())
	if err != nil {
		return respondError(c, err)
	}
	for i := range summaries {
		summaries[i].LastMessage = previewOf(summaries[i].LastMessage, lastMessagePreviewLen)
	}

	return c.JSON(fiber.Map{
		"sessions":  summaries,
		"total":     total,
		"page":      page.Page,
		"page_size": page.Size,
	})
}

// GetChatSession handles GET /chat/history/:id
func (s *Server) GetChatSession(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	sessionID := c.Params("id")

	session, err := s.chatRepo.GetSessionWithMessages(c.Context(), userID, sessionID)
	if err != nil {
		return respondError(c, err)
	}
	if session.Messages == nil {
		session.Messages = []models.ChatMessage{}
	}

	return c.JSON(session)
}

// DeleteChatSession handles DELETE /chat/history/:id
func (s *Server) DeleteChatSession(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	sessionID := c.Params("id")

	if err := s.chatRepo.DeleteSession(c.Context(), userID, sessionID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Chat session deleted"})
}

// DeleteAllChatHistory handles DELETE /chat/history
func (s *Server) DeleteAllChatHistory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	deleted, err := s.chatRepo.DeleteAllSessions(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":       "Chat history cleared",
		"deleted_count": deleted,
	})
}
