package server

import (
	"mindsupport/internal/models"
	"mindsupport/internal/observability"
	"mindsupport/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// commentPreviewCount is how many comments ride along with each post in
// listings.
const commentPreviewCount = 3

// GetPosts handles GET /forum/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePage(c)

	mood := models.Mood(c.Query("mood"))
	if mood != "" {
		if err := validation.ValidateMood(mood); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}

	posts, total, err := s.postRepo.List(c.Context(), mood, page.Limit(), page.Offset(), userID)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.commentRepo.AttachPreviews(c.Context(), posts, commentPreviewCount); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":     posts,
		"total":     total,
		"page":      page.Page,
		"page_size": page.Size,
	})
}

// CreatePost handles POST /forum/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string      `json:"content"`
		Mood    models.Mood `json:"mood"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidatePostContent(req.Content); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateMood(req.Mood); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	// Freeze the author's current alias onto the post
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	post := &models.Post{
		UserID:      userID,
		AnonymousID: user.AnonymousID,
		Mood:        req.Mood,
		Content:     req.Content,
	}
	if err := s.postRepo.Create(c.Context(), post); err != nil {
		return respondError(c, err)
	}

	created, err := s.postRepo.GetByID(c.Context(), post.ID, userID)
	if err != nil {
		return respondError(c, err)
	}
	created.Comments = []models.Comment{}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetPost handles GET /forum/posts/:id with the full comment thread.
func (s *Server) GetPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}

	comments, _, err := s.commentRepo.ListByPost(c.Context(), id, -1, 0)
	if err != nil {
		return respondError(c, err)
	}
	post.Comments = comments

	return c.JSON(post)
}

// DeletePost handles DELETE /forum/posts/:id. Only the author may delete;
// anyone else sees the same 404 a missing post produces.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	if post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", id))
	}

	if err := s.postRepo.SoftDelete(c.Context(), id, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ToggleLike handles POST /forum/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postRepo.GetByID(c.Context(), id, userID); err != nil {
		return respondError(c, err)
	}

	liked, err := s.postRepo.IsLiked(c.Context(), userID, id)
	if err != nil {
		return respondError(c, err)
	}

	if liked {
		err = s.postRepo.Unlike(c.Context(), userID, id)
	} else {
		err = s.postRepo.Like(c.Context(), userID, id)
	}
	if err != nil {
		return respondError(c, err)
	}

	count, err := s.postRepo.LikeCount(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"liked":      !liked,
		"like_count": count,
	})
}

// GetComments handles GET /forum/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)

	if _, err := s.postRepo.GetByID(c.Context(), id, userID); err != nil {
		return respondError(c, err)
	}

	comments, total, err := s.commentRepo.ListByPost(c.Context(), id, page.Limit(), page.Offset())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"comments":  comments,
		"total":     total,
		"page":      page.Page,
		"page_size": page.Size,
	})
}

// CreateComment handles POST /forum/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateCommentContent(req.Content); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if _, err := s.postRepo.GetByID(c.Context(), id, userID); err != nil {
		return respondError(c, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	comment := &models.Comment{
		PostID:      id,
		UserID:      userID,
		AnonymousID: user.AnonymousID,
		Content:     req.Content,
	}
	if err := s.commentRepo.Create(c.Context(), comment); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ReportPost handles POST /forum/posts/:id/report
func (s *Server) ReportPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
		Note   string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Reason == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Reason is required"))
	}

	if _, err := s.postRepo.GetByID(c.Context(), id, userID); err != nil {
		return respondError(c, err)
	}

	report := &models.Report{
		PostID:     id,
		ReporterID: userID,
		Reason:     req.Reason,
		Note:       req.Note,
	}
	if err := s.reportRepo.Create(c.Context(), report); err != nil {
		return respondError(c, err)
	}
	observability.ReportsFiledTotal.Inc()

	return c.Status(fiber.StatusCreated).JSON(report)
}
