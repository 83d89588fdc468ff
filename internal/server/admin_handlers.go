package server

import (
	"time"

	"mindsupport/internal/cache"
	"mindsupport/internal/middleware"
	"mindsupport/internal/models"
	"mindsupport/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// postPreviewLen caps the reported-post preview length in runes.
const postPreviewLen = 200

type adminStats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalPosts     int64 `json:"total_posts"`
	PendingReports int64 `json:"pending_reports"`
	ActiveSessions int64 `json:"active_sessions"`
}

// GetAdminStats handles GET /admin/stats. The counts are cached briefly so a
// moderation dashboard polling the endpoint stays cheap.
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	ctx := c.Context()

	var stats adminStats
	err := cache.Aside(ctx, cache.AdminStatsKey(), &stats, cache.AdminStatsTTL, func() error {
		var err error
		if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
			return err
		}
		if stats.TotalPosts, err = s.postRepo.CountActive(ctx); err != nil {
			return err
		}
		if stats.PendingReports, err = s.reportRepo.CountPending(ctx); err != nil {
			return err
		}
		midnight := time.Now().UTC().Truncate(24 * time.Hour)
		stats.ActiveSessions, err = s.chatRepo.CountSessionsUpdatedSince(ctx, midnight)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}

// reportView is a report row with the offending post denormalized to a short
// preview instead of the full object.
type reportView struct {
	ID          uint                `json:"id"`
	PostID      uint                `json:"post_id"`
	Reason      string              `json:"reason"`
	Note        string              `json:"note,omitempty"`
	Status      models.ReportStatus `json:"status"`
	HandledBy   *uint               `json:"handled_by,omitempty"`
	HandledAt   *time.Time          `json:"handled_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	PostPreview string              `json:"post_preview"`
}

func newReportView(r models.Report) reportView {
	preview := "[post deleted]"
	if r.Post != nil && !r.Post.DeletedAt.Valid {
		preview = previewOf(r.Post.Content, postPreviewLen)
	}
	return reportView{
		ID:          r.ID,
		PostID:      r.PostID,
		Reason:      r.Reason,
		Note:        r.Note,
		Status:      r.Status,
		HandledBy:   r.HandledBy,
		HandledAt:   r.HandledAt,
		CreatedAt:   r.CreatedAt,
		PostPreview: preview,
	}
}

// GetAdminReports handles GET /admin/reports
func (s *Server) GetAdminReports(c *fiber.Ctx) error {
	page := parsePage(c)

	status := models.ReportStatus(c.Query("status"))
	switch status {
	case "", models.ReportPending, models.ReportResolved, models.ReportDismissed:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid report status"))
	}

	reports, total, err := s.reportRepo.List(c.Context(), status, page.Limit(), page.Offset())
	if err != nil {
		return respondError(c, err)
	}

	views := make([]reportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, newReportView(r))
	}

	return c.JSON(fiber.Map{
		"reports":   views,
		"total":     total,
		"page":      page.Page,
		"page_size": page.Size,
	})
}

// HandleReport handles PUT /admin/reports/:id?action=resolve|dismiss&delete_post=bool
func (s *Server) HandleReport(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var status models.ReportStatus
	action := c.Query("action")
	switch action {
	case "resolve":
		status = models.ReportResolved
	case "dismiss":
		status = models.ReportDismissed
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Action must be resolve or dismiss"))
	}

	report, err := s.reportRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.reportRepo.Handle(c.Context(), report, status, adminID); err != nil {
		return respondError(c, err)
	}
	observability.ModerationActionsTotal.WithLabelValues(action).Inc()

	// Takedown rides along with resolve; best effort since the post may
	// already be gone.
	if action == "resolve" && c.QueryBool("delete_post") {
		if delErr := s.postRepo.SoftDelete(c.Context(), report.PostID, adminID); delErr != nil {
			middleware.Logger.WarnContext(c.UserContext(), "reported post takedown failed",
				"post_id", report.PostID, "report_id", report.ID, "error", delErr)
		} else {
			observability.ModerationActionsTotal.WithLabelValues("delete_post").Inc()
		}
	}

	return c.JSON(fiber.Map{
		"message": "Report " + string(status),
		"report":  newReportView(*report),
	})
}

// GetAdminUsers handles GET /admin/users
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	page := parsePage(c)
	search := c.Query("search")

	users, total, err := s.userRepo.List(c.Context(), search, page.Limit(), page.Offset())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"users":     users,
		"total":     total,
		"page":      page.Page,
		"page_size": page.Size,
	})
}

// ToggleUserStatus handles PUT /admin/users/:id/toggle-status
func (s *Server) ToggleUserStatus(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if id == adminID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You cannot change your own account status"))
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.userRepo.UpdateColumns(c.Context(), id, map[string]interface{}{
		"is_active": !user.IsActive,
	}); err != nil {
		return respondError(c, err)
	}
	user.IsActive = !user.IsActive

	return c.JSON(user)
}

// ToggleUserAdmin handles PUT /admin/users/:id/make-admin
func (s *Server) ToggleUserAdmin(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if id == adminID && user.IsAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You cannot remove your own admin access"))
	}

	if err := s.userRepo.UpdateColumns(c.Context(), id, map[string]interface{}{
		"is_admin": !user.IsAdmin,
	}); err != nil {
		return respondError(c, err)
	}
	user.IsAdmin = !user.IsAdmin

	return c.JSON(user)
}

// GetAdminPosts handles GET /admin/posts
func (s *Server) GetAdminPosts(c *fiber.Ctx) error {
	page := parsePage(c)
	includeDeleted := c.QueryBool("include_deleted")

	posts, total, err := s.postRepo.ListAdmin(c.Context(), includeDeleted, page.Limit(), page.Offset())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":     posts,
		"total":     total,
		"page":      page.Page,
		"page_size": page.Size,
	})
}

// AdminDeletePost handles DELETE /admin/posts/:id
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postRepo.SoftDelete(c.Context(), id, adminID); err != nil {
		return respondError(c, err)
	}
	observability.ModerationActionsTotal.WithLabelValues("delete_post").Inc()

	return c.JSON(fiber.Map{"message": "Post deleted"})
}
