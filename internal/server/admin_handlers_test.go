package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"mindsupport/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAdminRequired(t *testing.T) {
	tests := []struct {
		name           string
		user           *models.User
		expectedStatus int
	}{
		{
			name:           "Admin passes",
			user:           &models.User{ID: 1, IsAdmin: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Non-admin forbidden",
			user:           &models.User{ID: 1, IsAdmin: false},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockUsers := new(MockUserRepository)
			mockUsers.On("GetByID", mock.Anything, uint(1)).Return(tt.user, nil)
			s := &Server{config: testConfig(), userRepo: mockUsers}
			withUser(app, 1)
			app.Get("/admin/ping", s.AdminRequired(), func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"ok": true})
			})

			resp, err := app.Test(jsonRequest(t, http.MethodGet, "/admin/ping", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetAdminStats(t *testing.T) {
	app := fiber.New()
	mockUsers := new(MockUserRepository)
	mockPosts := new(MockPostRepository)
	mockReports := new(MockReportRepository)
	mockChat := new(MockChatRepository)
	s := &Server{
		config:     testConfig(),
		userRepo:   mockUsers,
		postRepo:   mockPosts,
		reportRepo: mockReports,
		chatRepo:   mockChat,
	}
	withUser(app, 1)
	app.Get("/admin/stats", s.GetAdminStats)

	mockUsers.On("Count", mock.Anything).Return(int64(12), nil)
	mockPosts.On("CountActive", mock.Anything).Return(int64(34), nil)
	mockReports.On("CountPending", mock.Anything).Return(int64(5), nil)
	mockChat.On("CountSessionsUpdatedSince", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		// Midnight UTC today
		return since.Equal(time.Now().UTC().Truncate(24 * time.Hour))
	})).Return(int64(7), nil)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/admin/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.EqualValues(t, 12, body["total_users"])
	assert.EqualValues(t, 34, body["total_posts"])
	assert.EqualValues(t, 5, body["pending_reports"])
	assert.EqualValues(t, 7, body["active_sessions"])
}

func TestGetAdminReports_PostPreview(t *testing.T) {
	app := fiber.New()
	mockReports := new(MockReportRepository)
	s := &Server{config: testConfig(), reportRepo: mockReports}
	withUser(app, 1)
	app.Get("/admin/reports", s.GetAdminReports)

	long := strings.Repeat("b", 300)
	deletedAt := gorm.DeletedAt{Time: time.Now(), Valid: true}
	mockReports.On("List", mock.Anything, models.ReportPending, 20, 0).
		Return([]models.Report{
			{ID: 1, PostID: 10, Reason: "spam", Note: "links to a scam site", Status: models.ReportPending,
				Post: &models.Post{ID: 10, Content: long}},
			{ID: 2, PostID: 11, Reason: "harassment", Status: models.ReportPending,
				Post: &models.Post{ID: 11, Content: "gone", DeletedAt: deletedAt}},
		}, int64(2), nil)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/admin/reports?status=pending", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	reports := body["reports"].([]any)
	require.Len(t, reports, 2)
	first := reports[0].(map[string]any)
	assert.Equal(t, strings.Repeat("b", 200)+"...", first["post_preview"])
	assert.Equal(t, "links to a scam site", first["note"])
	second := reports[1].(map[string]any)
	assert.Equal(t, "[post deleted]", second["post_preview"])
	assert.NotContains(t, second, "note")
}

func TestGetAdminReports_InvalidStatus(t *testing.T) {
	app := fiber.New()
	s := &Server{config: testConfig(), reportRepo: new(MockReportRepository)}
	withUser(app, 1)
	app.Get("/admin/reports", s.GetAdminReports)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/admin/reports?status=bogus", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleReport(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		handleErr      error
		wantSoftDelete bool
		expectedStatus int
	}{
		{
			name:           "Resolve with takedown",
			target:         "/admin/reports/1?action=resolve&delete_post=true",
			wantSoftDelete: true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Dismiss keeps post",
			target:         "/admin/reports/1?action=dismiss&delete_post=true",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Already handled",
			target:         "/admin/reports/1?action=resolve",
			handleErr:      models.NewConflictError("Report has already been handled"),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Unknown action",
			target:         "/admin/reports/1?action=escalate",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockReports := new(MockReportRepository)
			mockPosts := new(MockPostRepository)
			s := &Server{config: testConfig(), reportRepo: mockReports, postRepo: mockPosts}
			withUser(app, 9)
			app.Put("/admin/reports/:id", s.HandleReport)

			report := &models.Report{ID: 1, PostID: 10, Status: models.ReportPending}
			mockReports.On("GetByID", mock.Anything, uint(1)).Return(report, nil)
			mockReports.On("Handle", mock.Anything, report, mock.Anything, uint(9)).Return(tt.handleErr)
			if tt.wantSoftDelete {
				mockPosts.On("SoftDelete", mock.Anything, uint(10), uint(9)).Return(nil)
			}

			resp, err := app.Test(jsonRequest(t, http.MethodPut, tt.target, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.wantSoftDelete {
				mockPosts.AssertExpectations(t)
			} else {
				mockPosts.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestToggleUserStatus(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		mockSetup      func(users *MockUserRepository)
		expectedStatus int
	}{
		{
			name:   "Deactivate another user",
			target: "/admin/users/2/toggle-status",
			mockSetup: func(users *MockUserRepository) {
				users.On("GetByID", mock.Anything, uint(2)).
					Return(&models.User{ID: 2, IsActive: true}, nil)
				users.On("UpdateColumns", mock.Anything, uint(2),
					map[string]interface{}{"is_active": false}).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Self toggle rejected",
			target:         "/admin/users/9/toggle-status",
			mockSetup:      func(users *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockUsers := new(MockUserRepository)
			tt.mockSetup(mockUsers)
			s := &Server{config: testConfig(), userRepo: mockUsers}
			withUser(app, 9)
			app.Put("/admin/users/:id/toggle-status", s.ToggleUserStatus)

			resp, err := app.Test(jsonRequest(t, http.MethodPut, tt.target, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestToggleUserAdmin(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		mockSetup      func(users *MockUserRepository)
		expectedStatus int
	}{
		{
			name:   "Promote another user",
			target: "/admin/users/2/make-admin",
			mockSetup: func(users *MockUserRepository) {
				users.On("GetByID", mock.Anything, uint(2)).
					Return(&models.User{ID: 2, IsAdmin: false}, nil)
				users.On("UpdateColumns", mock.Anything, uint(2),
					map[string]interface{}{"is_admin": true}).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Self demotion forbidden",
			target: "/admin/users/9/make-admin",
			mockSetup: func(users *MockUserRepository) {
				users.On("GetByID", mock.Anything, uint(9)).
					Return(&models.User{ID: 9, IsAdmin: true}, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockUsers := new(MockUserRepository)
			tt.mockSetup(mockUsers)
			s := &Server{config: testConfig(), userRepo: mockUsers}
			withUser(app, 9)
			app.Put("/admin/users/:id/make-admin", s.ToggleUserAdmin)

			resp, err := app.Test(jsonRequest(t, http.MethodPut, tt.target, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestGetAdminPosts_IncludeDeleted(t *testing.T) {
	app := fiber.New()
	mockPosts := new(MockPostRepository)
	s := &Server{config: testConfig(), postRepo: mockPosts}
	withUser(app, 9)
	app.Get("/admin/posts", s.GetAdminPosts)

	mockPosts.On("ListAdmin", mock.Anything, true, 20, 0).
		Return([]*models.Post{{ID: 1, IsDeleted: true}}, int64(1), nil)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/admin/posts?include_deleted=true", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["total"])
	mockPosts.AssertExpectations(t)
}

func TestAdminDeletePost(t *testing.T) {
	app := fiber.New()
	mockPosts := new(MockPostRepository)
	s := &Server{config: testConfig(), postRepo: mockPosts}
	withUser(app, 9)
	app.Delete("/admin/posts/:id", s.AdminDeletePost)

	mockPosts.On("SoftDelete", mock.Anything, uint(4), uint(9)).Return(nil)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/admin/posts/4", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockPosts.AssertExpectations(t)
}
