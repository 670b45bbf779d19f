package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/database"
	"github.com/anonto42/socialcore/backend/internal/middleware"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/router"
	sqlite "github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUserHeader = "X-Test-User"

// headerAuth trusts a numeric user id header, standing in for JWT or Firebase.
func headerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Request().Header.Get(testUserHeader), 10, 32)
		if err != nil || id == 0 {
			return apperrors.Unauthenticated("user not authenticated")
		}
		c.Set(middleware.UserIDKey, uint(id))
		return next(c)
	}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind    apperrors.Kind `json:"kind"`
		Message string         `json:"message"`
	} `json:"error"`
}

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T, users int) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db, zap.NewNop()))

	for i := 1; i <= users; i++ {
		require.NoError(t, db.Create(&models.User{
			ID:    uint(i),
			Name:  fmt.Sprintf("user%d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		}).Error)
	}

	services, err := router.BuildServices(context.Background(), db, nil, nil, zap.NewNop())
	require.NoError(t, err)

	e := echo.New()
	router.SetupMiddleware(e, zap.NewNop())
	router.SetupRoutes(e, headerAuth, services, zap.NewNop())
	return &testServer{e: e, db: db}
}

func (s *testServer) do(t *testing.T, user uint, method, path, body string) (int, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(uint64(user), 10))
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestViewingConversationMarksItRead(t *testing.T) {
	s := newTestServer(t, 2)

	code, _ := s.do(t, 1, http.MethodPost, "/api/v1/messages/2", `{"content":"hi"}`)
	require.Equal(t, http.StatusCreated, code)

	code, resp := s.do(t, 2, http.MethodGet, "/api/v1/messages/me/unread/count", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), decode[struct{ Count int64 }](t, resp.Data).Count)

	code, resp = s.do(t, 2, http.MethodGet, "/api/v1/messages/1", "")
	require.Equal(t, http.StatusOK, code)
	conv := decode[struct{ Messages []models.DirectMessage }](t, resp.Data)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "hi", conv.Messages[0].Content)

	_, resp = s.do(t, 2, http.MethodGet, "/api/v1/messages/me/unread/count", "")
	assert.Zero(t, decode[struct{ Count int64 }](t, resp.Data).Count)

	var msg models.DirectMessage
	require.NoError(t, s.db.First(&msg).Error)
	assert.NotNil(t, msg.ReadAt)
}

func TestErrorEnvelope(t *testing.T) {
	s := newTestServer(t, 2)

	cases := []struct {
		name   string
		user   uint
		method string
		path   string
		body   string
		status int
		kind   apperrors.Kind
	}{
		{"missing identity", 0, http.MethodGet, "/api/v1/notifications", "", http.StatusUnauthorized, apperrors.KindAuthentication},
		{"follow self", 1, http.MethodPost, "/api/v1/follows/1", "", http.StatusBadRequest, apperrors.KindValidation},
		{"malformed id", 1, http.MethodPost, "/api/v1/follows/abc", "", http.StatusBadRequest, apperrors.KindValidation},
		{"unknown user", 1, http.MethodPost, "/api/v1/follows/77", "", http.StatusNotFound, apperrors.KindNotFound},
		{"blank message", 1, http.MethodPost, "/api/v1/messages/2", `{"content":""}`, http.StatusBadRequest, apperrors.KindValidation},
		{"missing group", 1, http.MethodGet, "/api/v1/groups/5", "", http.StatusNotFound, apperrors.KindNotFound},
		{"unknown route", 1, http.MethodGet, "/api/v1/nowhere", "", http.StatusNotFound, apperrors.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := s.do(t, tc.user, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, code)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.kind, resp.Error.Kind)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestGroupCreatorIsProtectedOverHTTP(t *testing.T) {
	s := newTestServer(t, 3)

	code, resp := s.do(t, 1, http.MethodPost, "/api/v1/groups", `{"name":"crew"}`)
	require.Equal(t, http.StatusCreated, code)
	group := decode[models.Group](t, resp.Data)
	base := fmt.Sprintf("/api/v1/groups/%d", group.ID)

	code, _ = s.do(t, 1, http.MethodPost, base+"/members", `{"user_id":3}`)
	require.Equal(t, http.StatusCreated, code)
	code, resp = s.do(t, 1, http.MethodPost, base+"/members", `{"user_id":3}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.KindConflict, resp.Error.Kind)

	code, _ = s.do(t, 1, http.MethodPut, base+"/members/3/role", `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = s.do(t, 3, http.MethodDelete, base+"/members/1", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.KindConflict, resp.Error.Kind)

	code, resp = s.do(t, 2, http.MethodGet, base+"/messages", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, apperrors.KindAuthorization, resp.Error.Kind)

	code, resp = s.do(t, 3, http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, http.StatusOK, code)
	list := decode[struct{ Notifications []models.NotificationView }](t, resp.Data)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, "crew", list.Notifications[0].GroupName)
}

func TestMarkNotificationsRead(t *testing.T) {
	s := newTestServer(t, 3)

	s.do(t, 2, http.MethodPost, "/api/v1/follows/1", "")
	s.do(t, 3, http.MethodPost, "/api/v1/follows/1", "")

	_, resp := s.do(t, 1, http.MethodGet, "/api/v1/notifications", "")
	list := decode[struct{ Notifications []models.NotificationView }](t, resp.Data)
	require.Len(t, list.Notifications, 2)

	body := fmt.Sprintf(`{"ids":[%d]}`, list.Notifications[0].ID)
	code, resp := s.do(t, 1, http.MethodPost, "/api/v1/notifications/read", body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), decode[struct{ Updated int64 }](t, resp.Data).Updated)

	code, resp = s.do(t, 1, http.MethodPost, "/api/v1/notifications/read", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), decode[struct{ Updated int64 }](t, resp.Data).Updated)

	_, resp = s.do(t, 1, http.MethodGet, "/api/v1/notifications/unread/count", "")
	assert.Zero(t, decode[struct{ Count int64 }](t, resp.Data).Count)

	s.do(t, 1, http.MethodPost, "/api/v1/follows/2", "")
	code, resp = s.do(t, 2, http.MethodPost, "/api/v1/notifications/read", `{"ids":[]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, decode[struct{ Updated int64 }](t, resp.Data).Updated)
	_, resp = s.do(t, 2, http.MethodGet, "/api/v1/notifications/unread/count", "")
	assert.Equal(t, int64(1), decode[struct{ Count int64 }](t, resp.Data).Count)
}

func TestLikeReturnsPostStats(t *testing.T) {
	s := newTestServer(t, 2)

	code, resp := s.do(t, 1, http.MethodPost, "/api/v1/posts", `{"content":"hello"}`)
	require.Equal(t, http.StatusCreated, code)
	post := decode[models.Post](t, resp.Data)

	code, resp = s.do(t, 2, http.MethodPost, "/api/v1/posts/"+post.ID+"/likes", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.PostStats{LikeCount: 1, LikedByMe: true}, decode[models.PostStats](t, resp.Data))

	_, resp = s.do(t, 1, http.MethodGet, "/api/v1/posts/"+post.ID+"/stats", "")
	assert.Equal(t, models.PostStats{LikeCount: 1}, decode[models.PostStats](t, resp.Data))

	_, resp = s.do(t, 2, http.MethodDelete, "/api/v1/posts/"+post.ID+"/likes", "")
	assert.Equal(t, models.PostStats{}, decode[models.PostStats](t, resp.Data))
}
