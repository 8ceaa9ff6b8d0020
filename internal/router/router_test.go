package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-library-backend/internal/config"
	"go-library-backend/internal/handler"
	"go-library-backend/internal/middleware"
	"go-library-backend/internal/model"
	"go-library-backend/internal/repository/memory"
	"go-library-backend/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
	Meta    *model.Meta     `json:"meta"`
}

type testServer struct {
	*httptest.Server
	store   *memory.Store
	members *service.MemberService
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error {
	return f(ctx)
}

func newTestServer(t *testing.T, cfg *config.Config, health HealthChecker) *testServer {
	t.Helper()

	store := memory.NewStore()
	authService, err := service.NewAuthService("test-secret", time.Hour, store.Students(), store.Staff())
	require.NoError(t, err)
	auditService := service.NewAuditService(store.Audit())
	bookService := service.NewBookService(store.Books(), auditService)

	if cfg == nil {
		cfg = &config.Config{
			RequestTimeout:   5 * time.Second,
			CORSOrigins:      []string{"*"},
			RateLimitRPM:     -1,
			AuthRateLimitRPM: 1000,
		}
	}

	h := New(cfg, middleware.NewAuthMiddleware(authService), Handlers{
		Auth:  handler.NewAuthHandler(authService),
		Books: handler.NewBookHandler(bookService),
		Audit: handler.NewAuditHandler(auditService),
		Docs:  handler.NewDocsHandler([]byte("openapi: 3.0.3\n")),
	}, health)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	ts := &testServer{
		Server:  server,
		store:   store,
		members: service.NewMemberService(store.Students(), store.Staff()),
	}

	_, err = ts.members.CreateStaff(context.Background(), model.CreateStaffRequest{
		StaffID: "STF-1", Email: "grace@example.com", Password: "password123",
		FirstName: "Grace", LastName: "Hopper", Role: "librarian", HiredDate: "2020-01-15",
	})
	require.NoError(t, err)
	_, err = ts.members.CreateStudent(context.Background(), model.CreateStudentRequest{
		StudentID: "STU-1", Email: "ada@example.com", Password: "password123",
		FirstName: "Ada", LastName: "Lovelace", EnrollmentDate: "2024-09-01",
	})
	require.NoError(t, err)

	return ts
}

func (ts *testServer) do(t *testing.T, method string, path string, token string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)

	var session model.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.Equal(t, "Bearer", session.TokenType)
	return session.AccessToken
}

func decodeBook(t *testing.T, env envelope) model.Book {
	t.Helper()

	var book model.Book
	require.NoError(t, json.Unmarshal(env.Data, &book))
	return book
}

func TestBookLifecycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	token := ts.login(t, "grace@example.com")

	status, env := ts.do(t, http.MethodPost, "/api/v1/books", token, map[string]any{
		"isbn": "978-1", "title": "T", "author": "A", "totalCopies": 3,
	})
	require.Equal(t, http.StatusCreated, status)
	created := decodeBook(t, env)
	require.Equal(t, 3, created.AvailableCopies)
	require.True(t, created.IsAvailable)

	status, _ = ts.do(t, http.MethodPost, "/api/v1/books", token, map[string]any{
		"isbn": "978-1", "title": "Again", "author": "B",
	})
	require.Equal(t, http.StatusConflict, status)

	status, env = ts.do(t, http.MethodPatch, "/api/v1/books/1", token, map[string]any{"availableCopies": 0})
	require.Equal(t, http.StatusOK, status)
	updated := decodeBook(t, env)
	require.False(t, updated.IsAvailable)
	require.Equal(t, 2, updated.Version)

	status, env = ts.do(t, http.MethodPatch, "/api/v1/books/1", token, map[string]any{"availableCopies": 5})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Available copies cannot exceed total copies", env.Error.Message)

	status, _ = ts.do(t, http.MethodPatch, "/api/v1/books/1", token, map[string]any{"title": "x", "version": 1})
	require.Equal(t, http.StatusConflict, status)

	status, env = ts.do(t, http.MethodGet, "/api/v1/books", token, nil)
	require.Equal(t, http.StatusOK, status)
	var books []model.Book
	require.NoError(t, json.Unmarshal(env.Data, &books))
	require.Len(t, books, 1)
	require.Equal(t, "T", books[0].Title)

	status, env = ts.do(t, http.MethodDelete, "/api/v1/books/1", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"message":"Book with ID 1 has been deleted"}`, string(env.Data))

	status, env = ts.do(t, http.MethodGet, "/api/v1/books/1", token, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestBookPatchClearsOptionalFields(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	token := ts.login(t, "grace@example.com")

	status, _ := ts.do(t, http.MethodPost, "/api/v1/books", token, map[string]any{
		"isbn": "978-1", "title": "T", "author": "A", "genre": "Fiction", "location": "A-1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := ts.do(t, http.MethodPatch, "/api/v1/books/1", token, map[string]any{"genre": nil})
	require.Equal(t, http.StatusOK, status)
	updated := decodeBook(t, env)
	require.Nil(t, updated.Genre)
	require.Equal(t, "A-1", *updated.Location)

	status, env = ts.do(t, http.MethodPatch, "/api/v1/books/1", token, map[string]any{"isbn": "  "})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = ts.do(t, http.MethodGet, "/api/v1/books/1", token, nil)
	require.Equal(t, http.StatusOK, status)
	stored := decodeBook(t, env)
	require.Nil(t, stored.Genre)
	require.Equal(t, "978-1", stored.ISBN)
}

func TestBookRequestErrors(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	token := ts.login(t, "ada@example.com")

	status, env := ts.do(t, http.MethodGet, "/api/v1/books/abc", token, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "BAD_REQUEST", env.Error.Code)

	status, env = ts.do(t, http.MethodPost, "/api/v1/books", token, map[string]any{"isbn": "978-9"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Len(t, env.Error.Fields, 2)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/books", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/books", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/books", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthRoutes(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid credentials", env.Error.Message)

	token := ts.login(t, "ada@example.com")

	for _, method := range []string{http.MethodPost, http.MethodGet} {
		path := "/api/v1/auth/profile"
		if method == http.MethodGet {
			path = "/api/v1/auth/me"
		}

		status, env = ts.do(t, method, path, token, nil)
		require.Equal(t, http.StatusOK, status)
		var user model.AuthUser
		require.NoError(t, json.Unmarshal(env.Data, &user))
		require.Equal(t, "Ada Lovelace", user.FullName)
		require.Equal(t, "STU-1", user.StudentID)
	}

	require.NoError(t, ts.members.SetActive(context.Background(), model.UserTypeStudent, "ada@example.com", false))

	status, env = ts.do(t, http.MethodPost, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Student not found", env.Error.Message)
}

func TestAuditIsStaffOnly(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	staffToken := ts.login(t, "grace@example.com")
	studentToken := ts.login(t, "ada@example.com")

	status, _ := ts.do(t, http.MethodPost, "/api/v1/books", staffToken, map[string]any{
		"isbn": "978-1", "title": "T", "author": "A",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/audit", studentToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, env := ts.do(t, http.MethodGet, "/api/v1/audit?action=book.create&limit=10", staffToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Meta)
	require.Equal(t, 1, env.Meta.Total)

	var data model.AuditListData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Items, 1)
	require.Equal(t, "grace@example.com", data.Items[0].Actor.Email)
	require.Equal(t, model.UserTypeStaff, data.Items[0].Actor.Type)
	require.Equal(t, "book:1", data.Items[0].Resource)

	status, _ = ts.do(t, http.MethodGet, "/api/v1/audit?from=yesterday", staffToken, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAuthRateLimitReturns429(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &config.Config{
		RequestTimeout:   5 * time.Second,
		RateLimitRPM:     -1,
		AuthRateLimitRPM: 2,
	}, nil)

	body := map[string]string{"email": "ada@example.com", "password": "wrong-password"}
	for i := 0; i < 2; i++ {
		status, _ := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, status)
	}

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, "RATE_LIMITED", env.Error.Code)
}

func TestPublicEndpoints(t *testing.T) {
	t.Parallel()

	var healthy atomic.Bool
	healthy.Store(true)
	ts := newTestServer(t, nil, healthFunc(func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("pool exhausted")
	}))

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	healthy.Store(false)
	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/openapi.yaml")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
}
