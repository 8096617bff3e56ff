package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/school-api/internal/api/http/handlers"
	"github.com/spec-kit/school-api/internal/auth"
	"github.com/spec-kit/school-api/internal/config"
	"github.com/spec-kit/school-api/internal/domain"
	"github.com/spec-kit/school-api/internal/observability"
	"github.com/spec-kit/school-api/internal/registry"
	"github.com/spec-kit/school-api/internal/repository"
	"github.com/spec-kit/school-api/internal/service"
)

type fakePrincipals struct {
	creds map[string]*domain.Credential
}

func principalKey(role domain.Role, email string) string {
	return string(role) + "|" + email
}

func (f *fakePrincipals) GetCredentialByEmail(_ context.Context, role domain.Role, email string) (*domain.Credential, error) {
	cred, ok := f.creds[principalKey(role, email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cred, nil
}

func (f *fakePrincipals) GetByID(_ context.Context, role domain.Role, id int64) (*domain.Principal, error) {
	for key, cred := range f.creds {
		if cred.ID == id && key == principalKey(role, cred.Email) {
			return &domain.Principal{ID: cred.ID, Email: cred.Email, Role: role}, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeStudents struct{}

func (fakeStudents) Create(_ context.Context, student *domain.Student) error {
	student.StudentNumber = 1
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	return nil
}
func (fakeStudents) Update(_ context.Context, _ *domain.Student) error { return pgx.ErrNoRows }
func (fakeStudents) GetByID(_ context.Context, _ int64) (*domain.StudentDetail, error) {
	return nil, pgx.ErrNoRows
}
func (fakeStudents) List(_ context.Context, _ repository.StudentFilter) ([]domain.StudentDetail, int, error) {
	return []domain.StudentDetail{}, 15, nil
}
func (fakeStudents) Delete(_ context.Context, _ int64) error { return pgx.ErrNoRows }
func (fakeStudents) HasConflict(_ context.Context, _ int64, _, _ string) (bool, error) {
	return false, nil
}

type fakeSessions struct{}

func (fakeSessions) Create(_ context.Context, session *domain.Session) error {
	session.ID = 1
	return nil
}
func (fakeSessions) List(_ context.Context, _ repository.SessionFilter) ([]domain.SessionSummary, int, error) {
	return []domain.SessionSummary{}, 0, nil
}
func (fakeSessions) Enroll(_ context.Context, _, _ int64) error { return pgx.ErrNoRows }

type fakeGateway struct{}

func (fakeGateway) List(_ context.Context, _ *registry.Table, _ repository.GatewayListParams) ([]map[string]any, int, error) {
	return []map[string]any{}, 0, nil
}
func (fakeGateway) GetByID(_ context.Context, _ *registry.Table, _ string) (map[string]any, error) {
	return nil, pgx.ErrNoRows
}
func (fakeGateway) Insert(_ context.Context, _ *registry.Table, values map[string]any) (map[string]any, error) {
	return values, nil
}
func (fakeGateway) Update(_ context.Context, _ *registry.Table, _ string, _ map[string]any) (map[string]any, error) {
	return nil, pgx.ErrNoRows
}
func (fakeGateway) Delete(_ context.Context, _ *registry.Table, _ string) error {
	return pgx.ErrNoRows
}
func (fakeGateway) BulkInsert(_ context.Context, _ *registry.Table, _ []string, records []map[string]any) (int, error) {
	return len(records), nil
}
func (fakeGateway) Search(_ context.Context, _ *registry.Table, _ string, _ int) ([]map[string]any, error) {
	return []map[string]any{}, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		App:  config.AppConfig{RequestTimeoutSeconds: 5},
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1, BcryptCost: 4},
	}

	adminHash, err := auth.HashPassword("admin-pass", 4)
	require.NoError(t, err)
	teacherHash, err := auth.HashPassword("teacher-pass", 4)
	require.NoError(t, err)
	principals := &fakePrincipals{creds: map[string]*domain.Credential{
		principalKey(domain.RoleAdmin, "admin@example.com"):     {ID: 1, Email: "admin@example.com", PasswordHash: adminHash},
		principalKey(domain.RoleTeacher, "teacher@example.com"): {ID: 2, Email: "teacher@example.com", PasswordHash: teacherHash},
	}}

	cache := auth.NewPrincipalCache(nil, 60)
	authService := service.NewAuthService(*cfg, principals, nil)
	studentService := service.NewStudentService(fakeStudents{}, cache, nil, 4)
	sessionService := service.NewSessionService(fakeSessions{}, nil)
	gatewayService := service.NewGatewayService(registry.Default(), fakeGateway{}, cache, 4)
	guard := auth.NewAccessGuard(authService.TokenManager(), principals, cache)

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, cfg, zap.NewNop(), metrics)
	RegisterRoutes(app, RouteConfig{
		Guard:    guard,
		Health:   handlers.NewHealthHandler(nil, nil, metrics),
		Auth:     handlers.NewAuthHandler(authService),
		Students: handlers.NewStudentsHandler(studentService),
		Sessions: handlers.NewSessionsHandler(sessionService),
		Gateway:  handlers.NewGatewayHandler(gatewayService),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func loginAs(t *testing.T, app *fiber.App, email, password, userType string) string {
	t.Helper()

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": email, "password": password, "userType": userType,
	})
	require.Equal(t, http.StatusOK, status, "login body: %v", body)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func errCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "body: %v", body)
	return errObj["code"].(string)
}

func TestIndexRoute(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	status, body := doJSON(t, app, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "school-api", data["service"])
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	status, body := doJSON(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])
}

func TestHealthReadyUnavailable(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	status, body := doJSON(t, app, http.MethodGet, "/api/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errCode(t, body))
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "admin@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, body))

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "admin@example.com", "password": "admin-pass", "userType": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "UNKNOWN_USER_TYPE", errCode(t, body))

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "admin@example.com", "password": "wrong", "userType": "admin",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, body))

	token := loginAs(t, app, "admin@example.com", "admin-pass", "admin")
	assert.NotEmpty(t, token)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, body))

	status, body = doJSON(t, app, http.MethodGet, "/api/students", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, body))
}

func TestStudentListPagination(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	token := loginAs(t, app, "admin@example.com", "admin-pass", "admin")

	status, body := doJSON(t, app, http.MethodGet, "/api/students?page=2&size=10", token, nil)
	require.Equal(t, http.StatusOK, status)

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["currentPage"])
	assert.Equal(t, float64(10), pagination["pageSize"])
	assert.Equal(t, float64(15), pagination["totalCount"])
	assert.Equal(t, float64(2), pagination["totalPages"])
}

func TestRoleEnforcement(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	teacherToken := loginAs(t, app, "teacher@example.com", "teacher-pass", "teacher")

	// teachers may read but not delete students
	status, _ := doJSON(t, app, http.MethodGet, "/api/students", teacherToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, app, http.MethodDelete, "/api/students/3", teacherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errCode(t, body))

	// gateway writes are admin only
	status, body = doJSON(t, app, http.MethodPost, "/api/subjects", teacherToken, fiber.Map{"name": "Maths"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errCode(t, body))
}

func TestGatewayUnknownTableRoute(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	token := loginAs(t, app, "admin@example.com", "admin-pass", "admin")

	status, body := doJSON(t, app, http.MethodGet, "/api/not_a_table", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(t, body))
}

func TestUnknownRouteEnvelope(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/nope/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(t, body))
}
