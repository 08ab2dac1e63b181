package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/okandemir/storefront/pkg/errors"

	"github.com/okandemir/storefront/internal/domain"
)

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// =============================================================================
// POST /api/auth/register
// =============================================================================

func TestRegister_Success(t *testing.T) {
	env := newTestEnv()

	env.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "correcthorse",
	}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "jane@example.com", user["email"])
	assert.Equal(t, domain.RoleUser, user["role"])
	assert.NotContains(t, user, "password_hash")
	env.userRepo.AssertExpectations(t)
}

func TestRegister_SixCharPassword(t *testing.T) {
	env := newTestEnv()

	env.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "abcdef",
	}))

	// Six characters is the minimum accepted password length.
	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv()

	env.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "jane@example.com"))

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "correcthorse",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

func TestRegister_ValidationError(t *testing.T) {
	env := newTestEnv()

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Name:     "J",
		Email:    "not-an-email",
		Password: "short",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "name")
	assert.Contains(t, resp.Error.Fields, "email")
	assert.Contains(t, resp.Error.Fields, "password")
}

func TestRegister_InvalidRole(t *testing.T) {
	env := newTestEnv()

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "correcthorse",
		Role:     "superuser",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Fields, "role")
}

func TestRegister_WrongContentType(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("name=x")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// =============================================================================
// POST /api/auth/login
// =============================================================================

func TestLogin_Success(t *testing.T) {
	env := newTestEnv()

	hash, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	require.NoError(t, err)
	env.userRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(&domain.User{
		ID:           testUserID,
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}, nil)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "jane@example.com",
		Password: "correcthorse",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["token"])
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv()

	hash, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	require.NoError(t, err)
	env.userRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(&domain.User{
		ID:           testUserID,
		Email:        "jane@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}, nil)

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid credentials", resp.Error.Message)
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv()

	env.userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, apperrors.NotFound("user", "ghost@example.com"))

	rec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	}))

	// Same generic message as a wrong password, no user enumeration.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid credentials", resp.Error.Message)
}

// =============================================================================
// GET /api/auth/me
// =============================================================================

func TestMe_Success(t *testing.T) {
	env := newTestEnv()

	env.userRepo.On("GetByID", mock.Anything, testUserID).Return(&domain.User{
		ID:    testUserID,
		Name:  "Jane Doe",
		Email: "user@example.com",
		Role:  domain.RoleUser,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", userToken(t))
	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	user := resp.Data.(map[string]any)
	assert.Equal(t, testUserID, user["id"])
}

func TestMe_NoToken(t *testing.T) {
	env := newTestEnv()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_MalformedToken(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := env.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// GET /api/auth/admin-only
// =============================================================================

func TestAdminOnly_AsAdmin(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/admin-only", nil)
	req.Header.Set("Authorization", adminToken(t))
	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "welcome, admin", data["message"])
}

func TestAdminOnly_AsUser(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/admin-only", nil)
	req.Header.Set("Authorization", userToken(t))
	rec := env.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
