package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okandemir/storefront/pkg/health"
	"github.com/okandemir/storefront/pkg/httputil"
	"github.com/okandemir/storefront/pkg/logger"

	"github.com/okandemir/storefront/internal/auth"
	"github.com/okandemir/storefront/internal/cache"
	"github.com/okandemir/storefront/internal/domain"
	"github.com/okandemir/storefront/internal/event"
	"github.com/okandemir/storefront/internal/repository"
	"github.com/okandemir/storefront/internal/service"
	"github.com/okandemir/storefront/internal/storage/memory"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) ListPopular(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) TogglePopular(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) AddSale(ctx context.Context, id string, qty int) (*domain.Product, error) {
	args := m.Called(ctx, id, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.ReviewSummary, error) {
	args := m.Called(ctx, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewSummary), args.Error(1)
}

func (m *mockReviewRepo) ListByProductID(ctx context.Context, productID string, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, productID, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) HasUserReview(ctx context.Context, productID, userID string) (bool, error) {
	args := m.Called(ctx, productID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) GetSummary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewSummary), args.Error(1)
}

// =============================================================================
// Test helpers
// =============================================================================

const (
	testProductID = "550e8400-e29b-41d4-a716-446655440001"
	testUserID    = "550e8400-e29b-41d4-a716-446655440002"
)

func handlerTestLogger() *slog.Logger {
	return logger.NewWithWriter("test", "error", os.Stdout)
}

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("handler-test-secret-key-0123456789", time.Hour)
}

type testEnv struct {
	userRepo    *mockUserRepo
	productRepo *mockProductRepo
	reviewRepo  *mockReviewRepo
	blobs       *memory.Storage
	router      http.Handler
}

// newTestEnv wires the full router with mock repositories, in-memory blob
// storage, and nil-safe cache and event sinks.
func newTestEnv() *testEnv {
	log := handlerTestLogger()
	jwt := testJWTManager()

	userRepo := new(mockUserRepo)
	productRepo := new(mockProductRepo)
	reviewRepo := new(mockReviewRepo)
	blobs := memory.New("https://cdn.test")

	events := event.NewPublisher(nil, log)
	popular := cache.NewPopularCache(nil, time.Minute, log)

	userService := service.NewUserService(userRepo, jwt, events, log)
	productService := service.NewProductService(productRepo, blobs, popular, events, log, false)
	reviewService := service.NewReviewService(reviewRepo, productRepo, events, log)

	router := NewRouter(
		userService, productService, reviewService,
		jwt, health.NewHandler(), log,
		CORSConfig{Environment: "development"},
	)

	return &testEnv{
		userRepo:    userRepo,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		blobs:       blobs,
		router:      router,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func bearerToken(t *testing.T, userID, email, role string) string {
	t.Helper()
	token, err := testJWTManager().Generate(userID, email, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func adminToken(t *testing.T) string {
	return bearerToken(t, testUserID, "admin@example.com", domain.RoleAdmin)
}

func userToken(t *testing.T) string {
	return bearerToken(t, testUserID, "user@example.com", domain.RoleUser)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:          testProductID,
		Name:        "Walnut Desk",
		Description: "A sturdy walnut desk",
		Price:       349.90,
		Images: []domain.ProductImage{
			{URL: "https://cdn.test/products/img-1.jpg", StorageKey: "products/img-1.jpg", IsPrimary: true},
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
