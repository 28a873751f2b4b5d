package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/middleware"
	"backend/internal/policy"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStockRequestService struct {
	createdBy string
}

func (s *stubStockRequestService) Create(_ context.Context, requestedBy string, _ service.CreateStockRequestRequest) (*service.StockRequestView, error) {
	s.createdBy = requestedBy
	view := &service.StockRequestView{}
	view.ID = uuid.New()
	view.RequestedBy = requestedBy
	return view, nil
}

func (s *stubStockRequestService) Resolve(context.Context, policy.Actor, uuid.UUID, uuid.UUID, string) (*service.StockRequestView, error) {
	return nil, nil
}

func (s *stubStockRequestService) GetByID(context.Context, uuid.UUID, uuid.UUID) (*service.StockRequestView, error) {
	return nil, nil
}

func (s *stubStockRequestService) ListByBranch(context.Context, uuid.UUID, int, int) ([]service.StockRequestView, int64, error) {
	return nil, 0, nil
}

func (s *stubStockRequestService) ListPending(context.Context, policy.Actor) ([]service.StockRequestView, error) {
	return nil, nil
}

func signToken(t *testing.T, secret []byte, sub, role string, branchID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	if branchID != uuid.Nil {
		claims["branch_id"] = branchID.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

// Creation and resolution of stock requests are split across roles so nobody
// approves their own replenishment: admins file, heads and global roles
// resolve.
func TestCreateStockRequestRoute_AdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("test-secret")
	svc := &stubStockRequestService{}

	router := gin.New()
	NewStockRequestHandler(svc, middleware.NewAuth(secret)).RegisterRoutes(router.Group(""))

	branchID := uuid.New()
	body, err := json.Marshal(service.CreateStockRequestRequest{
		BranchID:  branchID.String(),
		ProductID: uuid.NewString(),
		Quantity:  5,
	})
	require.NoError(t, err)

	post := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/stock-requests", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+signToken(t, secret, "user-1", role, branchID))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post(policy.RoleAdmin).Code)
	assert.Equal(t, "user-1", svc.createdBy)

	assert.Equal(t, http.StatusForbidden, post(policy.RoleHead).Code)
	assert.Equal(t, http.StatusForbidden, post(policy.RoleOwner).Code)
	assert.Equal(t, http.StatusForbidden, post(policy.RoleCustomer).Code)
}
