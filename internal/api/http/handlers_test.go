package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/security"
	"car-rental-adjustments/internal/service"
	"car-rental-adjustments/internal/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.NewValidationError("bad input"), http.StatusBadRequest},
		{domain.NewNotFoundError("missing"), http.StatusNotFound},
		{domain.NewStateConflictError("conflict"), http.StatusConflict},
		{domain.NewAuthorizationError("forbidden"), http.StatusForbidden},
		{domain.NewPaymentFailureError(nil, "declined"), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
	// Internal errors are never echoed.
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("secret database detail"))
	assert.NotContains(t, rec.Body.String(), "secret")
}

type stubWaivers struct {
	service.PenaltyWaiverCoordinator
	lastReason string
}

func (s *stubWaivers) WaiveFullPenalty(_ context.Context, _ domain.Actor, _ int32, reason string) (*domain.PenaltyWaiver, error) {
	s.lastReason = reason
	return &domain.PenaltyWaiver{ID: 1, WaivedAmountCents: 1_500}, nil
}

func testRouter(t *testing.T, waivers service.PenaltyWaiverCoordinator) (*mux.Router, security.TokenManager) {
	t.Helper()
	tokens := security.NewTokenManager(strings.Repeat("k", 32))
	h := NewHandler(nil, nil, nil, nil, nil, waivers, nil)
	r := mux.NewRouter()
	h.RegisterRoutes(r, tokens)
	return r, tokens
}

func TestAuthMiddleware(t *testing.T) {
	router, tokens := testRouter(t, &stubWaivers{})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/damage-reports/1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/damage-reports/1", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid admin token passes through", func(t *testing.T) {
		token, err := tokens.GenerateToken(99, "ops@example.com", []string{security.RoleAdmin}, time.Minute)
		require.NoError(t, err)

		body := strings.NewReader(`{"reason": "goodwill after roadside breakdown"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals/2/penalty/waivers", body)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestWaivePenalty_ReasonBoundary(t *testing.T) {
	waivers := &stubWaivers{}
	router, tokens := testRouter(t, waivers)
	token, err := tokens.GenerateToken(99, "ops@example.com", []string{security.RoleAdmin}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals/2/penalty/waivers", strings.NewReader(`{"reason": "short"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, waivers.lastReason, "service is never reached with a too-short reason")
}

func TestDownloadFile(t *testing.T) {
	store, err := storage.NewLocalStorage("http://localhost:8080", t.TempDir(), "secret")
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), "damage/10/a.jpg", strings.NewReader("jpegdata"))
	require.NoError(t, err)

	tokens := security.NewTokenManager(strings.Repeat("k", 32))
	h := NewHandler(nil, nil, nil, nil, nil, nil, store)
	router := mux.NewRouter()
	h.RegisterRoutes(router, tokens)

	signed, err := store.SecureURL(context.Background(), "damage/10/a.jpg", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	t.Run("signed url serves the file with its content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, u.Path+"?"+u.RawQuery, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		assert.Equal(t, "jpegdata", rec.Body.String())
	})

	t.Run("forged signature is refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, u.Path+"?expires="+u.Query().Get("expires")+"&sig=forged", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestPathID_Validation(t *testing.T) {
	router, tokens := testRouter(t, &stubWaivers{})
	token, err := tokens.GenerateToken(7, "dana@example.com", nil, time.Minute)
	require.NoError(t, err)

	for _, path := range []string{"/api/v1/damage-reports/abc", "/api/v1/damage-reports/0", "/api/v1/damage-reports/-3"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
	}
}
