package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Yashchoudhary3/flight-app/internal/auth"
	"github.com/Yashchoudhary3/flight-app/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVerifier struct {
	claims map[string]auth.Claims
}

func (v *staticVerifier) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if claims, ok := v.claims[token]; ok {
		return &claims, nil
	}
	return nil, auth.ErrInvalidToken
}

func authRouter(verifier auth.Verifier, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(verifier)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": claimsFrom(c).UserID})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestAuth_AcceptsBearerToken(t *testing.T) {
	userID := uuid.New()
	verifier := &staticVerifier{claims: map[string]auth.Claims{
		"good-token": {UserID: userID, Role: domain.RoleUser},
	}}
	router := authRouter(verifier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAuth_RejectsMissingOrBadToken(t *testing.T) {
	verifier := &staticVerifier{claims: map[string]auth.Claims{}}
	router := authRouter(verifier)

	testCases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown session", "Bearer expired", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	verifier := &staticVerifier{claims: map[string]auth.Claims{
		"admin-token": {UserID: uuid.New(), Role: domain.RoleAdmin},
		"user-token":  {UserID: uuid.New(), Role: domain.RoleUser},
	}}
	router := authRouter(verifier, RequireRole(domain.RoleAdmin))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
