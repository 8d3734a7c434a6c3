package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/jwt"
)

func echoActor(t *testing.T, got *shift.Actor) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("middleware-test-secret", "1h")
	var actor shift.Actor
	handler := jwtauth.Verifier(svc.JWTAuth())(AuthRequired(echoActor(t, &actor)))

	serve := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(""))
	assert.Equal(t, http.StatusUnauthorized, serve("not-a-jwt"))

	streamToken, _, err := svc.GenerateSSEToken("alice", user.RoleCleaner)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(streamToken))

	access, _, err := svc.GenerateAccessToken("alice", "Alice", user.RoleCleaner)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, serve(access))
	assert.Equal(t, shift.Actor{UserID: "alice", Name: "Alice", Role: user.RoleCleaner}, actor)
}

func TestRequirePermission(t *testing.T) {
	var actor shift.Actor
	handler := RequirePermission(user.PermissionAuditDecide)(echoActor(t, &actor))

	cases := []struct {
		role user.Role
		want int
	}{
		{user.RoleScheduler, http.StatusNoContent},
		{user.RoleAdmin, http.StatusNoContent},
		{user.RoleSupervisor, http.StatusForbidden},
		{user.RoleCleaner, http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithActor(req.Context(), shift.Actor{UserID: "u", Role: c.role}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, c.want, rec.Code, "role %q", c.role)
	}
}
