package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/response"
)

// RequirePermission rejects callers whose role lacks the permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !user.HasPermission(ActorFromContext(r.Context()).Role, permission) {
				response.HandleError(w, fmt.Errorf("%w: %s", user.ErrPermissionDenied, permission))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
