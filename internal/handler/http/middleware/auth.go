package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/jwt"
)

type actorKey struct{}

// AuthRequired accepts verified access tokens and stores the caller as a
// shift.Actor on the request context.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != "access" {
			response.Unauthorized(w, "Invalid token")
			return
		}

		c, err := jwt.ClaimsFromMap(claims)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		actor := shift.Actor{UserID: c.UserID, Name: c.Name, Role: c.Role}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	}
	return http.HandlerFunc(hfn)
}

func WithActor(ctx context.Context, actor shift.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated caller. The zero Actor has no
// role and fails every scheduler check.
func ActorFromContext(ctx context.Context) shift.Actor {
	actor, _ := ctx.Value(actorKey{}).(shift.Actor)
	return actor
}
