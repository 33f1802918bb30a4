package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
)

type ctxKey int

const ctxGameClaims ctxKey = iota

// GameClaims returns the claims Auth found on the request.
func GameClaims(ctx context.Context) (*config.GameClaims, bool) {
	claims, ok := ctx.Value(ctxGameClaims).(*config.GameClaims)
	return claims, ok
}

func WithGameClaims(ctx context.Context, claims *config.GameClaims) context.Context {
	return context.WithValue(ctx, ctxGameClaims, claims)
}

// bearer reads the token from the Authorization header, or from the token
// query parameter for browsers opening a websocket.
func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// Auth attaches valid game claims to the request context. Requests without
// a valid token pass through anonymously; handlers decide what needs one.
func Auth(log *logrus.Logger, tokens *config.Tokens) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				log.WithError(err).Debug("rejected token")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithGameClaims(r.Context(), claims)))
		})
	}
}
