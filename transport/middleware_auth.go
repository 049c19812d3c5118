package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/climatevia/pathway/auth"
	"github.com/climatevia/pathway/errs"
)

type contextKey int

const principalContextKey contextKey = iota

// requireAuth validates the bearer token on every /chat/* request and
// places the resulting auth.Principal on the request context. When the
// server was built without a validator (auth disabled in config), requests
// pass through unauthenticated. It also doubles as the audit log for the
// chat surface: principal, route and outcome, never the message body.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusCapturingWriter{ResponseWriter: w, status: http.StatusOK}
		var principalID string
		defer func() {
			slog.Info("transport: audit", "route", r.URL.Path, "principal", principalID,
				"status", wrapped.status, "duration", time.Since(start))
		}()

		if s.authv == nil {
			next.ServeHTTP(wrapped, r)
			return
		}

		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(wrapped, errs.New(errs.Unauthenticated, "missing bearer token"))
			return
		}

		principal, err := s.authv.ValidateToken(r.Context(), token)
		if err != nil {
			writeError(wrapped, err)
			return
		}
		principalID = principal.UserID

		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(wrapped, r.WithContext(ctx))
	})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func principalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(auth.Principal)
	return p, ok
}
