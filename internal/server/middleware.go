package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"donationhub/pkg/types"

	"github.com/sirupsen/logrus"
)

type contextKey string

const contextKeyPrincipal contextKey = "principal"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// Authenticate resolves the caller, if any, and stores it on the request
// context. Missing or invalid credentials leave the request anonymous.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.identity.Authenticate(r)
		if err != nil {
			if !errors.Is(err, types.ErrUnauthenticated) {
				s.writeError(w, r, err)
				return
			}

			s.logger.WithError(err).Debug("request credentials rejected")
			next.ServeHTTP(w, r)
			return
		}

		if principal == nil {
			next.ServeHTTP(w, r)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": principal.ID,
			"role":    principal.Role,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyPrincipal, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principalFromContext(r.Context()) == nil {
			s.writeError(w, r, types.Unauthenticatedf("Unauthorized"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers without role before the handler reads the
// request body.
func (s *Service) RequireRole(role types.Role, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := principalFromContext(r.Context())
			if principal == nil {
				s.writeError(w, r, types.Unauthenticatedf("Unauthorized"))
				return
			}

			if !hasRole(principal, role) {
				s.writeError(w, r, types.Forbiddenf("%s", message))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// hasRole reports whether principal holds role. Roles outside the known set
// hold nothing.
func hasRole(principal *types.Principal, role types.Role) bool {
	switch principal.Role {
	case types.RoleUser:
		return role == types.RoleUser
	case types.RoleAdmin:
		return role == types.RoleAdmin
	}
	return false
}

// StripTrailingSlash routes /path/ as /path.
func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			r.URL.Path = strings.TrimRight(path, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
			r.URL.RawPath = ""
		}

		next.ServeHTTP(w, r)
	})
}

func principalFromContext(ctx context.Context) *types.Principal {
	principal, _ := ctx.Value(contextKeyPrincipal).(*types.Principal)
	return principal
}
