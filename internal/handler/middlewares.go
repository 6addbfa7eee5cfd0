package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chama-dev/chama/backend/internal/domain"
	"github.com/chama-dev/chama/backend/internal/navigation"
	"github.com/chama-dev/chama/backend/internal/session"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				fmt.Print(string(debug.Stack())) // raw trace reads better than a slog attribute
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// auth resolves the token cookie to an identity and attaches a session
// holding it. The identity is reloaded on every request so role changes
// take effect immediately.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, http.StatusUnauthorized, "not logged in")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.errorResponse(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		identity, err := h.repository.GetIdentityByID(r.Context(), claims.Subject)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, http.StatusUnauthorized, "account no longer exists")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		sess := session.New()
		sess.Login(*identity)

		next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
	})
}

// RequireCapability rejects requests whose identity's role does not grant c.
func (h *Handler) RequireCapability(c domain.Capability) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !navigation.Allowed(session.FromContext(r.Context()), c) {
				h.errorResponse(w, r, http.StatusForbidden, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// memberInfo loads the member named in the URL. Members of other groups
// are reported as missing.
func (h *Handler) memberInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me, _ := session.FromContext(r.Context()).CurrentIdentity()

		member, err := h.repository.GetIdentityByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, http.StatusNotFound, "member not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if member.GroupID != me.GroupID {
			h.errorResponse(w, r, http.StatusNotFound, "member not found")
			return
		}

		ctx := context.WithValue(r.Context(), MemberInfoCtx, member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
