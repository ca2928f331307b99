package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/domain"

	"go.uber.org/zap"
)

func requestWithIdentity(userID string, roles ...string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	ctx = context.WithValue(ctx, UserRolesKey, roles)
	return req.WithContext(ctx)
}

func TestRequireSuperuser(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		wantCode int
	}{
		{"superuser passes", []string{"SUPERUSER"}, http.StatusOK},
		{"both roles pass", []string{"USER", "SUPERUSER"}, http.StatusOK},
		{"plain user is forbidden", []string{"USER"}, http.StatusForbidden},
		{"no roles is forbidden", []string{}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireSuperuser(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithIdentity("actor-id", tt.roles...))

			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestRequireAnyRoleWithoutContextIdentity(t *testing.T) {
	handler := RequireAnyRole([]domain.Role{domain.RoleUser}, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without an authenticated identity, got %d", w.Code)
	}
}

func TestCanActOnUser(t *testing.T) {
	tests := []struct {
		name     string
		actorID  string
		roles    []string
		targetID string
		want     bool
	}{
		{"self access allowed", "abc", []string{"USER"}, "abc", true},
		{"other account denied", "abc", []string{"USER"}, "def", false},
		{"superuser may act on anyone", "abc", []string{"USER", "SUPERUSER"}, "def", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithIdentity(tt.actorID, tt.roles...)
			if got := CanActOnUser(req, tt.targetID); got != tt.want {
				t.Errorf("CanActOnUser = %v, want %v", got, tt.want)
			}
		})
	}
}
