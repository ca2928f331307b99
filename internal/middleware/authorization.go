package middleware

import (
	"net/http"

	"marketplace/internal/domain"

	"go.uber.org/zap"
)

// RequireSuperuser middleware ensures the actor holds the SUPERUSER role
func RequireSuperuser(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireAnyRole([]domain.Role{domain.RoleSuperuser}, logger)
}

// RequireAnyRole middleware ensures the actor holds at least one of the
// given roles
func RequireAnyRole(allowedRoles []domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := GetUserRoles(r.Context())
			if !ok {
				logger.Warn("Roles not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			allowed := false
			for _, allowedRole := range allowedRoles {
				for _, role := range roles {
					if role == string(allowedRole) {
						allowed = true
						break
					}
				}
			}

			if !allowed {
				logger.Warn("Actor roles not authorized",
					zap.Strings("roles", roles),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CanActOnUser implements the self-or-superuser rule for profile and
// password updates: a superuser may act on any account, anyone else only on
// their own.
func CanActOnUser(r *http.Request, targetID string) bool {
	if HasRole(r.Context(), domain.RoleSuperuser) {
		return true
	}
	actorID, ok := GetUserID(r.Context())
	return ok && actorID == targetID
}
