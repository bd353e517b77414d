package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ruwinya10/agrilink-backend/api/responses"
	pkgAuth "github.com/ruwinya10/agrilink-backend/pkg/auth"
	"github.com/ruwinya10/agrilink-backend/pkg/config"
	"github.com/ruwinya10/agrilink-backend/pkg/db"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

// UserMirror persists the principal carried by a verified token so local
// tables can reference it by id.
type UserMirror interface {
	Upsert(ctx context.Context, user *models.User) error
}

// Auth validates a bearer token, mirrors the principal into the users table,
// and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, mirror UserMirror, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if mirror != nil {
				user := &models.User{
					ID:       claims.UserID,
					Email:    claims.Email,
					FullName: claims.FullName,
					Role:     claims.Role,
				}
				if err := mirror.Upsert(r.Context(), user); err != nil {
					// A duplicate email means the address is already mirrored
					// under a different principal id.
					if db.IsUniqueViolation(err, "") {
						responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email belongs to another account"))
						return
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mirror principal"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			ctx = context.WithValue(ctx, ctxEmail, claims.Email)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID.String(),
					"actor_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
