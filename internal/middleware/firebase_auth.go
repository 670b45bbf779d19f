package middleware

import (
	"context"
	"errors"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserResolver maps a Firebase UID to the local user record.
type UserResolver interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens and resolves the UID to
// the local user id.
func FirebaseAuthMiddleware(verifier TokenVerifier, users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperrors.Unauthenticated("Authorization header must be in Bearer format")
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return apperrors.Unauthenticated("invalid or expired ID token")
			}

			user, err := users.GetUserByFirebaseUID(ctx, token.UID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Unauthenticated("no account for this identity")
			}
			if err != nil {
				return apperrors.Server(err, "failed to resolve identity")
			}

			c.Set("firebaseUID", token.UID)
			c.Set(UserIDKey, user.ID)
			return next(c)
		}
	}
}
