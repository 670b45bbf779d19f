package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (uint, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen uint
	err := mw(func(c echo.Context) error {
		seen = UserID(c)
		return nil
	})(c)
	return seen, err
}

func signed(t *testing.T, secret string, claims *models.JwtCustomClaims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	mw := JWTAuthMiddleware(secret)
	valid := &models.JwtCustomClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	id, err := runMiddleware(t, mw, "Bearer "+signed(t, secret, valid, jwt.SigningMethodHS256))
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"wrong secret":   "Bearer " + signed(t, "other", valid, jwt.SigningMethodHS256),
		"no user id":     "Bearer " + signed(t, secret, &models.JwtCustomClaims{}, jwt.SigningMethodHS256),
		"expired": "Bearer " + signed(t, secret, &models.JwtCustomClaims{
			UserID: 7,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}, jwt.SigningMethodHS256),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runMiddleware(t, mw, header)
			assert.ErrorIs(t, err, apperrors.ErrAuthentication)
		})
	}
}

type stubVerifier map[string]string

func (s stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := s[idToken]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: uid}, nil
}

type stubUsers map[string]uint

func (s stubUsers) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	id, ok := s[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.User{ID: id}, nil
}

func TestFirebaseAuthMiddlewareResolvesLocalUser(t *testing.T) {
	mw := FirebaseAuthMiddleware(
		stubVerifier{"good": "uid-1", "orphan": "uid-2"},
		stubUsers{"uid-1": 42},
	)

	id, err := runMiddleware(t, mw, "Bearer good")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = runMiddleware(t, mw, "Bearer orphan")
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)

	_, err = runMiddleware(t, mw, "Bearer forged")
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
}
