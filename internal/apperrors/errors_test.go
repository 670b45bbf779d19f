package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("group op: %w", Conflict("group creator cannot be removed"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrAuthorization))
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestServerKeepsExistingKind(t *testing.T) {
	original := Forbidden("only the sender may delete a message")
	assert.Same(t, original, Server(original, "ignored"))

	wrapped := Server(errors.New("connection reset"), "failed to save")
	assert.Equal(t, KindServer, KindOf(wrapped))
	assert.Nil(t, Server(nil, "nothing"))
}

func TestLookupMapsRecordNotFound(t *testing.T) {
	err := Lookup(gorm.ErrRecordNotFound, "group")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "[not_found] group not found", err.Error())

	assert.Equal(t, KindServer, KindOf(Lookup(errors.New("boom"), "group")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindValidation:     http.StatusBadRequest,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindServer:         http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), string(kind))
	}
	assert.Equal(t, KindServer, KindOf(errors.New("plain")))
}
