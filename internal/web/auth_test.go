package web

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenAuthorizer(t *testing.T) {
	open := TokenAuthorizer{}
	assert.NoError(t, open.Authorize(httptest.NewRequest("GET", "/", nil)))

	a := TokenAuthorizer{Token: "abc"}
	r := httptest.NewRequest("GET", "/", nil)
	assert.Error(t, a.Authorize(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Error(t, a.Authorize(r))

	r.Header.Set("Authorization", "bearer abc")
	assert.NoError(t, a.Authorize(r))
}
