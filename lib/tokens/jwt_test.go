package tokens

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

func TestParseTokenReturnsAddress(t *testing.T) {
	secret := []byte("secret")
	token, err := GenerateAccessToken(secret, 3600, testAddress)
	require.NoError(t, err)

	address, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, testAddress, address)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken([]byte("secret"), 3600, testAddress)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other"), token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	secret := []byte("secret")
	token, err := GenerateAccessToken(secret, -60, testAddress)
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	assert.Error(t, err)
}

func TestMiddlewareSetsUserAddress(t *testing.T) {
	secret := []byte("secret")
	token, err := GenerateAccessToken(secret, 3600, testAddress)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(secret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, testAddress, c.Get("UserAddress"))
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware([]byte("secret"))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
