package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Qudusayo/quotal/lib/responses"
	"github.com/Qudusayo/quotal/lib/service"
)

// AuthController : AuthController struct
type AuthController struct {
	svc *service.QuotalService
}

func NewAuthController(svc *service.QuotalService) *AuthController {
	return &AuthController{
		svc: svc,
	}
}

type NonceRequestBody struct {
	Address string `json:"address" validate:"required,eth_addr"`
}
type NonceResponseBody struct {
	Address string `json:"address"`
	Nonce   string `json:"nonce"`
}
type AuthRequestBody struct {
	Address   string `json:"address" validate:"required,eth_addr"`
	Signature string `json:"signature" validate:"required"`
}
type AuthResponseBody struct {
	AccessToken string `json:"access_token"`
}

// Nonce godoc
// @Summary      Request a login nonce
// @Description  Returns the nonce the wallet must sign to authenticate
// @Accept       json
// @Produce      json
// @Tags         Account
// @Param        NonceRequest  body      NonceRequestBody  True  "Wallet address"
// @Success      200           {object}  NonceResponseBody
// @Failure      400           {object}  responses.ErrorResponse
// @Failure      500           {object}  responses.ErrorResponse
// @Router       /v2/auth/nonce [post]
func (controller *AuthController) Nonce(c echo.Context) error {
	var body NonceRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load nonce request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	nonce, err := controller.svc.NonceFor(c.Request().Context(), body.Address)
	if err != nil {
		c.Logger().Errorf("Failed to get nonce: address:%s error: %v", body.Address, err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	return c.JSON(http.StatusOK, &NonceResponseBody{
		Address: body.Address,
		Nonce:   nonce,
	})
}

// Auth godoc
// @Summary      Authenticate with a wallet signature
// @Description  Exchanges a personal-sign signature over the login nonce for an access token
// @Accept       json
// @Produce      json
// @Tags         Account
// @Param        AuthRequest  body      AuthRequestBody  True  "Address and signature"
// @Success      200          {object}  AuthResponseBody
// @Failure      400          {object}  responses.ErrorResponse
// @Failure      401          {object}  responses.ErrorResponse
// @Router       /v2/auth [post]
func (controller *AuthController) Auth(c echo.Context) error {
	var body AuthRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load auth request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	accessToken, err := controller.svc.GenerateToken(c.Request().Context(), body.Address, body.Signature)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}

	return c.JSON(http.StatusOK, &AuthResponseBody{
		AccessToken: accessToken,
	})
}
