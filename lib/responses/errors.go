package responses

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var InvoiceNotFoundError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "invoice not found",
	HttpStatusCode: 404,
}

var NotInvoicePayerError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "only the invoice payer can pay this invoice",
	HttpStatusCode: 403,
}

var PaymentInFlightError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "a payment for this invoice is already in flight",
	HttpStatusCode: 409,
}

var PaymentTimedOutError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "payment submitted but balance confirmation timed out. Check the invoice status later",
	HttpStatusCode: 504,
}

var UnsupportedPaymentNetworkError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "unsupported payment network for this invoice",
	HttpStatusCode: 400,
}

var NoSignerConfiguredError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "no payer wallet configured on this server",
	HttpStatusCode: 400,
}

var GatewayUnavailableError = ErrorResponse{
	Error:          true,
	Code:           7,
	Message:        "request gateway unavailable. Please try again later",
	HttpStatusCode: 502,
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil && isErrAllowedForSentry(err) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("UserAddress", c.Get("UserAddress"))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
		return
	}
	c.JSON(http.StatusInternalServerError, GeneralServerError)
}

// bad-auth failures are routine and would drown out real errors in sentry
func isErrAllowedForSentry(err error) bool {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return true
	}
	m, ok := he.Message.(echo.Map)
	if !ok {
		return true
	}
	code, ok := m["code"].(int)
	if !ok {
		return true
	}
	return code != BadAuthError.Code
}
