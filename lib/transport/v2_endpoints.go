package transport

import (
	"github.com/labstack/echo/v4"

	"github.com/Qudusayo/quotal/controllers"
	"github.com/Qudusayo/quotal/lib/service"
)

func RegisterV2Endpoints(svc *service.QuotalService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	e.GET("/healthz", controllers.NewHealthController().Check)

	authCtrl := controllers.NewAuthController(svc)
	e.POST("/v2/auth/nonce", authCtrl.Nonce, strictRateLimitMiddleware)
	e.POST("/v2/auth", authCtrl.Auth, strictRateLimitMiddleware)

	invoiceCtrl := controllers.NewInvoiceController(svc)
	secured.POST("/v2/invoices", invoiceCtrl.AddInvoice)
	secured.GET("/v2/invoices", invoiceCtrl.GetInvoices)
	secured.GET("/v2/invoices/:request_id", invoiceCtrl.GetInvoice)
	securedWithStrictRateLimit.POST("/v2/invoices/:request_id/pay", controllers.NewPayInvoiceController(svc).PayInvoice)

	// token is validated in the handler, websocket clients can't set headers
	e.GET("/v2/invoices/stream", controllers.NewInvoiceStreamController(svc).StreamInvoices)
}
