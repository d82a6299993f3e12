package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Qudusayo/quotal/chain"
	"github.com/Qudusayo/quotal/lib/responses"
	"github.com/Qudusayo/quotal/lib/service"
)

// PayInvoiceController : Pay invoice controller struct
type PayInvoiceController struct {
	svc *service.QuotalService
}

func NewPayInvoiceController(svc *service.QuotalService) *PayInvoiceController {
	return &PayInvoiceController{svc: svc}
}

type PayInvoiceResponseBody struct {
	RequestID      string `json:"request_id"`
	State          string `json:"state"`
	ApprovalTxHash string `json:"approval_tx_hash,omitempty"`
	PaymentTxHash  string `json:"payment_tx_hash,omitempty"`
}

// PayInvoice godoc
// @Summary      Pay an invoice
// @Description  Runs the ERC-20 approval and fee-proxy payment flow for a request
// @Accept       json
// @Produce      json
// @Tags         Payment
// @Param        request_id  path  string  true  "Request ID"
// @Success      200  {object}  PayInvoiceResponseBody
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      403  {object}  responses.ErrorResponse
// @Failure      409  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Failure      504  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{request_id}/pay [post]
// @Security     OAuth2Password
func (controller *PayInvoiceController) PayInvoice(c echo.Context) error {
	caller := c.Get("UserAddress").(string)
	requestID := c.Param("request_id")

	c.Logger().Infof("Paying invoice: request_id:%s caller:%s", requestID, caller)

	attempt, err := controller.svc.PayInvoice(c.Request().Context(), requestID, caller)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSigner):
			return c.JSON(http.StatusBadRequest, responses.NoSignerConfiguredError)
		case errors.Is(err, service.ErrPaymentInFlight):
			return c.JSON(http.StatusConflict, responses.PaymentInFlightError)
		case errors.Is(err, service.ErrNotInvoicePayer):
			return c.JSON(http.StatusForbidden, responses.NotInvoicePayerError)
		case errors.Is(err, chain.ErrUnsupportedPaymentNetwork):
			return c.JSON(http.StatusBadRequest, responses.UnsupportedPaymentNetworkError)
		case errors.Is(err, service.ErrPaymentTimedOut):
			return c.JSON(http.StatusGatewayTimeout, responses.PaymentTimedOutError)
		}
		c.Logger().Errorf("Payment failed: request_id:%s caller:%s error: %v", requestID, caller, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &PayInvoiceResponseBody{
		RequestID:      attempt.RequestID,
		State:          attempt.State,
		ApprovalTxHash: attempt.ApprovalTxHash,
		PaymentTxHash:  attempt.PaymentTxHash,
	})
}
