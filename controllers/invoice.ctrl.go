package controllers

import (
	"math/big"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"

	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/currency"
	"github.com/Qudusayo/quotal/db/models"
	"github.com/Qudusayo/quotal/lib/responses"
	"github.com/Qudusayo/quotal/lib/service"
	"github.com/Qudusayo/quotal/reqnet"
)

// InvoiceController : Invoice controller struct
type InvoiceController struct {
	svc *service.QuotalService
}

func NewInvoiceController(svc *service.QuotalService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type Invoice struct {
	RequestID      string               `json:"request_id"`
	InvoiceNumber  string               `json:"invoice_number"`
	Payee          string               `json:"payee"`
	Payer          string               `json:"payer"`
	ChainID        string               `json:"chain_id"`
	Network        string               `json:"network"`
	TokenAddress   string               `json:"token_address"`
	TokenSymbol    string               `json:"token_symbol,omitempty"`
	ExpectedAmount string               `json:"expected_amount"`
	Amount         string               `json:"amount"`
	Balance        string               `json:"balance"`
	Status         string               `json:"status"`
	State          string               `json:"state"`
	Memo           string               `json:"memo,omitempty"`
	Items          []reqnet.InvoiceItem `json:"items,omitempty"`
	IsPaid         bool                 `json:"is_paid"`
	IssuedAt       time.Time            `json:"issued_at"`
	DueDate        time.Time            `json:"due_date"`
	SettledAt      time.Time            `json:"settled_at"`
}

type AddInvoiceRequestBody struct {
	Payer          string               `json:"payer" validate:"required,eth_addr"`
	TokenAddress   string               `json:"token_address" validate:"required,eth_addr"`
	Network        string               `json:"network" validate:"required"`
	PaymentAddress string               `json:"payment_address" validate:"omitempty,eth_addr"`
	FeeAddress     string               `json:"fee_address" validate:"omitempty,eth_addr"`
	FeeAmount      string               `json:"fee_amount" validate:"omitempty,number"`
	Items          []reqnet.InvoiceItem `json:"items" validate:"required,min=1,dive"`
	Memo           string               `json:"memo"`
	DueDate        string               `json:"due_date"`
}

type GetInvoicesResponseBody struct {
	Invoices []Invoice `json:"invoices"`
}

// AddInvoice godoc
// @Summary      Create a new invoice
// @Description  Creates an ERC-20 invoice on the request network with the caller as payee
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        invoice  body      AddInvoiceRequestBody  True  "Add Invoice"
// @Success      200      {object}  Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Router       /v2/invoices [post]
// @Security     OAuth2Password
func (controller *InvoiceController) AddInvoice(c echo.Context) error {
	payee := c.Get("UserAddress").(string)
	var body AddInvoiceRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load addinvoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid addinvoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	c.Logger().Infof("Adding invoice: payee:%s payer:%s token:%s network:%s items:%d",
		payee, body.Payer, body.TokenAddress, body.Network, len(body.Items))

	// clients submit display amounts; the network stores smallest units
	decimals := currency.Decimals(body.Network, body.TokenAddress)
	for i := range body.Items {
		unitPrice, err := currency.ParseUnits(body.Items[i].UnitPrice, decimals)
		if err != nil {
			c.Logger().Errorf("Invalid unit price in addinvoice request body: %v", err)
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		body.Items[i].UnitPrice = unitPrice.String()
		if body.Items[i].Discount != "" {
			discount, err := currency.ParseUnits(body.Items[i].Discount, decimals)
			if err != nil {
				c.Logger().Errorf("Invalid discount in addinvoice request body: %v", err)
				return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
			}
			body.Items[i].Discount = discount.String()
		}
	}

	invoice, err := controller.svc.CreateInvoice(c.Request().Context(), payee, service.CreateInvoiceParams{
		Payer:          body.Payer,
		TokenAddress:   body.TokenAddress,
		Network:        body.Network,
		PaymentAddress: body.PaymentAddress,
		FeeAddress:     body.FeeAddress,
		FeeAmount:      body.FeeAmount,
		Items:          body.Items,
		Memo:           body.Memo,
		DueDate:        body.DueDate,
	})
	if err != nil {
		c.Logger().Errorf("Error creating invoice: payee:%s error: %v", payee, err)
		sentry.CaptureException(err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	response := invoiceResponse(invoice)
	return c.JSON(http.StatusOK, &response)
}

// GetInvoices godoc
// @Summary      Retrieve invoices
// @Description  Returns the caller's invoices, newest first
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        payer   query  string  false  "Filter by payer address"
// @Param        status  query  string  false  "Filter by payment status (Created or Paid)"
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoices(c echo.Context) error {
	payee := c.Get("UserAddress").(string)

	invoices, err := controller.svc.InvoicesFor(c.Request().Context(), payee, service.ListInvoicesOptions{
		Payer: c.QueryParam("payer"),
		State: c.QueryParam("status"),
	})
	if err != nil {
		c.Logger().Errorf("Failed to list invoices: payee:%s error: %v", payee, err)
		return c.JSON(http.StatusBadGateway, responses.GatewayUnavailableError)
	}

	response := make([]Invoice, len(invoices))
	for i := range invoices {
		response[i] = invoiceResponse(&invoices[i])
	}
	return c.JSON(http.StatusOK, &GetInvoicesResponseBody{Invoices: response})
}

// GetInvoice godoc
// @Summary      Retrieve a single invoice
// @Description  Refreshes and returns one invoice by its request id
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        request_id  path  string  true  "Request ID"
// @Success      200  {object}  Invoice
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{request_id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	requestID := c.Param("request_id")

	invoice, _, err := controller.svc.RefreshInvoice(c.Request().Context(), requestID)
	if err != nil {
		c.Logger().Errorf("Failed to refresh invoice: request_id:%s error: %v", requestID, err)
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}

	response := invoiceResponse(invoice)
	return c.JSON(http.StatusOK, &response)
}

func invoiceResponse(invoice *models.Invoice) Invoice {
	decimals := currency.Decimals(invoice.Network, invoice.TokenAddress)
	balance := invoice.Balance
	if balance == "" {
		balance = "0"
	}
	return Invoice{
		RequestID:      invoice.RequestID,
		InvoiceNumber:  invoice.InvoiceNumber,
		Payee:          invoice.Payee,
		Payer:          invoice.Payer,
		ChainID:        currency.ChainID(invoice.Network),
		Network:        invoice.Network,
		TokenAddress:   invoice.TokenAddress,
		TokenSymbol:    currency.Symbol(invoice.Network, invoice.TokenAddress),
		ExpectedAmount: invoice.ExpectedAmount,
		Amount:         formatAmount(invoice.ExpectedAmount, decimals),
		Balance:        balance,
		Status:         invoice.Status(),
		State:          invoice.State,
		Memo:           invoice.Memo,
		Items:          invoice.Items,
		IsPaid:         invoice.Status() == common.StatusPaid,
		IssuedAt:       invoice.IssuedAt.Time,
		DueDate:        invoice.DueDate.Time,
		SettledAt:      invoice.SettledAt.Time,
	}
}

// formatAmount renders a smallest-unit amount as a human decimal string.
func formatAmount(amount string, decimals int) string {
	parsed, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return amount
	}
	return currency.FormatUnits(parsed, decimals)
}
