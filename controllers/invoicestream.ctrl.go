package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Qudusayo/quotal/db/models"
	"github.com/Qudusayo/quotal/lib/service"
	"github.com/Qudusayo/quotal/lib/tokens"
)

// InvoiceStreamController : InvoiceStreamController struct
type InvoiceStreamController struct {
	svc *service.QuotalService
}

type InvoiceEventWrapper struct {
	Type    string   `json:"type"`
	Invoice *Invoice `json:"invoice,omitempty"`
}

func NewInvoiceStreamController(svc *service.QuotalService) *InvoiceStreamController {
	return &InvoiceStreamController{svc: svc}
}

// StreamInvoices streams settled invoices to the payee over a websocket.
// Websocket clients can't set headers, so the token travels as a query param.
func (controller *InvoiceStreamController) StreamInvoices(c echo.Context) error {
	address, err := tokens.ParseToken(controller.svc.Config.JWTSecret, c.QueryParam("token"))
	if err != nil {
		return err
	}
	invoiceChan := make(chan models.Invoice)
	subId := controller.svc.InvoicePubSub.Subscribe(address, invoiceChan)

	upgrader := websocket.Upgrader{}
	upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		controller.svc.InvoicePubSub.Unsubscribe(subId, address)
		return err
	}
	defer ws.Close()

	//start listening for close messages
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				return
			}
		}
	}()

	//start with keepalive message
	err = ws.WriteJSON(&InvoiceEventWrapper{Type: "keepalive"})
	if err != nil {
		controller.svc.Logger.Error(err)
		controller.svc.InvoicePubSub.Unsubscribe(subId, address)
		return err
	}
SocketLoop:
	for {
		select {
		case <-done:
			break SocketLoop
		case <-ticker.C:
			err := ws.WriteJSON(&InvoiceEventWrapper{Type: "keepalive"})
			if err != nil {
				controller.svc.Logger.Error(err)
				break SocketLoop
			}
		case invoice := <-invoiceChan:
			response := invoiceResponse(&invoice)
			err := ws.WriteJSON(&InvoiceEventWrapper{
				Type:    "invoice",
				Invoice: &response,
			})
			if err != nil {
				controller.svc.Logger.Error(err)
				break SocketLoop
			}
		}
	}
	controller.svc.InvoicePubSub.Unsubscribe(subId, address)
	return nil
}
