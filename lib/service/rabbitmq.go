package service

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Qudusayo/quotal/db/models"
)

// SubscribeSettledInvoices is the subscription hook given to the rabbitmq
// publisher.
func (svc *QuotalService) SubscribeSettledInvoices() (chan models.Invoice, error) {
	settled := make(chan models.Invoice)
	svc.InvoicePubSub.Subscribe(SettledInvoicesTopic, settled)
	return settled, nil
}

type InvoiceEvent struct {
	RequestID      string `json:"request_id"`
	InvoiceNumber  string `json:"invoice_number"`
	Payee          string `json:"payee"`
	Payer          string `json:"payer"`
	Network        string `json:"network"`
	TokenAddress   string `json:"token_address"`
	ExpectedAmount string `json:"expected_amount"`
	Balance        string `json:"balance"`
	State          string `json:"state"`
	SettledAt      int64  `json:"settled_at,omitempty"`
}

// EncodeInvoiceEvent serializes an invoice for the message broker, keeping
// the wire payload independent of the bun model.
func (svc *QuotalService) EncodeInvoiceEvent(ctx context.Context, w io.Writer, invoice models.Invoice) error {
	event := InvoiceEvent{
		RequestID:      invoice.RequestID,
		InvoiceNumber:  invoice.InvoiceNumber,
		Payee:          invoice.Payee,
		Payer:          invoice.Payer,
		Network:        invoice.Network,
		TokenAddress:   invoice.TokenAddress,
		ExpectedAmount: invoice.ExpectedAmount,
		Balance:        invoice.Balance,
		State:          invoice.State,
	}
	if !invoice.SettledAt.IsZero() {
		event.SettledAt = invoice.SettledAt.Time.Unix()
	}
	return json.NewEncoder(w).Encode(event)
}
