package reqnet

import (
	"fmt"
	"math/big"
)

// Identity identifies a payment actor on the request network.
type Identity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Currency describes the invoiced token: type (ERC20), token address and the
// network it lives on.
type Currency struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Network string `json:"network"`
}

// PaymentNetwork carries the payment-network extension of a request, i.e.
// which on-chain mechanism settles it and with which parameters.
type PaymentNetwork struct {
	ID         string                   `json:"id"`
	Parameters PaymentNetworkParameters `json:"parameters"`
}

type PaymentNetworkParameters struct {
	PaymentNetworkName string `json:"paymentNetworkName"`
	PaymentAddress     string `json:"paymentAddress"`
	FeeAddress         string `json:"feeAddress"`
	FeeAmount          string `json:"feeAmount"`
}

type Tax struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
}

// InvoiceItem is a single invoice line. UnitPrice is a decimal string in the
// token's smallest unit.
type InvoiceItem struct {
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Discount  string `json:"discount"`
	Tax       Tax    `json:"tax"`
	Currency  string `json:"currency"`
}

type PaymentTerms struct {
	DueDate string `json:"dueDate"`
}

// ContentData is the free-form invoice content attached to a request.
type ContentData struct {
	InvoiceNumber string        `json:"invoiceNumber"`
	CreationDate  string        `json:"creationDate"`
	PaymentTerms  PaymentTerms  `json:"paymentTerms"`
	InvoiceItems  []InvoiceItem `json:"invoiceItems"`
	Memo          string        `json:"memo,omitempty"`
}

// Balance is the gateway's view of how much of the expected amount has been
// transferred on-chain so far.
type Balance struct {
	Balance string `json:"balance"`
}

// Request is an invoice record as tracked by the request network. The core
// terms are immutable after creation; only the balance moves, and only through
// confirmed on-chain transfers observed by the gateway.
type Request struct {
	RequestID        string         `json:"requestId"`
	Currency         Currency       `json:"currencyInfo"`
	ExpectedAmount   string         `json:"expectedAmount"`
	Payee            Identity       `json:"payee"`
	Payer            Identity       `json:"payer"`
	Timestamp        int64          `json:"timestamp"`
	State            string         `json:"state"`
	Balance          *Balance       `json:"balance,omitempty"`
	ContentData      ContentData    `json:"contentData"`
	PaymentNetwork   PaymentNetwork `json:"paymentNetwork"`
	PaymentReference string         `json:"paymentReference,omitempty"`
}

// BigExpectedAmount parses the expected amount into a big integer.
func (r *Request) BigExpectedAmount() (*big.Int, error) {
	return parseAmount(r.ExpectedAmount)
}

// BigBalance parses the current balance into a big integer. A request without
// a balance yet reports zero.
func (r *Request) BigBalance() (*big.Int, error) {
	if r.Balance == nil || r.Balance.Balance == "" {
		return big.NewInt(0), nil
	}
	return parseAmount(r.Balance.Balance)
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

// CreateRequestParams are the terms of a new request. The gateway persists
// them and returns the created request with its assigned request id.
type CreateRequestParams struct {
	Currency       Currency       `json:"currency"`
	ExpectedAmount string         `json:"expectedAmount"`
	Payee          Identity       `json:"payee"`
	Payer          Identity       `json:"payer"`
	Timestamp      int64          `json:"timestamp"`
	PaymentNetwork PaymentNetwork `json:"paymentNetwork"`
	ContentData    ContentData    `json:"contentData"`
	Signer         Identity       `json:"signer"`
}
