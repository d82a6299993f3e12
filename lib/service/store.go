package service

import (
	"context"

	"github.com/Qudusayo/quotal/db/models"
)

// ListInvoicesOptions narrows a mirror listing. Zero values mean no filter.
type ListInvoicesOptions struct {
	Payer string
	State string
	Limit int
}

// InvoiceStore is the persistence surface the service needs. The bun-backed
// implementation lives in the db package; tests substitute an in-memory one.
type InvoiceStore interface {
	UpsertInvoice(ctx context.Context, invoice *models.Invoice) error
	GetInvoiceByRequestID(ctx context.Context, requestID string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, payee string, opts ListInvoicesOptions) ([]models.Invoice, error)
	ListUnsettledInvoices(ctx context.Context) ([]models.Invoice, error)
	CountInvoices(ctx context.Context, payee string) (int, error)
	SavePaymentAttempt(ctx context.Context, attempt *models.PaymentAttempt) error
	GetOrCreateWallet(ctx context.Context, address, nonce string) (*models.Wallet, error)
	RotateWalletNonce(ctx context.Context, address, nonce string) error
}
