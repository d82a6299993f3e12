package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/db/models"
	"github.com/Qudusayo/quotal/lib/service"
)

// Store is the bun-backed implementation of the service's invoice store.
type Store struct {
	DB *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{DB: db}
}

var _ service.InvoiceStore = (*Store)(nil)

// UpsertInvoice inserts the mirrored invoice or refreshes the mutable fields
// (balance, state, settled timestamp) of the existing row. Core terms are
// never rewritten.
func (s *Store) UpsertInvoice(ctx context.Context, invoice *models.Invoice) error {
	_, err := s.DB.NewInsert().
		Model(invoice).
		On("CONFLICT (request_id) DO UPDATE").
		Set("balance = EXCLUDED.balance").
		Set("state = EXCLUDED.state").
		Set("settled_at = EXCLUDED.settled_at").
		Set("updated_at = ?", time.Now()).
		Exec(ctx)
	return err
}

func (s *Store) GetInvoiceByRequestID(ctx context.Context, requestID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.DB.NewSelect().Model(&invoice).Where("request_id = ?", requestID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) ListInvoices(ctx context.Context, payee string, opts service.ListInvoicesOptions) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	q := s.DB.NewSelect().
		Model(&invoices).
		Where("lower(payee) = lower(?)", payee).
		OrderExpr("timestamp DESC")
	if opts.Payer != "" {
		q = q.Where("lower(payer) = lower(?)", opts.Payer)
	}
	// the filter uses the derived status; settled rows are exactly the paid ones
	switch opts.State {
	case common.StatusPaid:
		q = q.Where("state = ?", common.InvoiceStateSettled)
	case common.StatusCreated:
		q = q.Where("state != ?", common.InvoiceStateSettled)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	err := q.Scan(ctx)
	return invoices, err
}

func (s *Store) ListUnsettledInvoices(ctx context.Context) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	err := s.DB.NewSelect().
		Model(&invoices).
		Where("state != ?", common.InvoiceStateSettled).
		OrderExpr("timestamp ASC").
		Scan(ctx)
	return invoices, err
}

func (s *Store) CountInvoices(ctx context.Context, payee string) (int, error) {
	return s.DB.NewSelect().
		Model((*models.Invoice)(nil)).
		Where("lower(payee) = lower(?)", payee).
		Count(ctx)
}

// SavePaymentAttempt inserts a new attempt or updates the row in place as the
// flow transitions.
func (s *Store) SavePaymentAttempt(ctx context.Context, attempt *models.PaymentAttempt) error {
	if attempt.ID == 0 {
		_, err := s.DB.NewInsert().Model(attempt).Exec(ctx)
		return err
	}
	_, err := s.DB.NewUpdate().Model(attempt).WherePK().Exec(ctx)
	return err
}

// GetOrCreateWallet returns the wallet row for an address, creating it with
// the given nonce when the address has never been seen.
func (s *Store) GetOrCreateWallet(ctx context.Context, address, nonce string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.DB.NewSelect().Model(&wallet).Where("lower(address) = lower(?)", address).Limit(1).Scan(ctx)
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	wallet = models.Wallet{Address: address, Nonce: nonce}
	if _, err := s.DB.NewInsert().Model(&wallet).Exec(ctx); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *Store) RotateWalletNonce(ctx context.Context, address, nonce string) error {
	_, err := s.DB.NewUpdate().
		Model((*models.Wallet)(nil)).
		Set("nonce = ?", nonce).
		Set("updated_at = ?", time.Now()).
		Where("lower(address) = lower(?)", address).
		Exec(ctx)
	return err
}
