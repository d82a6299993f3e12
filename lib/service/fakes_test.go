package service

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/labstack/gommon/log"
	"github.com/ziflex/lecho/v3"

	"github.com/Qudusayo/quotal/chain"
	"github.com/Qudusayo/quotal/db/models"
	"github.com/Qudusayo/quotal/reqnet"
)

var testLogger = lecho.New(os.Stdout, lecho.WithLevel(log.ERROR))

type fakeStore struct {
	mu            sync.Mutex
	invoices      map[string]*models.Invoice
	wallets       map[string]*models.Wallet
	attemptStates []string
	nextID        int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		invoices: map[string]*models.Invoice{},
		wallets:  map[string]*models.Wallet{},
	}
}

func (s *fakeStore) UpsertInvoice(ctx context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *invoice
	s.invoices[invoice.RequestID] = &copied
	return nil
}

func (s *fakeStore) GetInvoiceByRequestID(ctx context.Context, requestID string) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[requestID]
	if !ok {
		return nil, fmt.Errorf("invoice %s not found", requestID)
	}
	copied := *invoice
	return &copied, nil
}

func (s *fakeStore) ListInvoices(ctx context.Context, payee string, opts ListInvoicesOptions) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoices := []models.Invoice{}
	for _, invoice := range s.invoices {
		if invoice.Payee == payee {
			invoices = append(invoices, *invoice)
		}
	}
	return invoices, nil
}

func (s *fakeStore) ListUnsettledInvoices(ctx context.Context) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoices := []models.Invoice{}
	for _, invoice := range s.invoices {
		if invoice.State != "settled" {
			invoices = append(invoices, *invoice)
		}
	}
	return invoices, nil
}

func (s *fakeStore) CountInvoices(ctx context.Context, payee string) (int, error) {
	invoices, _ := s.ListInvoices(ctx, payee, ListInvoicesOptions{})
	return len(invoices), nil
}

func (s *fakeStore) SavePaymentAttempt(ctx context.Context, attempt *models.PaymentAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt.ID == 0 {
		s.nextID++
		attempt.ID = s.nextID
	}
	s.attemptStates = append(s.attemptStates, attempt.State)
	return nil
}

func (s *fakeStore) GetOrCreateWallet(ctx context.Context, address, nonce string) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wallet, ok := s.wallets[address]; ok {
		return wallet, nil
	}
	wallet := &models.Wallet{Address: address, Nonce: nonce}
	s.wallets[address] = wallet
	return wallet, nil
}

func (s *fakeStore) RotateWalletNonce(ctx context.Context, address, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wallet, ok := s.wallets[address]
	if !ok {
		return fmt.Errorf("wallet %s not found", address)
	}
	wallet.Nonce = nonce
	return nil
}

// fakeGateway serves a single request, with the reported balance advancing
// through balances on every FromRequestID call.
type fakeGateway struct {
	mu        sync.Mutex
	request   reqnet.Request
	balances  []string
	fetches   int
	created   []reqnet.CreateRequestParams
	byAddress []reqnet.Request
}

func (g *fakeGateway) CreateRequest(ctx context.Context, params reqnet.CreateRequestParams) (*reqnet.Request, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, params)
	g.request = reqnet.Request{
		RequestID:      fmt.Sprintf("req-%d", len(g.created)),
		Currency:       params.Currency,
		ExpectedAmount: params.ExpectedAmount,
		Payee:          params.Payee,
		Payer:          params.Payer,
		Timestamp:      params.Timestamp,
		State:          "pending",
		ContentData:    params.ContentData,
		PaymentNetwork: params.PaymentNetwork,
	}
	copied := g.request
	return &copied, nil
}

func (g *fakeGateway) WaitForConfirmation(ctx context.Context, requestID string) (*reqnet.Request, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.request.State = "created"
	copied := g.request
	return &copied, nil
}

func (g *fakeGateway) FromIdentity(ctx context.Context, address string) ([]reqnet.Request, error) {
	return g.byAddress, nil
}

func (g *fakeGateway) FromRequestID(ctx context.Context, requestID string) (*reqnet.Request, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	copied := g.request
	if len(g.balances) > 0 {
		i := g.fetches
		if i >= len(g.balances) {
			i = len(g.balances) - 1
		}
		copied.Balance = &reqnet.Balance{Balance: g.balances[i]}
	}
	g.fetches++
	return &copied, nil
}

type fakeTransaction struct {
	hash    string
	waitErr error
}

func (t *fakeTransaction) Hash() string { return t.hash }

func (t *fakeTransaction) Wait(ctx context.Context, confirmations uint64) error {
	return t.waitErr
}

type fakeChainClient struct {
	mu         sync.Mutex
	approved   bool
	approveErr error
	payErr     error
	// call order, "approval-check" / "approve" / "pay"
	calls []string
}

func (c *fakeChainClient) HasErc20Approval(ctx context.Context, request *reqnet.Request, payerAddress string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "approval-check")
	return c.approved, nil
}

func (c *fakeChainClient) ApproveErc20(ctx context.Context, request *reqnet.Request, signer *chain.Signer) (chain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "approve")
	if c.approveErr != nil {
		return nil, c.approveErr
	}
	c.approved = true
	return &fakeTransaction{hash: "0xapproval"}, nil
}

func (c *fakeChainClient) PayRequest(ctx context.Context, request *reqnet.Request, signer *chain.Signer) (chain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "pay")
	if c.payErr != nil {
		return nil, c.payErr
	}
	return &fakeTransaction{hash: "0xpayment"}, nil
}
