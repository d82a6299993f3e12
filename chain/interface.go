package chain

import (
	"context"
	"errors"

	"github.com/Qudusayo/quotal/reqnet"
)

// ErrUnsupportedPaymentNetwork is returned when a request's payment-network
// extension is not one this service can settle. Callers branch on it with
// errors.Is instead of inspecting error text.
var ErrUnsupportedPaymentNetwork = errors.New("unsupported payment network")

// Transaction is a submitted on-chain transaction.
type Transaction interface {
	Hash() string
	// Wait blocks until the transaction has reached the given confirmation
	// depth, or fails with an error if it reverted or the context is done.
	Wait(ctx context.Context, confirmations uint64) error
}

// PaymentClientWrapper is the wrapper interface over the on-chain payment
// processor: ERC-20 allowance queries, approval transactions and fee-proxy
// payment transactions. The allowance query is always answered fresh from the
// chain, never from a cache, because allowance can be changed by any other
// transaction at any time.
type PaymentClientWrapper interface {
	HasErc20Approval(ctx context.Context, request *reqnet.Request, payerAddress string) (bool, error)
	ApproveErc20(ctx context.Context, request *reqnet.Request, signer *Signer) (Transaction, error)
	PayRequest(ctx context.Context, request *reqnet.Request, signer *Signer) (Transaction, error)
}
