package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/getsentry/sentry-go"

	"github.com/Qudusayo/quotal/chain"
	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/db/models"
	"github.com/Qudusayo/quotal/reqnet"
)

var (
	// ErrPaymentInFlight is returned when a payment for the same request is
	// already running. One payment per request at a time.
	ErrPaymentInFlight = errors.New("payment already in flight for this request")
	// ErrPaymentTimedOut is returned when the payment transaction confirmed
	// but the gateway did not report the balance in time. The payment may
	// still settle; the reconciliation routine picks it up.
	ErrPaymentTimedOut = errors.New("timed out waiting for balance confirmation")
	// ErrNotInvoicePayer is returned when the caller is not the payer the
	// invoice names.
	ErrNotInvoicePayer = errors.New("caller is not the invoice payer")
	// ErrNoSigner is returned when no payer wallet is configured.
	ErrNoSigner = errors.New("no payer wallet configured")
)

// PayInvoice runs the full payment flow for a request: approval check,
// approval if needed, fee-proxy payment, then balance confirmation against
// the gateway. Every state transition is persisted on a payment attempt row.
func (svc *QuotalService) PayInvoice(ctx context.Context, requestID, caller string) (*models.PaymentAttempt, error) {
	if svc.Signer == nil {
		return nil, ErrNoSigner
	}
	if !svc.acquireInflight(requestID) {
		return nil, ErrPaymentInFlight
	}
	defer svc.releaseInflight(requestID)

	request, err := svc.Gateway.FromRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	payer := strings.ToLower(request.Payer.Value)
	signerAddress := strings.ToLower(svc.Signer.Address().Hex())
	if payer != strings.ToLower(caller) || payer != signerAddress {
		return nil, ErrNotInvoicePayer
	}

	attempt := &models.PaymentAttempt{
		RequestID: requestID,
		Payer:     payer,
		State:     common.PaymentStateIdle,
	}
	if err := svc.Store.SavePaymentAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	paid, err := svc.requestIsPaid(request)
	if err != nil {
		return attempt, svc.failAttempt(ctx, attempt, err)
	}
	if paid {
		svc.Logger.Infof("Request already paid request_id:%s", requestID)
		return svc.settleAttempt(ctx, attempt, request)
	}

	if _, err := chain.PaymentNetworkExtension(request); err != nil {
		svc.transition(ctx, attempt, common.PaymentStateUnsupportedNetwork)
		return attempt, err
	}

	svc.transition(ctx, attempt, common.PaymentStateCheckingApproval)
	approved, err := svc.Chain.HasErc20Approval(ctx, request, signerAddress)
	if err != nil {
		return attempt, svc.failAttempt(ctx, attempt, err)
	}

	if !approved {
		svc.transition(ctx, attempt, common.PaymentStateApproving)
		approvalTx, err := svc.Chain.ApproveErc20(ctx, request, svc.Signer)
		if err != nil {
			return attempt, svc.failAttempt(ctx, attempt, err)
		}
		attempt.ApprovalTxHash = approvalTx.Hash()
		svc.Logger.Infof("Approval submitted request_id:%s tx:%s", requestID, approvalTx.Hash())
		if err := approvalTx.Wait(ctx, svc.Config.ConfirmationDepth); err != nil {
			return attempt, svc.failAttempt(ctx, attempt, err)
		}
	}

	// re-fetch so the payment is built against the gateway's latest view of
	// the request, not the handle from before the approval wait
	request, err = svc.Gateway.FromRequestID(ctx, requestID)
	if err != nil {
		return attempt, svc.failAttempt(ctx, attempt, err)
	}

	svc.transition(ctx, attempt, common.PaymentStatePaying)
	paymentTx, err := svc.Chain.PayRequest(ctx, request, svc.Signer)
	if err != nil {
		return attempt, svc.failAttempt(ctx, attempt, err)
	}
	attempt.PaymentTxHash = paymentTx.Hash()
	svc.Logger.Infof("Payment submitted request_id:%s tx:%s", requestID, paymentTx.Hash())
	if err := paymentTx.Wait(ctx, svc.Config.ConfirmationDepth); err != nil {
		return attempt, svc.failAttempt(ctx, attempt, err)
	}

	svc.transition(ctx, attempt, common.PaymentStateConfirmingBalance)
	request, err = svc.waitForBalance(ctx, requestID)
	if err != nil {
		if errors.Is(err, ErrPaymentTimedOut) {
			svc.transition(ctx, attempt, common.PaymentStateTimedOut)
			return attempt, err
		}
		return attempt, svc.failAttempt(ctx, attempt, err)
	}

	return svc.settleAttempt(ctx, attempt, request)
}

// waitForBalance polls the gateway until the request's balance covers the
// expected amount. Polling is bounded: past the configured timeout the
// payment is reported as timed out rather than spinning forever.
func (svc *QuotalService) waitForBalance(ctx context.Context, requestID string) (*reqnet.Request, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Duration(svc.Config.BalancePollInterval) * time.Second
	policy.Multiplier = 1
	policy.MaxElapsedTime = time.Duration(svc.Config.BalancePollTimeout) * time.Second

	var request *reqnet.Request
	err := backoff.Retry(func() error {
		fetched, err := svc.Gateway.FromRequestID(ctx, requestID)
		if err != nil {
			svc.Logger.Errorf("Failed to poll request balance request_id:%s %v", requestID, err)
			return err
		}
		paid, err := svc.requestIsPaid(fetched)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !paid {
			return errors.New("balance below expected amount")
		}
		request = fetched
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return nil, permanent.Err
		}
		return nil, ErrPaymentTimedOut
	}
	return request, nil
}

func (svc *QuotalService) requestIsPaid(request *reqnet.Request) (bool, error) {
	expected, err := request.BigExpectedAmount()
	if err != nil {
		return false, err
	}
	balance, err := request.BigBalance()
	if err != nil {
		return false, err
	}
	return common.PaymentStatus(balance, expected) == common.StatusPaid, nil
}

func (svc *QuotalService) settleAttempt(ctx context.Context, attempt *models.PaymentAttempt, request *reqnet.Request) (*models.PaymentAttempt, error) {
	invoice, err := svc.MirrorRequest(ctx, request)
	if err != nil {
		return attempt, svc.failAttempt(ctx, attempt, err)
	}
	svc.transition(ctx, attempt, common.PaymentStatePaid)
	svc.Logger.Infof("Invoice settled request_id:%s payee:%s", invoice.RequestID, invoice.Payee)
	svc.InvoicePubSub.Publish(invoice.Payee, *invoice)
	svc.InvoicePubSub.Publish(SettledInvoicesTopic, *invoice)
	return attempt, nil
}

func (svc *QuotalService) failAttempt(ctx context.Context, attempt *models.PaymentAttempt, err error) error {
	svc.Logger.Errorf("Payment failed request_id:%s state:%s %v", attempt.RequestID, attempt.State, err)
	attempt.ErrorMessage = err.Error()
	svc.transition(ctx, attempt, common.PaymentStateFailed)
	sentry.CaptureException(err)
	return err
}

func (svc *QuotalService) transition(ctx context.Context, attempt *models.PaymentAttempt, state string) {
	attempt.State = state
	if err := svc.Store.SavePaymentAttempt(ctx, attempt); err != nil {
		svc.Logger.Errorf("Failed to save payment attempt request_id:%s state:%s %v", attempt.RequestID, state, err)
	}
}

func (svc *QuotalService) acquireInflight(requestID string) bool {
	svc.inflightMu.Lock()
	defer svc.inflightMu.Unlock()
	if _, busy := svc.inflight[requestID]; busy {
		return false
	}
	svc.inflight[requestID] = struct{}{}
	return true
}

func (svc *QuotalService) releaseInflight(requestID string) {
	svc.inflightMu.Lock()
	defer svc.inflightMu.Unlock()
	delete(svc.inflight, requestID)
}
