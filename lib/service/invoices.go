package service

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/db/models"
	"github.com/Qudusayo/quotal/reqnet"
)

type CreateInvoiceParams struct {
	Payer          string
	TokenAddress   string
	Network        string
	PaymentAddress string
	FeeAddress     string
	FeeAmount      string
	Items          []reqnet.InvoiceItem
	Memo           string
	DueDate        string
}

// CreateInvoice persists a new request on the gateway, waits for it to be
// confirmed and mirrors it locally. The payee is always the authenticated
// caller.
func (svc *QuotalService) CreateInvoice(ctx context.Context, payee string, params CreateInvoiceParams) (*models.Invoice, error) {
	expectedAmount, err := totalAmount(params.Items)
	if err != nil {
		return nil, err
	}

	count, err := svc.Store.CountInvoices(ctx, payee)
	if err != nil {
		return nil, err
	}

	paymentAddress := params.PaymentAddress
	if paymentAddress == "" {
		paymentAddress = payee
	}
	feeAmount := params.FeeAmount
	if feeAmount == "" {
		feeAmount = "0"
	}

	now := time.Now()
	request, err := svc.Gateway.CreateRequest(ctx, reqnet.CreateRequestParams{
		Currency: reqnet.Currency{
			Type:    common.CurrencyTypeERC20,
			Value:   params.TokenAddress,
			Network: params.Network,
		},
		ExpectedAmount: expectedAmount.String(),
		Payee:          reqnet.Identity{Type: common.IdentityTypeEthereumAddress, Value: payee},
		Payer:          reqnet.Identity{Type: common.IdentityTypeEthereumAddress, Value: params.Payer},
		Timestamp:      now.Unix(),
		PaymentNetwork: reqnet.PaymentNetwork{
			ID: common.PaymentNetworkERC20FeeProxy,
			Parameters: reqnet.PaymentNetworkParameters{
				PaymentNetworkName: params.Network,
				PaymentAddress:     paymentAddress,
				FeeAddress:         params.FeeAddress,
				FeeAmount:          feeAmount,
			},
		},
		ContentData: reqnet.ContentData{
			InvoiceNumber: fmt.Sprintf("%d", count+1),
			CreationDate:  now.Format(time.RFC3339),
			PaymentTerms:  reqnet.PaymentTerms{DueDate: params.DueDate},
			InvoiceItems:  params.Items,
			Memo:          params.Memo,
		},
		Signer: reqnet.Identity{Type: common.IdentityTypeEthereumAddress, Value: payee},
	})
	if err != nil {
		return nil, err
	}
	svc.Logger.Infof("Created request request_id:%s payee:%s amount:%s", request.RequestID, payee, expectedAmount.String())

	request, err = svc.Gateway.WaitForConfirmation(ctx, request.RequestID)
	if err != nil {
		return nil, err
	}

	return svc.MirrorRequest(ctx, request)
}

// InvoicesFor lists a payee's invoices from the gateway, newest first,
// refreshing the local mirror along the way.
func (svc *QuotalService) InvoicesFor(ctx context.Context, payee string, opts ListInvoicesOptions) ([]models.Invoice, error) {
	requests, err := svc.Gateway.FromIdentity(ctx, payee)
	if err != nil {
		// serve the possibly stale mirror when the gateway is unreachable
		svc.Logger.Errorf("Gateway unavailable, serving mirror payee:%s %v", payee, err)
		return svc.Store.ListInvoices(ctx, payee, opts)
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].Timestamp > requests[j].Timestamp
	})

	invoices := make([]models.Invoice, 0, len(requests))
	for i := range requests {
		invoice, err := svc.MirrorRequest(ctx, &requests[i])
		if err != nil {
			return nil, err
		}
		if opts.Payer != "" && !strings.EqualFold(invoice.Payer, opts.Payer) {
			continue
		}
		if opts.State != "" && invoice.Status() != opts.State {
			continue
		}
		invoices = append(invoices, *invoice)
		if opts.Limit > 0 && len(invoices) == opts.Limit {
			break
		}
	}
	return invoices, nil
}

// RefreshInvoice re-fetches a single request from the gateway so its balance
// and status reflect the chain, and updates the mirror.
func (svc *QuotalService) RefreshInvoice(ctx context.Context, requestID string) (*models.Invoice, *reqnet.Request, error) {
	request, err := svc.Gateway.FromRequestID(ctx, requestID)
	if err != nil {
		// the mirror keeps single lookups working while the gateway is down
		if invoice, storeErr := svc.Store.GetInvoiceByRequestID(ctx, requestID); storeErr == nil {
			svc.Logger.Errorf("Gateway unavailable, serving mirror request_id:%s %v", requestID, err)
			return invoice, nil, nil
		}
		return nil, nil, err
	}
	invoice, err := svc.MirrorRequest(ctx, request)
	if err != nil {
		return nil, nil, err
	}
	return invoice, request, nil
}

// MirrorRequest maps a gateway request onto the local invoice mirror and
// upserts it. Settlement is derived, not trusted from the gateway state: an
// invoice settles exactly when its balance covers the expected amount.
func (svc *QuotalService) MirrorRequest(ctx context.Context, request *reqnet.Request) (*models.Invoice, error) {
	invoice := &models.Invoice{
		RequestID:      request.RequestID,
		InvoiceNumber:  request.ContentData.InvoiceNumber,
		Payee:          strings.ToLower(request.Payee.Value),
		Payer:          strings.ToLower(request.Payer.Value),
		Network:        request.Currency.Network,
		TokenAddress:   request.Currency.Value,
		ExpectedAmount: request.ExpectedAmount,
		State:          common.InvoiceStateCreated,
		Memo:           request.ContentData.Memo,
		Items:          request.ContentData.InvoiceItems,
		Timestamp:      request.Timestamp,
	}
	if request.State == common.InvoiceStatePending {
		invoice.State = common.InvoiceStatePending
	}
	if request.ContentData.CreationDate != "" {
		if issuedAt, err := time.Parse(time.RFC3339, request.ContentData.CreationDate); err == nil {
			invoice.IssuedAt = bun.NullTime{Time: issuedAt}
		}
	}
	if due := request.ContentData.PaymentTerms.DueDate; due != "" {
		if dueDate, err := time.Parse(time.RFC3339, due); err == nil {
			invoice.DueDate = bun.NullTime{Time: dueDate}
		}
	}
	if request.Balance != nil {
		invoice.Balance = request.Balance.Balance
	}
	if invoice.Status() == common.StatusPaid {
		invoice.State = common.InvoiceStateSettled
		invoice.SettledAt = bun.NullTime{Time: time.Now()}
	}

	if err := svc.Store.UpsertInvoice(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// totalAmount sums the invoice lines in the token's smallest unit:
// quantity times unit price, less the discount, plus a percentage tax.
func totalAmount(items []reqnet.InvoiceItem) (*big.Int, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("invoice needs at least one item")
	}
	total := decimal.Zero
	for _, item := range items {
		unitPrice, err := decimal.NewFromString(item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price %q: %w", item.UnitPrice, err)
		}
		line := unitPrice.Mul(decimal.NewFromInt(item.Quantity))
		if item.Discount != "" {
			discount, err := decimal.NewFromString(item.Discount)
			if err != nil {
				return nil, fmt.Errorf("invalid discount %q: %w", item.Discount, err)
			}
			line = line.Sub(discount)
		}
		if item.Tax.Type == "percentage" && item.Tax.Amount != "" {
			rate, err := decimal.NewFromString(item.Tax.Amount)
			if err != nil {
				return nil, fmt.Errorf("invalid tax rate %q: %w", item.Tax.Amount, err)
			}
			line = line.Add(line.Mul(rate).Div(decimal.NewFromInt(100)))
		}
		if line.IsNegative() {
			return nil, fmt.Errorf("item %q has a negative total", item.Name)
		}
		total = total.Add(line)
	}
	amount, ok := new(big.Int).SetString(total.Floor().String(), 10)
	if !ok {
		return nil, fmt.Errorf("invalid total %q", total.String())
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("invoice total must be positive")
	}
	return amount, nil
}
