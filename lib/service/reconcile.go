package service

import (
	"context"
	"time"

	"github.com/Qudusayo/quotal/common"
)

// StartReconciliationRoutine periodically refreshes unsettled invoices from
// the gateway. This catches payments made outside this service, and payments
// whose balance confirmation timed out.
func (svc *QuotalService) StartReconciliationRoutine(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(svc.Config.ReconcileInterval) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.ReconcileUnsettledInvoices(ctx); err != nil {
				svc.Logger.Errorf("Failed to reconcile invoices %v", err)
			}
		}
	}
}

// ReconcileUnsettledInvoices refreshes every unsettled invoice in the mirror
// and publishes the ones that turn out to be settled.
func (svc *QuotalService) ReconcileUnsettledInvoices(ctx context.Context) error {
	invoices, err := svc.Store.ListUnsettledInvoices(ctx)
	if err != nil {
		return err
	}
	svc.Logger.Infof("Found %d unsettled invoices", len(invoices))
	for _, invoice := range invoices {
		request, err := svc.Gateway.FromRequestID(ctx, invoice.RequestID)
		if err != nil {
			svc.Logger.Errorf("Failed to refresh request request_id:%s %v", invoice.RequestID, err)
			continue
		}
		refreshed, err := svc.MirrorRequest(ctx, request)
		if err != nil {
			svc.Logger.Errorf("Failed to mirror request request_id:%s %v", invoice.RequestID, err)
			continue
		}
		if refreshed.State == common.InvoiceStateSettled {
			svc.Logger.Infof("Invoice settled during reconciliation request_id:%s", refreshed.RequestID)
			svc.InvoicePubSub.Publish(refreshed.Payee, *refreshed)
			svc.InvoicePubSub.Publish(SettledInvoicesTopic, *refreshed)
		}
	}
	return nil
}
