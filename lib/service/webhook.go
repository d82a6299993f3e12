package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Qudusayo/quotal/db/models"
)

// StartWebhookSubscription posts every settled invoice to the configured
// webhook url until the context is canceled.
func (svc *QuotalService) StartWebhookSubscription(ctx context.Context) {
	svc.Logger.Infof("Starting webhook subscription with webhook url %s", svc.Config.WebhookUrl)
	settledInvoices := make(chan models.Invoice)
	subID := svc.InvoicePubSub.Subscribe(SettledInvoicesTopic, settledInvoices)
	defer svc.InvoicePubSub.Unsubscribe(subID, SettledInvoicesTopic)
	for {
		select {
		case <-ctx.Done():
			return
		case invoice := <-settledInvoices:
			svc.postToWebhook(invoice)
		}
	}
}

func (svc *QuotalService) postToWebhook(invoice models.Invoice) {
	payload := new(bytes.Buffer)
	err := json.NewEncoder(payload).Encode(invoice)
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	resp, err := http.Post(svc.Config.WebhookUrl, "application/json", payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
