package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/reqnet"
)

func TestTotalAmountSingleItem(t *testing.T) {
	total, err := totalAmount([]reqnet.InvoiceItem{
		{Name: "Consulting", Quantity: 2, UnitPrice: "500"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1000", total.String())
}

func TestTotalAmountWithDiscountAndTax(t *testing.T) {
	total, err := totalAmount([]reqnet.InvoiceItem{
		{Name: "Consulting", Quantity: 1, UnitPrice: "1000", Discount: "200", Tax: reqnet.Tax{Type: "percentage", Amount: "10"}},
	})
	require.NoError(t, err)
	// (1000 - 200) * 1.10
	assert.Equal(t, "880", total.String())
}

func TestTotalAmountRejectsEmptyItems(t *testing.T) {
	_, err := totalAmount(nil)
	assert.Error(t, err)
}

func TestTotalAmountRejectsZeroTotal(t *testing.T) {
	_, err := totalAmount([]reqnet.InvoiceItem{
		{Name: "Freebie", Quantity: 1, UnitPrice: "0"},
	})
	assert.Error(t, err)
}

func TestCreateInvoiceMirrorsConfirmedRequest(t *testing.T) {
	store := newFakeStore()
	gateway := &fakeGateway{}
	svc := newTestService(t, store, gateway, &fakeChainClient{})

	invoice, err := svc.CreateInvoice(context.Background(), testPayeeAddress, CreateInvoiceParams{
		Payer:        testPayerAddress,
		TokenAddress: "0x370DE27fdb7D1Ff1e1BaA7D11c5820a324Cf623C",
		Network:      "sepolia",
		Items: []reqnet.InvoiceItem{
			{Name: "Consulting", Quantity: 2, UnitPrice: "500"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "req-1", invoice.RequestID)
	assert.Equal(t, "1", invoice.InvoiceNumber)
	assert.Equal(t, "1000", invoice.ExpectedAmount)
	assert.Equal(t, common.InvoiceStateCreated, invoice.State)
	assert.Equal(t, common.StatusCreated, invoice.Status())

	require.Len(t, gateway.created, 1)
	params := gateway.created[0]
	assert.Equal(t, common.PaymentNetworkERC20FeeProxy, params.PaymentNetwork.ID)
	// payment address defaults to the payee
	assert.Equal(t, testPayeeAddress, params.PaymentNetwork.Parameters.PaymentAddress)
	assert.Equal(t, common.CurrencyTypeERC20, params.Currency.Type)

	mirrored, err := store.GetInvoiceByRequestID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, testPayeeAddress, mirrored.Payee)
}

func TestInvoicesForSortsNewestFirst(t *testing.T) {
	older := testRequest("")
	older.RequestID = "req-old"
	older.Timestamp = 100
	newer := testRequest("")
	newer.RequestID = "req-new"
	newer.Timestamp = 200

	store := newFakeStore()
	gateway := &fakeGateway{byAddress: []reqnet.Request{older, newer}}
	svc := newTestService(t, store, gateway, &fakeChainClient{})

	invoices, err := svc.InvoicesFor(context.Background(), testPayeeAddress, ListInvoicesOptions{})
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "req-new", invoices[0].RequestID)
	assert.Equal(t, "req-old", invoices[1].RequestID)
}

func TestInvoicesForFiltersByStatus(t *testing.T) {
	unpaid := testRequest("")
	unpaid.RequestID = "req-unpaid"
	paid := testRequest("1000")
	paid.RequestID = "req-paid"

	store := newFakeStore()
	gateway := &fakeGateway{byAddress: []reqnet.Request{unpaid, paid}}
	svc := newTestService(t, store, gateway, &fakeChainClient{})

	invoices, err := svc.InvoicesFor(context.Background(), testPayeeAddress, ListInvoicesOptions{State: common.StatusPaid})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "req-paid", invoices[0].RequestID)
}

func TestInvoicesForFiltersByPayer(t *testing.T) {
	mine := testRequest("")
	mine.RequestID = "req-mine"
	other := testRequest("")
	other.RequestID = "req-other"
	other.Payer.Value = testPayeeAddress

	store := newFakeStore()
	gateway := &fakeGateway{byAddress: []reqnet.Request{mine, other}}
	svc := newTestService(t, store, gateway, &fakeChainClient{})

	invoices, err := svc.InvoicesFor(context.Background(), testPayeeAddress, ListInvoicesOptions{Payer: testPayerAddress})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "req-mine", invoices[0].RequestID)
}

func TestMirrorRequestSettlesOnFullBalance(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeGateway{}, &fakeChainClient{})

	request := testRequest("1000")
	invoice, err := svc.MirrorRequest(context.Background(), &request)
	require.NoError(t, err)

	assert.Equal(t, common.InvoiceStateSettled, invoice.State)
	assert.False(t, invoice.SettledAt.IsZero())
}

func TestMirrorRequestPartialBalanceStaysUnsettled(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeGateway{}, &fakeChainClient{})

	request := testRequest("999")
	invoice, err := svc.MirrorRequest(context.Background(), &request)
	require.NoError(t, err)

	assert.Equal(t, common.InvoiceStateCreated, invoice.State)
	assert.Equal(t, common.StatusCreated, invoice.Status())
	assert.True(t, invoice.SettledAt.IsZero())
}
