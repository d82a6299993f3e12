package chain

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ziflex/lecho/v3"

	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/reqnet"
)

type fakeBackend struct {
	allowance *big.Int

	receipt    *types.Receipt
	headNumber *big.Int

	sent []*types.Transaction
}

func (b *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return ethcommon.LeftPadBytes(b.allowance.Bytes(), 32), nil
}

func (b *fakeBackend) PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error) {
	return 7, nil
}

func (b *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 90_000, nil
}

func (b *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	if b.receipt == nil {
		return nil, ethereum.NotFound
	}
	return b.receipt, nil
}

func (b *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: b.headNumber}, nil
}

func (b *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(11155111), nil
}

func newTestClient(backend *fakeBackend) *EVMClient {
	return &EVMClient{
		backend:      backend,
		feeProxy:     ethcommon.HexToAddress("0x399F5EE127ce7432E4921a61b8CF52b0af52cbfE"),
		pollInterval: time.Millisecond,
		logger:       lecho.New(os.Stdout, lecho.WithLevel(log.ERROR)),
	}
}

func paymentRequest() *reqnet.Request {
	return &reqnet.Request{
		RequestID:      "req-1",
		ExpectedAmount: "1000",
		Currency: reqnet.Currency{
			Type:    common.CurrencyTypeERC20,
			Value:   "0x370DE27fdb7D1Ff1e1BaA7D11c5820a324Cf623C",
			Network: "sepolia",
		},
		PaymentNetwork: reqnet.PaymentNetwork{
			ID: common.PaymentNetworkERC20FeeProxy,
			Parameters: reqnet.PaymentNetworkParameters{
				PaymentAddress: "0x1111111111111111111111111111111111111111",
				FeeAddress:     "0x2222222222222222222222222222222222222222",
				FeeAmount:      "10",
			},
		},
		PaymentReference: "86dfbccad783599a",
	}
}

func TestHasErc20ApprovalCoversAmountPlusFee(t *testing.T) {
	backend := &fakeBackend{allowance: big.NewInt(1010)}
	client := newTestClient(backend)

	ok, err := client.HasErc20Approval(context.Background(), paymentRequest(), "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasErc20ApprovalBelowRequired(t *testing.T) {
	backend := &fakeBackend{allowance: big.NewInt(1009)}
	client := newTestClient(backend)

	ok, err := client.HasErc20Approval(context.Background(), paymentRequest(), "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPayRequestSubmitsToFeeProxy(t *testing.T) {
	backend := &fakeBackend{allowance: big.NewInt(0)}
	client := newTestClient(backend)
	signer, err := NewSigner("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", big.NewInt(11155111))
	require.NoError(t, err)

	tx, err := client.PayRequest(context.Background(), paymentRequest(), signer)
	require.NoError(t, err)
	assert.NotEmpty(t, tx.Hash())

	require.Len(t, backend.sent, 1)
	assert.Equal(t, client.feeProxy, *backend.sent[0].To())
	assert.Equal(t, uint64(7), backend.sent[0].Nonce())
}

func TestPayRequestRejectsUnsupportedNetwork(t *testing.T) {
	request := paymentRequest()
	request.PaymentNetwork.ID = "pn-eth-input-data"
	client := newTestClient(&fakeBackend{allowance: big.NewInt(0)})
	signer, err := NewSigner("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", big.NewInt(11155111))
	require.NoError(t, err)

	_, err = client.PayRequest(context.Background(), request, signer)
	assert.ErrorIs(t, err, ErrUnsupportedPaymentNetwork)
}

func TestTransactionWaitReportsRevert(t *testing.T) {
	backend := &fakeBackend{allowance: big.NewInt(0)}
	client := newTestClient(backend)
	signer, err := NewSigner("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", big.NewInt(11155111))
	require.NoError(t, err)

	tx, err := client.ApproveErc20(context.Background(), paymentRequest(), signer)
	require.NoError(t, err)

	backend.receipt = &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(100)}
	backend.headNumber = big.NewInt(101)

	err = tx.Wait(context.Background(), 2)
	assert.ErrorContains(t, err, "reverted")
}

func TestTransactionWaitReachesConfirmationDepth(t *testing.T) {
	backend := &fakeBackend{allowance: big.NewInt(0)}
	client := newTestClient(backend)
	signer, err := NewSigner("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", big.NewInt(11155111))
	require.NoError(t, err)

	tx, err := client.ApproveErc20(context.Background(), paymentRequest(), signer)
	require.NoError(t, err)

	backend.receipt = &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100)}
	backend.headNumber = big.NewInt(101)

	require.NoError(t, tx.Wait(context.Background(), 2))
}
