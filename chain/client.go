package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ziflex/lecho/v3"

	"github.com/Qudusayo/quotal/reqnet"
)

// evmBackend is the subset of the ethclient API the payment processor needs.
// *ethclient.Client satisfies it; tests use a fake.
type evmBackend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// maxAllowance mirrors the SDK default of approving the full uint256 range so
// one approval covers later payments of the same token.
var maxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// EVMClient settles requests on an EVM chain through the ERC-20 fee proxy
// contract.
type EVMClient struct {
	backend      evmBackend
	feeProxy     ethcommon.Address
	pollInterval time.Duration
	logger       *lecho.Logger
}

var _ PaymentClientWrapper = (*EVMClient)(nil)

func NewEVMClient(ctx context.Context, cfg *Config, logger *lecho.Logger) (*EVMClient, error) {
	backend, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing chain rpc %s: %w", cfg.RPCURL, err)
	}
	return &EVMClient{
		backend:      backend,
		feeProxy:     ethcommon.HexToAddress(cfg.FeeProxyAddress),
		pollInterval: time.Duration(cfg.ReceiptPollInterval) * time.Second,
		logger:       logger,
	}, nil
}

// ChainID reports the id of the connected chain, used to bind the signer.
func (ec *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return ec.backend.ChainID(ctx)
}

func (ec *EVMClient) HasErc20Approval(ctx context.Context, request *reqnet.Request, payerAddress string) (bool, error) {
	required, err := requiredAllowance(request)
	if err != nil {
		return false, err
	}
	erc20, _ := contractABIs()
	data, err := erc20.Pack("allowance", ethcommon.HexToAddress(payerAddress), ec.feeProxy)
	if err != nil {
		return false, err
	}
	token := ethcommon.HexToAddress(request.Currency.Value)
	result, err := ec.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return false, fmt.Errorf("allowance call failed: %w", err)
	}
	values, err := erc20.Unpack("allowance", result)
	if err != nil {
		return false, err
	}
	allowance, ok := values[0].(*big.Int)
	if !ok {
		return false, fmt.Errorf("unexpected allowance result %v", values[0])
	}
	return allowance.Cmp(required) >= 0, nil
}

func (ec *EVMClient) ApproveErc20(ctx context.Context, request *reqnet.Request, signer *Signer) (Transaction, error) {
	erc20, _ := contractABIs()
	data, err := erc20.Pack("approve", ec.feeProxy, maxAllowance)
	if err != nil {
		return nil, err
	}
	return ec.submit(ctx, signer, ethcommon.HexToAddress(request.Currency.Value), data)
}

func (ec *EVMClient) PayRequest(ctx context.Context, request *reqnet.Request, signer *Signer) (Transaction, error) {
	extension, err := PaymentNetworkExtension(request)
	if err != nil {
		return nil, err
	}
	amount, err := request.BigExpectedAmount()
	if err != nil {
		return nil, err
	}
	fee, err := feeAmount(request)
	if err != nil {
		return nil, err
	}
	reference, err := hex.DecodeString(strings.TrimPrefix(request.PaymentReference, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid payment reference %q: %w", request.PaymentReference, err)
	}
	_, feeProxyABI := contractABIs()
	data, err := feeProxyABI.Pack("transferFromWithReferenceAndFee",
		ethcommon.HexToAddress(request.Currency.Value),
		ethcommon.HexToAddress(extension.Parameters.PaymentAddress),
		amount,
		reference,
		fee,
		ethcommon.HexToAddress(extension.Parameters.FeeAddress),
	)
	if err != nil {
		return nil, err
	}
	return ec.submit(ctx, signer, ec.feeProxy, data)
}

func (ec *EVMClient) submit(ctx context.Context, signer *Signer, to ethcommon.Address, data []byte) (Transaction, error) {
	if signer == nil {
		return nil, fmt.Errorf("no signer configured")
	}
	nonce, err := ec.backend.PendingNonceAt(ctx, signer.Address())
	if err != nil {
		return nil, err
	}
	gasPrice, err := ec.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	from := signer.Address()
	gasLimit, err := ec.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("gas estimation failed: %w", err)
	}
	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := signer.SignTx(tx)
	if err != nil {
		return nil, err
	}
	if err := ec.backend.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	ec.logger.Infof("Submitted transaction %s to %s", signed.Hash().Hex(), to.Hex())
	return &evmTransaction{backend: ec.backend, tx: signed, pollInterval: ec.pollInterval}, nil
}

func requiredAllowance(request *reqnet.Request) (*big.Int, error) {
	amount, err := request.BigExpectedAmount()
	if err != nil {
		return nil, err
	}
	fee, err := feeAmount(request)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(amount, fee), nil
}

func feeAmount(request *reqnet.Request) (*big.Int, error) {
	raw := request.PaymentNetwork.Parameters.FeeAmount
	if raw == "" {
		return big.NewInt(0), nil
	}
	fee, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid fee amount %q", raw)
	}
	return fee, nil
}

type evmTransaction struct {
	backend      evmBackend
	tx           *types.Transaction
	pollInterval time.Duration
}

func (t *evmTransaction) Hash() string {
	return t.tx.Hash().Hex()
}

// Wait polls for the transaction receipt and then for the chain head until
// the requested confirmation depth is reached. A reverted transaction is an
// error. Cancellation only stops the wait; the transaction itself is already
// an external commitment and cannot be recalled.
func (t *evmTransaction) Wait(ctx context.Context, confirmations uint64) error {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := t.backend.TransactionReceipt(ctx, t.tx.Hash())
		if err == nil && receipt != nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted", t.Hash())
			}
			head, err := t.backend.HeaderByNumber(ctx, nil)
			if err == nil {
				depth := new(big.Int).Sub(head.Number, receipt.BlockNumber)
				if depth.Sign() >= 0 && depth.Uint64()+1 >= confirmations {
					return nil
				}
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
