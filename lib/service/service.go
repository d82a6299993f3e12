package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/ziflex/lecho/v3"

	"github.com/Qudusayo/quotal/chain"
	"github.com/Qudusayo/quotal/lib/tokens"
	"github.com/Qudusayo/quotal/rabbitmq"
	"github.com/Qudusayo/quotal/reqnet"
)

type QuotalService struct {
	Config         *Config
	Store          InvoiceStore
	Gateway        reqnet.RequestClientWrapper
	Chain          chain.PaymentClientWrapper
	Signer         *chain.Signer
	Logger         *lecho.Logger
	InvoicePubSub  *Pubsub
	RabbitMQClient rabbitmq.Client

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func NewService(cfg *Config, store InvoiceStore, gateway reqnet.RequestClientWrapper, paymentClient chain.PaymentClientWrapper, logger *lecho.Logger) *QuotalService {
	return &QuotalService{
		Config:        cfg,
		Store:         store,
		Gateway:       gateway,
		Chain:         paymentClient,
		Logger:        logger,
		InvoicePubSub: NewPubsub(),
		inflight:      map[string]struct{}{},
	}
}

// NonceFor returns the login nonce for an address, creating the wallet
// record on first sight.
func (svc *QuotalService) NonceFor(ctx context.Context, address string) (string, error) {
	if !ethcommon.IsHexAddress(address) {
		return "", fmt.Errorf("invalid address: %s", address)
	}
	wallet, err := svc.Store.GetOrCreateWallet(ctx, strings.ToLower(address), uuid.NewString())
	if err != nil {
		return "", err
	}
	return wallet.Nonce, nil
}

// GenerateToken verifies a personal-sign signature over the login message
// and mints an access token. The nonce is rotated on every successful login
// so a captured signature cannot be replayed.
func (svc *QuotalService) GenerateToken(ctx context.Context, address, signature string) (accessToken string, err error) {
	if !ethcommon.IsHexAddress(address) {
		return "", fmt.Errorf("bad auth")
	}
	address = strings.ToLower(address)

	wallet, err := svc.Store.GetOrCreateWallet(ctx, address, uuid.NewString())
	if err != nil {
		return "", err
	}

	recovered, err := recoverSigner(svc.Config.LoginMessagePrefix+wallet.Nonce, signature)
	if err != nil {
		svc.Logger.Debugf("Failed to recover signer address=%s %v", address, err)
		return "", fmt.Errorf("bad auth")
	}
	if strings.ToLower(recovered.Hex()) != address {
		return "", fmt.Errorf("bad auth")
	}

	if err := svc.Store.RotateWalletNonce(ctx, address, uuid.NewString()); err != nil {
		return "", err
	}

	return tokens.GenerateAccessToken(svc.Config.JWTSecret, svc.Config.JWTAccessTokenExpiry, address)
}

func recoverSigner(message, signature string) (ethcommon.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return ethcommon.Address{}, err
	}
	if len(sig) != 65 {
		return ethcommon.Address{}, fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	// wallets produce V as 27/28, go-ethereum expects 0/1
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return ethcommon.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
