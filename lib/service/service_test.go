package service

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qudusayo/quotal/lib/tokens"
)

func signLoginMessage(t *testing.T, keyHex, message string) string {
	t.Helper()
	key, err := crypto.HexToECDSA(keyHex)
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	// wallets report V as 27/28
	sig[64] += 27
	return hexutil.Encode(sig)
}

func TestNonceForCreatesWallet(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeGateway{}, &fakeChainClient{})

	nonce, err := svc.NonceFor(context.Background(), testPayerAddress)
	require.NoError(t, err)
	assert.NotEmpty(t, nonce)

	// asking again returns the same nonce until it is consumed
	again, err := svc.NonceFor(context.Background(), testPayerAddress)
	require.NoError(t, err)
	assert.Equal(t, nonce, again)
}

func TestGenerateTokenWithValidSignature(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeGateway{}, &fakeChainClient{})

	nonce, err := svc.NonceFor(context.Background(), testPayerAddress)
	require.NoError(t, err)

	signature := signLoginMessage(t, testPayerKey, svc.Config.LoginMessagePrefix+nonce)
	accessToken, err := svc.GenerateToken(context.Background(), testPayerAddress, signature)
	require.NoError(t, err)

	address, err := tokens.ParseToken(svc.Config.JWTSecret, accessToken)
	require.NoError(t, err)
	assert.Equal(t, testPayerAddress, address)
}

func TestGenerateTokenRotatesNonce(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeGateway{}, &fakeChainClient{})

	nonce, err := svc.NonceFor(context.Background(), testPayerAddress)
	require.NoError(t, err)

	signature := signLoginMessage(t, testPayerKey, svc.Config.LoginMessagePrefix+nonce)
	_, err = svc.GenerateToken(context.Background(), testPayerAddress, signature)
	require.NoError(t, err)

	// the consumed nonce no longer authenticates
	_, err = svc.GenerateToken(context.Background(), testPayerAddress, signature)
	assert.Error(t, err)
}

func TestGenerateTokenRejectsWrongSigner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeGateway{}, &fakeChainClient{})

	nonce, err := svc.NonceFor(context.Background(), testPayeeAddress)
	require.NoError(t, err)

	// signed with the payer key but claiming the payee address
	signature := signLoginMessage(t, testPayerKey, svc.Config.LoginMessagePrefix+nonce)
	_, err = svc.GenerateToken(context.Background(), testPayeeAddress, signature)
	assert.Error(t, err)
}

func TestGenerateTokenRejectsGarbageSignature(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeGateway{}, &fakeChainClient{})

	_, err := svc.NonceFor(context.Background(), testPayerAddress)
	require.NoError(t, err)

	_, err = svc.GenerateToken(context.Background(), testPayerAddress, "0xdeadbeef")
	assert.Error(t, err)
}
