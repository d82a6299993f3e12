package chain

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RPCURL string `envconfig:"CHAIN_RPC_URL" required:"true"`
	// Request network ERC-20 fee proxy contract (sepolia deployment by default).
	FeeProxyAddress string `envconfig:"CHAIN_FEE_PROXY_ADDRESS" default:"0x399F5EE127ce7432E4921a61b8CF52b0af52cbfE"`
	// Hex-encoded private key of the operator wallet used to sign approval and
	// payment transactions. Optional: without it the pay endpoint is disabled.
	PayerPrivateKey string `envconfig:"CHAIN_PAYER_PRIVATE_KEY"`
	ReceiptPollInterval int `envconfig:"CHAIN_RECEIPT_POLL_INTERVAL" default:"1"` // seconds
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}
	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
