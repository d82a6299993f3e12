package reqnet

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	GatewayURL            string `envconfig:"REQNET_GATEWAY_URL" default:"https://sepolia.gateway.request.network"`
	HTTPTimeout           int    `envconfig:"REQNET_HTTP_TIMEOUT" default:"30"`            // seconds
	ConfirmationPollDelay int    `envconfig:"REQNET_CONFIRMATION_POLL_DELAY" default:"1"`  // seconds
	ConfirmationTimeout   int    `envconfig:"REQNET_CONFIRMATION_TIMEOUT" default:"120"`   // seconds
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}
	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
