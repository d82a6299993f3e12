package chain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/reqnet"
)

func TestPaymentNetworkExtensionFeeProxy(t *testing.T) {
	request := &reqnet.Request{
		RequestID: "01a1",
		PaymentNetwork: reqnet.PaymentNetwork{
			ID: common.PaymentNetworkERC20FeeProxy,
			Parameters: reqnet.PaymentNetworkParameters{
				PaymentAddress: "0x1111111111111111111111111111111111111111",
			},
		},
	}

	extension, err := PaymentNetworkExtension(request)
	require.NoError(t, err)
	assert.Equal(t, common.PaymentNetworkERC20FeeProxy, extension.ID)
}

func TestPaymentNetworkExtensionUnsupported(t *testing.T) {
	request := &reqnet.Request{
		RequestID: "01a1",
		PaymentNetwork: reqnet.PaymentNetwork{
			ID: "pn-eth-input-data",
		},
	}

	_, err := PaymentNetworkExtension(request)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedPaymentNetwork))
}
