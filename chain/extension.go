package chain

import (
	"fmt"

	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/reqnet"
)

// PaymentNetworkExtension returns the payment-network extension governing a
// request's settlement. Requests settled through anything other than the
// ERC-20 fee proxy yield ErrUnsupportedPaymentNetwork.
func PaymentNetworkExtension(request *reqnet.Request) (*reqnet.PaymentNetwork, error) {
	if request.PaymentNetwork.ID != common.PaymentNetworkERC20FeeProxy {
		return nil, fmt.Errorf("request %s uses extension %q: %w",
			request.RequestID, request.PaymentNetwork.ID, ErrUnsupportedPaymentNetwork)
	}
	return &request.PaymentNetwork, nil
}
