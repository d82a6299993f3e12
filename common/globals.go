package common

const (
	// Derived invoice status, recomputed from the latest known balance.
	StatusPaid    = "Paid"
	StatusCreated = "Created"

	// Mirrored invoice lifecycle states.
	InvoiceStatePending = "pending"
	InvoiceStateCreated = "created"
	InvoiceStateSettled = "settled"

	// Payment attempt states.
	PaymentStateIdle               = "idle"
	PaymentStateCheckingApproval   = "checking_approval"
	PaymentStateApproving          = "approving"
	PaymentStatePaying             = "paying"
	PaymentStateConfirmingBalance  = "confirming_balance"
	PaymentStatePaid               = "paid"
	PaymentStateFailed             = "failed"
	PaymentStateTimedOut           = "timed_out"
	PaymentStateUnsupportedNetwork = "unsupported_network"

	IdentityTypeEthereumAddress = "ethereumAddress"
	CurrencyTypeERC20           = "ERC20"

	// Payment network extension id for ERC-20 fee proxy settlement.
	PaymentNetworkERC20FeeProxy = "pn-erc20-fee-proxy-contract"
)
