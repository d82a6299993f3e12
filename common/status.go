package common

import "math/big"

// PaymentStatus classifies an invoice from its on-chain balance: Paid once the
// balance has caught up with the expected amount, Created before that. Both
// amounts are in the token's smallest unit. A nil balance means no transfer has
// been observed yet.
func PaymentStatus(balance, expectedAmount *big.Int) string {
	if balance == nil {
		return StatusCreated
	}
	if balance.Cmp(expectedAmount) >= 0 {
		return StatusPaid
	}
	return StatusCreated
}
