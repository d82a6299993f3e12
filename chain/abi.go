package chain

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

const feeProxyABIJSON = `[
	{"constant":false,"inputs":[{"name":"_tokenAddress","type":"address"},{"name":"_to","type":"address"},{"name":"_amount","type":"uint256"},{"name":"_paymentReference","type":"bytes"},{"name":"_feeAmount","type":"uint256"},{"name":"_feeAddress","type":"address"}],"name":"transferFromWithReferenceAndFee","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

var (
	abiOnce     sync.Once
	erc20ABI    abi.ABI
	feeProxyABI abi.ABI
)

func contractABIs() (abi.ABI, abi.ABI) {
	abiOnce.Do(func() {
		var err error
		erc20ABI, err = abi.JSON(strings.NewReader(erc20ABIJSON))
		if err != nil {
			panic(err)
		}
		feeProxyABI, err = abi.JSON(strings.NewReader(feeProxyABIJSON))
		if err != nil {
			panic(err)
		}
	})
	return erc20ABI, feeProxyABI
}
