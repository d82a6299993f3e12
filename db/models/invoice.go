package models

import (
	"context"
	"math/big"
	"time"

	"github.com/uptrace/bun"

	"github.com/Qudusayo/quotal/common"
	"github.com/Qudusayo/quotal/reqnet"
)

// Invoice mirrors a request tracked by the gateway. The gateway (and behind
// it, the chain) is the source of truth; this row is a cache for the list
// view. Core terms are immutable after creation, the balance only ever
// increases, and rows are never deleted.
type Invoice struct {
	ID             int64                `json:"id" bun:",pk,autoincrement"`
	RequestID      string               `json:"request_id" bun:",unique,notnull"`
	InvoiceNumber  string               `json:"invoice_number"`
	Payee          string               `json:"payee" bun:",notnull"`
	Payer          string               `json:"payer" bun:",notnull"`
	Network        string               `json:"network" bun:",notnull"`
	TokenAddress   string               `json:"token_address" bun:",notnull"`
	ExpectedAmount string               `json:"expected_amount" bun:",notnull"`
	Balance        string               `json:"balance" bun:",nullzero"`
	State          string               `json:"state" bun:",default:'created'"`
	Memo           string               `json:"memo" bun:",nullzero"`
	Items          []reqnet.InvoiceItem `json:"items" bun:"items,type:jsonb"`
	Timestamp      int64                `json:"timestamp"`
	IssuedAt       bun.NullTime         `json:"issued_at"`
	DueDate        bun.NullTime         `json:"due_date"`
	CreatedAt      time.Time            `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt      bun.NullTime         `json:"updated_at"`
	SettledAt      bun.NullTime         `json:"settled_at"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// Status derives the two-valued payment status from the mirrored amounts.
// It is never stored as truth, always recomputed.
func (i *Invoice) Status() string {
	expected, ok := new(big.Int).SetString(i.ExpectedAmount, 10)
	if !ok {
		return common.StatusCreated
	}
	if i.Balance == "" {
		return common.PaymentStatus(nil, expected)
	}
	balance, ok := new(big.Int).SetString(i.Balance, 10)
	if !ok {
		return common.StatusCreated
	}
	return common.PaymentStatus(balance, expected)
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
