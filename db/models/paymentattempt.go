package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// PaymentAttempt records one run of the payment flow for a request. Each
// user-initiated retry creates a new row; terminal states are paid, failed,
// timed_out and unsupported_network.
type PaymentAttempt struct {
	ID             int64        `json:"id" bun:",pk,autoincrement"`
	RequestID      string       `json:"request_id" bun:",notnull"`
	Payer          string       `json:"payer" bun:",notnull"`
	State          string       `json:"state" bun:",default:'idle'"`
	ApprovalTxHash string       `json:"approval_tx_hash,omitempty" bun:",nullzero"`
	PaymentTxHash  string       `json:"payment_tx_hash,omitempty" bun:",nullzero"`
	ErrorMessage   string       `json:"error_message,omitempty" bun:",nullzero"`
	CreatedAt      time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt      bun.NullTime `json:"updated_at"`
}

func (a *PaymentAttempt) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		a.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*PaymentAttempt)(nil)
