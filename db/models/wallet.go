package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Wallet is a connected wallet address with its current sign-in nonce. The
// nonce is rotated on every successful authentication.
type Wallet struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	Address   string       `json:"address" bun:",unique,notnull"`
	Nonce     string       `json:"-" bun:",notnull"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}
