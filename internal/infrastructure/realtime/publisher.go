package realtime

import (
	"context"
	"time"
)

// Collections exposed to watchers
const (
	CollectionSubscriptions = "subscriptions"
	CollectionPromoCodes    = "promocodes"
	CollectionMonetization  = "monetization"
	CollectionWithdrawals   = "withdrawals"
)

// Change describes one committed write. OwnerID is the user the record belongs
// to; non-admin watchers only receive their own changes.
type Change struct {
	Collection string      `json:"collection"`
	ID         string      `json:"id"`
	OwnerID    string      `json:"ownerId,omitempty"`
	Op         string      `json:"op"`
	Data       interface{} `json:"data,omitempty"`
	At         time.Time   `json:"at"`
}

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// Publisher fans committed changes out to watchers. Publishing happens after
// commit and is best-effort: callers log the error and move on.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// NopPublisher drops every change
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Change) error { return nil }

// NewChange stamps At with the current time
func NewChange(collection, id, ownerID, op string, data interface{}) Change {
	return Change{
		Collection: collection,
		ID:         id,
		OwnerID:    ownerID,
		Op:         op,
		Data:       data,
		At:         time.Now().UTC(),
	}
}
