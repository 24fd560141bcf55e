// Package payment is the boundary to the hosted checkout provider.
package payment

import (
	"context"
	"errors"
)

var ErrProvider = errors.New("payment provider")

type LineItem struct {
	Name       string
	Images     []string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	DiscountID string
	Metadata   map[string]string
}

type Session struct {
	ID            string
	Paid          bool
	AmountTotal   int64
	Metadata      map[string]string
	PaymentMethod string
}

// Provider is the subset of the hosted checkout API the shop relies on.
// Amounts are in the smallest currency unit.
type Provider interface {
	CreateDiscount(ctx context.Context, percentOff float64) (string, error)
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
}
