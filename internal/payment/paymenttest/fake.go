// Package paymenttest provides an in-memory payment.Provider.
package paymenttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Skotchmaster/storefront/internal/payment"
)

type Provider struct {
	mu        sync.Mutex
	seq       int
	Sessions  map[string]*payment.Session
	Requests  map[string]payment.SessionRequest
	Discounts map[string]float64

	// Err, when set, is returned by every call.
	Err error
	// DiscountApplied is applied to AmountTotal when a session uses a discount.
	DiscountApplied bool
}

func New() *Provider {
	return &Provider{
		Sessions:        map[string]*payment.Session{},
		Requests:        map[string]payment.SessionRequest{},
		Discounts:       map[string]float64{},
		DiscountApplied: true,
	}
}

func (p *Provider) CreateDiscount(_ context.Context, percentOff float64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	p.seq++
	id := fmt.Sprintf("coupon_%d", p.seq)
	p.Discounts[id] = percentOff
	return id, nil
}

func (p *Provider) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	p.seq++
	id := fmt.Sprintf("cs_test_%d", p.seq)

	var total int64
	for _, li := range req.LineItems {
		total += li.UnitAmount * li.Quantity
	}
	if pct, ok := p.Discounts[req.DiscountID]; ok && p.DiscountApplied {
		total -= int64(float64(total) * pct / 100)
	}

	meta := make(map[string]string, len(req.Metadata))
	for k, v := range req.Metadata {
		meta[k] = v
	}
	sess := &payment.Session{ID: id, AmountTotal: total, Metadata: meta, PaymentMethod: "card"}
	p.Sessions[id] = sess
	p.Requests[id] = req
	return copySession(sess), nil
}

func (p *Provider) RetrieveSession(_ context.Context, id string) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	sess, ok := p.Sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: no such checkout session: %s", payment.ErrProvider, id)
	}
	return copySession(sess), nil
}

// MarkPaid simulates the customer completing the hosted checkout.
func (p *Provider) MarkPaid(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sess, ok := p.Sessions[id]; ok {
		sess.Paid = true
	}
}

func (p *Provider) SessionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Sessions)
}

func copySession(s *payment.Session) *payment.Session {
	cp := *s
	return &cp
}
