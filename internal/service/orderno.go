package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	base36Alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderSuffixLen     = 6
	defaultMaxAttempts = 1000
)

var ErrOrderNumberExhausted = errors.New("could not generate a unique order number")

type orderNumberStore interface {
	CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	OrderNumberExists(ctx context.Context, number string) (bool, error)
}

// OrderNumberGenerator builds numbers of the form P<n>Q<qty>C<initials><suffix>,
// where n is the user's order sequence, qty the item count, initials the first
// letter of each distinct category and suffix six random base-36 characters.
type OrderNumberGenerator struct {
	Store       orderNumberStore
	Rand        io.Reader
	MaxAttempts int
}

func NewOrderNumberGenerator(store orderNumberStore) *OrderNumberGenerator {
	return &OrderNumberGenerator{Store: store, Rand: rand.Reader, MaxAttempts: defaultMaxAttempts}
}

func (g *OrderNumberGenerator) Generate(ctx context.Context, userID uuid.UUID, items []models.OrderItem, categories []string) (string, error) {
	prior, err := g.Store.CountOrdersByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("count orders: %w", err)
	}

	qty := 0
	for _, it := range items {
		qty += it.Quantity
	}
	prefix := orderNumberPrefix(prior+1, qty, categories)

	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}

	for i := 0; i < attempts; i++ {
		suffix, err := randomBase36(r, orderSuffixLen)
		if err != nil {
			return "", err
		}
		candidate := prefix + suffix

		exists, err := g.Store.OrderNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrOrderNumberExhausted, attempts)
}

func orderNumberPrefix(seq int64, qty int, categories []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "P%dQ%dC", seq, qty)
	b.WriteString(categoryInitials(categories))
	return b.String()
}

// categoryInitials keeps the first-seen order of distinct categories.
func categoryInitials(categories []string) string {
	seen := make(map[string]struct{}, len(categories))
	var b strings.Builder
	for _, c := range categories {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		r, _ := utf8.DecodeRuneInString(c)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// randomBase36 rejects bytes >= 252 so every symbol is equally likely.
func randomBase36(r io.Reader, n int) (string, error) {
	const limit = 252
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for reads := 0; len(out) < n; reads++ {
		if reads == 16 {
			return "", errors.New("random source produced no usable bytes")
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, base36Alphabet[int(b)%len(base36Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
