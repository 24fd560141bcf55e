package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	metaUserID          = "userId"
	metaCouponCode      = "couponCode"
	metaProductsPrefix  = "products_"
	metaShippingCost    = "shippingCost"
	metaShippingAddress = "shippingAddress"

	// Provider limits per session.
	MaxMetadataValueLen = 500
	MaxMetadataKeys     = 50
)

var ErrMetadataTooLarge = errors.New("metadata value too large")

type MetadataProduct struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Address is the shipping address as the storefront collects it.
type Address struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	State        string `json:"state"`
}

func (a Address) ToModel() models.Address {
	return models.Address{
		Line1:      a.Street,
		Line2:      a.Neighborhood,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		State:      a.State,
	}
}

// CheckoutMetadata travels with the provider session from creation to
// confirmation. Both sides go through Encode and DecodeCheckoutMetadata.
type CheckoutMetadata struct {
	UserID          string
	CouponCode      string
	Products        []MetadataProduct
	ShippingCost    float64
	ShippingAddress Address
}

// Encode spreads the products snapshot over products_0, products_1, ...
// so no single value exceeds the provider limit.
func (m CheckoutMetadata) Encode() (map[string]string, error) {
	products, err := json.Marshal(m.Products)
	if err != nil {
		return nil, fmt.Errorf("encode products: %w", err)
	}
	addr, err := json.Marshal(m.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}
	raw := map[string]string{
		metaUserID:          m.UserID,
		metaCouponCode:      m.CouponCode,
		metaShippingCost:    strconv.FormatFloat(m.ShippingCost, 'f', -1, 64),
		metaShippingAddress: string(addr),
	}
	for k, v := range raw {
		if len(v) > MaxMetadataValueLen {
			return nil, fmt.Errorf("%w: %s has %d chars", ErrMetadataTooLarge, k, len(v))
		}
	}

	chunks := splitChunks(string(products), MaxMetadataValueLen)
	if len(raw)+len(chunks) > MaxMetadataKeys {
		return nil, fmt.Errorf("%w: products need %d keys", ErrMetadataTooLarge, len(chunks))
	}
	for i, chunk := range chunks {
		raw[productsKey(i)] = chunk
	}
	return raw, nil
}

func productsKey(i int) string {
	return metaProductsPrefix + strconv.Itoa(i)
}

func splitChunks(s string, size int) []string {
	chunks := make([]string, 0, len(s)/size+1)
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	return append(chunks, s)
}

func DecodeCheckoutMetadata(raw map[string]string) (CheckoutMetadata, error) {
	var m CheckoutMetadata

	m.UserID = raw[metaUserID]
	if m.UserID == "" {
		return m, fmt.Errorf("metadata: %s missing", metaUserID)
	}
	m.CouponCode = raw[metaCouponCode]

	var products strings.Builder
	for i := 0; ; i++ {
		chunk, ok := raw[productsKey(i)]
		if !ok {
			break
		}
		products.WriteString(chunk)
	}
	if products.Len() == 0 {
		return m, fmt.Errorf("metadata: %s0 missing", metaProductsPrefix)
	}
	if err := json.Unmarshal([]byte(products.String()), &m.Products); err != nil {
		return m, fmt.Errorf("metadata: decode products: %w", err)
	}

	if s := raw[metaShippingCost]; s != "" {
		cost, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return m, fmt.Errorf("metadata: decode %s: %w", metaShippingCost, err)
		}
		m.ShippingCost = cost
	}

	if s := raw[metaShippingAddress]; s != "" {
		if err := json.Unmarshal([]byte(s), &m.ShippingAddress); err != nil {
			return m, fmt.Errorf("metadata: decode %s: %w", metaShippingAddress, err)
		}
	}
	return m, nil
}
