package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	shippingLineName     = "Frete"
	defaultPaymentMethod = "card"
	defaultCurrency      = "brl"
)

var shippingCost = decimal.NewFromInt(20)

type CheckoutService struct {
	Repo         *repo.GormRepo
	Provider     payment.Provider
	OrderNumbers *OrderNumberGenerator
	Events       events.Publisher
	OrderTopic   string
	Currency     string
	ClientURL    string
}

// ShippingCost is the flat shipping fee charged on every checkout.
func (s *CheckoutService) ShippingCost() decimal.Decimal {
	return shippingCost
}

func (s *CheckoutService) currency() string {
	if s.Currency == "" {
		return defaultCurrency
	}
	return s.Currency
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// CreateSession prices the cart from the catalog and opens a hosted checkout
// session. No order exists until the session is confirmed.
func (s *CheckoutService) CreateSession(ctx context.Context, userID uuid.UUID, req transport.CreateCheckoutSessionRequest) (*transport.CreateCheckoutSessionResponse, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.create_session", "user_id", userID)

	if req.ShippingAddress == nil || strings.TrimSpace(req.ShippingAddress.PostalCode) == "" {
		return nil, fmt.Errorf("%w: shipping address with postal code is required", ErrValidation)
	}
	if len(req.Products) == 0 {
		return nil, fmt.Errorf("%w: products are required", ErrValidation)
	}

	ids := make([]uuid.UUID, 0, len(req.Products))
	for _, p := range req.Products {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product id %q", ErrValidation, p.ID)
		}
		if p.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
		}
		ids = append(ids, id)
	}

	catalog, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lineItems := make([]payment.LineItem, 0, len(req.Products)+1)
	snapshot := make([]payment.MetadataProduct, 0, len(req.Products))
	var productCents int64
	for i, id := range ids {
		p, ok := catalog[id]
		if !ok {
			return nil, fmt.Errorf("%w: product %s not found", ErrNotFound, id)
		}
		qty := req.Products[i].Quantity
		unit := toCents(decimal.NewFromFloat(p.Price))
		productCents += unit * int64(qty)

		var images []string
		if p.Image != "" {
			images = []string{p.Image}
		}
		lineItems = append(lineItems, payment.LineItem{
			Name:       p.Name,
			Images:     images,
			UnitAmount: unit,
			Quantity:   int64(qty),
		})
		snapshot = append(snapshot, payment.MetadataProduct{ID: id.String(), Quantity: qty, Price: p.Price})
	}
	lineItems = append(lineItems, payment.LineItem{
		Name:       shippingLineName,
		UnitAmount: toCents(s.ShippingCost()),
		Quantity:   1,
	})

	var (
		couponCode string
		discountID string
	)
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		coupon, err := s.Repo.FindActiveCoupon(ctx, code, userID)
		switch {
		case err == nil:
			discountID, err = s.Provider.CreateDiscount(ctx, coupon.DiscountPercentage)
			if err != nil {
				return nil, err
			}
			couponCode = coupon.Code
			productCents -= decimal.NewFromInt(productCents).
				Mul(decimal.NewFromFloat(coupon.DiscountPercentage)).
				Div(decimal.NewFromInt(100)).
				Round(0).IntPart()
		case notFound(err):
			l.Info("coupon_ignored", "code", code)
		default:
			return nil, err
		}
	}

	meta, err := payment.CheckoutMetadata{
		UserID:          userID.String(),
		CouponCode:      couponCode,
		Products:        snapshot,
		ShippingCost:    s.ShippingCost().InexactFloat64(),
		ShippingAddress: *req.ShippingAddress,
	}.Encode()
	if errors.Is(err, payment.ErrMetadataTooLarge) {
		return nil, fmt.Errorf("%w: too many products for one checkout", ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	sess, err := s.Provider.CreateSession(ctx, payment.SessionRequest{
		Currency:   s.currency(),
		LineItems:  lineItems,
		SuccessURL: s.ClientURL + "/purchase-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.ClientURL + "/purchase-cancel",
		DiscountID: discountID,
		Metadata:   meta,
	})
	if err != nil {
		return nil, err
	}

	l.Info("checkout_session_created", "session_id", sess.ID, "product_cents", productCents, "amount_total", sess.AmountTotal)
	return &transport.CreateCheckoutSessionResponse{ID: sess.ID, TotalAmount: fromCents(sess.AmountTotal)}, nil
}

// ConfirmSession turns a paid session into an order. Confirming the same
// session again returns the order created the first time.
func (s *CheckoutService) ConfirmSession(ctx context.Context, userID uuid.UUID, sessionID string) (*transport.CheckoutSuccessResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrValidation)
	}
	ctx = logging.With(ctx, "session_id", sessionID)
	l := logging.FromContext(ctx).With("svc", "checkout.confirm", "user_id", userID)

	sess, err := s.Provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Paid {
		return nil, ErrPaymentNotCompleted
	}

	existing, err := s.Repo.FindOrderBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		if existing.UserID != userID {
			return nil, fmt.Errorf("%w: session belongs to another user", ErrForbidden)
		}
		return alreadyConfirmed(existing), nil
	case !notFound(err):
		return nil, err
	}

	meta, err := payment.DecodeCheckoutMetadata(sess.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	owner, err := uuid.Parse(meta.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user in session metadata", ErrValidation)
	}
	if owner != userID {
		return nil, fmt.Errorf("%w: session belongs to another user", ErrForbidden)
	}

	if meta.CouponCode != "" {
		if err := s.Repo.DeactivateCoupon(ctx, owner, meta.CouponCode); err != nil {
			return nil, err
		}
	}

	items := make([]models.OrderItem, 0, len(meta.Products))
	ids := make([]uuid.UUID, 0, len(meta.Products))
	for _, p := range meta.Products {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product id in session metadata", ErrValidation)
		}
		items = append(items, models.OrderItem{ProductID: id, Quantity: p.Quantity, Price: p.Price})
		ids = append(ids, id)
	}

	catalog, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := catalog[id]; ok {
			categories = append(categories, p.Category)
		}
	}

	number, err := s.OrderNumbers.Generate(ctx, owner, items, categories)
	if err != nil {
		return nil, err
	}

	method := sess.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}

	order := &models.Order{
		OrderNumber:     number,
		UserID:          owner,
		Items:           items,
		TotalAmount:     fromCents(sess.AmountTotal),
		StripeSessionID: sessionID,
		ShippingAddress: meta.ShippingAddress.ToModel(),
		ShippingCost:    meta.ShippingCost,
		PaymentMethod:   method,
		Status:          models.OrderStatusProcessing,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		winner, ferr := s.Repo.FindOrderBySessionID(ctx, sessionID)
		if ferr != nil {
			return nil, err
		}
		l.Info("order_already_created", "order_id", winner.ID)
		return alreadyConfirmed(winner), nil
	}

	if err := s.Repo.ClearCart(ctx, owner); err != nil {
		l.Error("clear_cart_error", "error", err)
	}

	l.Info("order_created", "order_id", order.ID, "order_number", order.OrderNumber)
	publish(ctx, s.Events, s.OrderTopic, events.New("order_created", order.ID.String(), order))

	return &transport.CheckoutSuccessResponse{
		Success:     true,
		Message:     "Payment successful, order created, and coupon deactivated if used.",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}, nil
}

func alreadyConfirmed(o *models.Order) *transport.CheckoutSuccessResponse {
	return &transport.CheckoutSuccessResponse{
		Success:     true,
		Message:     "Order already exists for this session",
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
	}
}
