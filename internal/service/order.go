package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Topic  string
}

func (s *OrderService) MyOrders(ctx context.Context, userID uuid.UUID) ([]transport.OrderView, error) {
	orders, err := s.Repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders, false)
}

func (s *OrderService) AllOrders(ctx context.Context) ([]transport.OrderView, error) {
	orders, err := s.Repo.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders, true)
}

// views joins orders with product summaries and, for admins, with the owner.
func (s *OrderService) views(ctx context.Context, orders []models.Order, withUser bool) ([]transport.OrderView, error) {
	var productIDs, userIDs []uuid.UUID
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
		for _, it := range o.Items {
			productIDs = append(productIDs, it.ProductID)
		}
	}

	products, err := s.Repo.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	var users map[uuid.UUID]models.User
	if withUser {
		if users, err = s.Repo.UsersByIDs(ctx, userIDs); err != nil {
			return nil, err
		}
	}

	out := make([]transport.OrderView, 0, len(orders))
	for _, o := range orders {
		v := transport.OrderView{
			ID:              o.ID,
			OrderNumber:     o.OrderNumber,
			Products:        make([]transport.OrderLineView, 0, len(o.Items)),
			TotalAmount:     o.TotalAmount,
			ShippingAddress: o.ShippingAddress,
			ShippingCost:    o.ShippingCost,
			PaymentMethod:   o.PaymentMethod,
			Status:          o.Status,
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		}
		for _, it := range o.Items {
			line := transport.OrderLineView{Quantity: it.Quantity, Price: it.Price}
			if p, ok := products[it.ProductID]; ok {
				line.Product = &transport.ProductSummary{ID: p.ID, Name: p.Name, Image: p.Image, Price: p.Price}
			}
			v.Products = append(v.Products, line)
		}
		if u, ok := users[o.UserID]; ok {
			v.User = &transport.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *OrderService) getOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, err
	}
	return o, nil
}

// UpdateStatus lets an admin move an order forward through processing,
// confirmed and shipped. Re-applying the current status is accepted.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.AdminSettable() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	o, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if status.Before(o.Status) {
		return nil, fmt.Errorf("%w: cannot move order from %s back to %s", ErrValidation, o.Status, status)
	}
	if status == o.Status {
		return o, nil
	}

	if err := s.transition(ctx, o, status); err != nil {
		return nil, err
	}
	return o, nil
}

// ConfirmDelivery is the owner's acknowledgement that a shipped order arrived.
func (s *OrderService) ConfirmDelivery(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	o, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}
	if o.Status != models.OrderStatusShipped {
		return nil, fmt.Errorf("%w: order must be shipped to confirm delivery", ErrValidation)
	}

	if err := s.transition(ctx, o, models.OrderStatusReceived); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) transition(ctx context.Context, o *models.Order, to models.OrderStatus) error {
	from := o.Status
	if err := s.Repo.UpdateOrderStatus(ctx, o.ID, from, to); err != nil {
		if errors.Is(err, repo.ErrStaleStatus) {
			return fmt.Errorf("%w: order status changed concurrently", ErrConflict)
		}
		return err
	}
	o.Status = to

	logging.FromContext(ctx).Info("order_status_changed", "order_id", o.ID, "from", from, "to", to)
	publish(ctx, s.Events, s.Topic, events.New("order_status_changed", o.ID.String(), map[string]any{
		"from": from,
		"to":   to,
	}))
	return nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		if notFound(err) {
			return fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return err
	}
	publish(ctx, s.Events, s.Topic, events.New("order_deleted", id.String(), nil))
	return nil
}
