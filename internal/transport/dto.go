package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Meta     PageMeta         `json:"meta"`
}

type CartLine struct {
	models.Product
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size"`
}

type RemoveFromCartRequest struct {
	ProductID *uuid.UUID `json:"productId"`
	Size      string     `json:"size"`
}

type UpdateQuantityRequest struct {
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
}

type ValidateCouponRequest struct {
	Code string `json:"code"`
}

type ValidateCouponResponse struct {
	Message            string  `json:"message"`
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

type CheckoutProduct struct {
	ID       string  `json:"_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type CreateCheckoutSessionRequest struct {
	Products        []CheckoutProduct `json:"products"`
	CouponCode      string            `json:"couponCode"`
	ShippingAddress *payment.Address  `json:"shippingAddress"`
}

type CreateCheckoutSessionResponse struct {
	ID          string  `json:"id"`
	TotalAmount float64 `json:"totalAmount"`
}

type CheckoutSuccessRequest struct {
	SessionID string `json:"sessionId"`
}

type CheckoutSuccessResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type ProductSummary struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
	Price float64   `json:"price"`
}

type UserSummary struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type OrderLineView struct {
	Product  *ProductSummary `json:"product"`
	Quantity int             `json:"quantity"`
	Price    float64         `json:"price"`
}

type OrderView struct {
	ID              uuid.UUID          `json:"_id"`
	OrderNumber     string             `json:"orderNumber"`
	User            *UserSummary       `json:"user,omitempty"`
	Products        []OrderLineView    `json:"products"`
	TotalAmount     float64            `json:"totalAmount"`
	ShippingAddress models.Address     `json:"shippingAddress"`
	ShippingCost    float64            `json:"shippingCost"`
	PaymentMethod   string             `json:"paymentMethod"`
	Status          models.OrderStatus `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type AnalyticsData struct {
	Users        int64   `json:"users"`
	Products     int64   `json:"products"`
	TotalSales   int64   `json:"totalSales"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type DailySales struct {
	Date    string  `json:"date"`
	Sales   int64   `json:"sales"`
	Revenue float64 `json:"revenue"`
}

type AnalyticsResponse struct {
	AnalyticsData  AnalyticsData `json:"analyticsData"`
	DailySalesData []DailySales  `json:"dailySalesData"`
}
