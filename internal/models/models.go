package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"_id"`
	Name         string    `gorm:"not null"              json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	Role         string    `gorm:"not null"              json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                           json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_line;not null"  json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_line;index;not null" json:"productId"`
	Size      string    `gorm:"uniqueIndex:idx_cart_line;not null"             json:"size"`
	Quantity  int       `gorm:"not null;check:quantity > 0"                    json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"        json:"_id"`
	Name        string    `gorm:"not null"                    json:"name"`
	Description string    `gorm:"not null"                    json:"description"`
	Price       float64   `gorm:"not null;check:price >= 0"   json:"price"`
	Image       string    `json:"image"`
	Category    string    `gorm:"index;not null"              json:"category"`
	Sizes       []string  `gorm:"serializer:json;type:text"   json:"sizes"`
	IsFeatured  bool      `gorm:"index"                       json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Coupon struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"         json:"_id"`
	Code               string    `gorm:"uniqueIndex;not null"         json:"code"`
	DiscountPercentage float64   `gorm:"not null"                     json:"discountPercentage"`
	ExpirationDate     time.Time `gorm:"not null"                     json:"expirationDate"`
	IsActive           bool      `gorm:"not null"                     json:"isActive"`
	UserID             uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}

func All() []any {
	return []any{&User{}, &CartItem{}, &Product{}, &Coupon{}, &Order{}, &OrderItem{}}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
