package models

import "time"

// CatalogEntry is a service or product as the storefront lists it.
// Price is in minor currency units (cents), Duration in minutes.
// A nil Price or Duration means the upstream omitted the field.
type CatalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       *int   `json:"price,omitempty"`
	Duration    *int   `json:"duration,omitempty"`
	Image       string `json:"image,omitempty"`
}

func (e CatalogEntry) PriceOrZero() int {
	if e.Price == nil {
		return 0
	}
	return *e.Price
}

func (e CatalogEntry) DurationOrZero() int {
	if e.Duration == nil {
		return 0
	}
	return *e.Duration
}

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

type Order struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Total         int       `json:"total"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Product is an inventory item. A nil Stock means the upstream did not
// report stock, which is neither low nor sold out.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Price    int    `json:"price"`
	Stock    *int   `json:"stock,omitempty"`
	Image    string `json:"image,omitempty"`
}

const (
	MessageUnread = "unread"
	MessageRead   = "read"
)

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// StaffMember is the admin form for a bookable staff member.
type StaffMember struct {
	ID       string   `json:"_id,omitempty"`
	Name     string   `json:"name" validate:"required,min=2,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Phone    string   `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role     string   `json:"role" validate:"required,oneof=admin manager staff"`
	Services []string `json:"services,omitempty"`
	IsActive bool     `json:"isActive"`
}

// ProductInput is the admin form for creating or editing a product.
type ProductInput struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description,omitempty" validate:"max=5000"`
	Category    string `json:"category" validate:"required"`
	Price       int    `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
}

type Customer struct {
	ID        string `json:"_id,omitempty"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Notes     string `json:"notes,omitempty" validate:"max=2000"`
}
