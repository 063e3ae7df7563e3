// Package notify derives admin notifications from upstream orders and
// inventory and tracks which of them the admin has already opened.
package notify

import (
	"shopfront/internal/domain/models"
)

// LowStockThreshold is the inclusive upper bound of the low stock band (0, 10].
const LowStockThreshold = 10

type Kind string

const (
	KindNewOrder Kind = "new_order"
	KindLowStock Kind = "low_stock"
	KindSoldOut  Kind = "sold_out"
)

// Event is one of NewOrder, LowStock or SoldOut.
type Event interface {
	Kind() Kind
	Key() string
}

type NewOrder struct {
	OrderID       string `json:"order_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type LowStock struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

type SoldOut struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
}

func (NewOrder) Kind() Kind { return KindNewOrder }
func (LowStock) Kind() Kind { return KindLowStock }
func (SoldOut) Kind() Kind  { return KindSoldOut }

func (e NewOrder) Key() string { return e.OrderID }
func (e LowStock) Key() string { return e.ProductID }
func (e SoldOut) Key() string  { return e.ProductID }

// Raw is the full event set of one poll cycle, before viewed ids are removed.
type Raw struct {
	NewOrders []NewOrder
	LowStock  []LowStock
	SoldOut   []SoldOut
}

// Derive builds the raw event set. Orders count while pending or processing.
// Products without a reported stock produce no event.
func Derive(orders []models.Order, products []models.Product) Raw {
	var r Raw
	for _, o := range orders {
		if o.ID == "" {
			continue
		}
		switch o.Status {
		case models.OrderPending, models.OrderProcessing:
			r.NewOrders = append(r.NewOrders, NewOrder{OrderID: o.ID, CustomerEmail: o.CustomerEmail})
		}
	}
	for _, p := range products {
		if p.ID == "" || p.Stock == nil {
			continue
		}
		switch s := *p.Stock; {
		case s == 0:
			r.SoldOut = append(r.SoldOut, SoldOut{ProductID: p.ID, Name: p.Name})
		case s > 0 && s <= LowStockThreshold:
			r.LowStock = append(r.LowStock, LowStock{ProductID: p.ID, Name: p.Name, Stock: s})
		}
	}
	return r
}
