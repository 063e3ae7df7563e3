package responses

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Service is a catalog service as the upstream serializes it.
type Service struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Duration    json.Number `json:"duration"`
	Image       string      `json:"image"`
	IsActive    *bool       `json:"isActive"`
}

type ServiceList struct {
	Services []Service `json:"services"`
}

type Customer struct {
	Email string `json:"email"`
}

type Order struct {
	ID            string      `json:"_id"`
	OrderStatus   string      `json:"orderStatus"`
	CustomerEmail string      `json:"customerEmail"`
	Customer      *Customer   `json:"customer"`
	Total         json.Number `json:"totalAmount"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type OrderList struct {
	Orders []Order `json:"orders"`
}

type Product struct {
	ID       string      `json:"_id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Price    json.Number `json:"price"`
	Stock    *int        `json:"stock"`
	Image    string      `json:"image"`
}

type ProductList struct {
	Products []Product `json:"products"`
}

type Message struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageList accepts both `{"messages": [...]}` and a bare array.
type MessageList []Message

func (l *MessageList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case b[0] == '[':
		var arr []Message
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	case b[0] == '{':
		var wrapped struct {
			Messages []Message `json:"messages"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return err
		}
		*l = wrapped.Messages
		return nil
	default:
		return fmt.Errorf("messages: unexpected json %q", b[:min(len(b), 32)])
	}
}
