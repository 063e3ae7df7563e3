package mapper

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"shopfront/internal/apis/shop/responses"
	"shopfront/internal/domain/models"
)

func FromService(s responses.Service) models.CatalogEntry {
	return models.CatalogEntry{
		ID:          s.ID,
		Name:        strings.TrimSpace(s.Name),
		Description: s.Description,
		Category:    s.Category,
		Price:       numberPtr(s.Price),
		Duration:    numberPtr(s.Duration),
		Image:       s.Image,
	}
}

func FromServices(in []responses.Service) []models.CatalogEntry {
	out := make([]models.CatalogEntry, 0, len(in))
	for _, s := range in {
		if s.ID == "" && s.Name == "" {
			continue
		}
		out = append(out, FromService(s))
	}
	return out
}

func FromOrders(in []responses.Order) []models.Order {
	out := make([]models.Order, 0, len(in))
	for _, o := range in {
		email := o.CustomerEmail
		if email == "" && o.Customer != nil {
			email = o.Customer.Email
		}
		total := 0
		if p := numberPtr(o.Total); p != nil {
			total = *p
		}
		out = append(out, models.Order{
			ID:            o.ID,
			Status:        strings.ToLower(strings.TrimSpace(o.OrderStatus)),
			CustomerEmail: email,
			Total:         total,
			CreatedAt:     o.CreatedAt,
		})
	}
	return out
}

func FromProducts(in []responses.Product) []models.Product {
	out := make([]models.Product, 0, len(in))
	for _, p := range in {
		price := 0
		if v := numberPtr(p.Price); v != nil {
			price = *v
		}
		out = append(out, models.Product{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    price,
			Stock:    p.Stock,
			Image:    p.Image,
		})
	}
	return out
}

func FromMessages(in responses.MessageList) []models.Message {
	out := make([]models.Message, 0, len(in))
	for _, m := range in {
		out = append(out, models.Message{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Subject:   m.Subject,
			Body:      m.Message,
			Status:    strings.ToLower(strings.TrimSpace(m.Status)),
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

// numberPtr reads an integer-valued JSON number. Fractional values are
// rounded; an absent or malformed number is nil.
func numberPtr(n json.Number) *int {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	v := int(math.Round(f))
	return &v
}
