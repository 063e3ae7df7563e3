package notify

import (
	"context"
	"slices"
	"sync"

	"github.com/goccy/go-json"
)

// Viewed holds the ids the admin has clicked through to. It only grows.
type Viewed struct {
	Orders   map[string]struct{}
	Products map[string]struct{}
}

func NewViewed() Viewed {
	return Viewed{
		Orders:   make(map[string]struct{}),
		Products: make(map[string]struct{}),
	}
}

func (v Viewed) HasOrder(id string) bool {
	_, ok := v.Orders[id]
	return ok
}

func (v Viewed) HasProduct(id string) bool {
	_, ok := v.Products[id]
	return ok
}

func (v *Viewed) AddOrder(id string) {
	if v.Orders == nil {
		v.Orders = make(map[string]struct{})
	}
	v.Orders[id] = struct{}{}
}

func (v *Viewed) AddProduct(id string) {
	if v.Products == nil {
		v.Products = make(map[string]struct{})
	}
	v.Products[id] = struct{}{}
}

func (v Viewed) Clone() Viewed {
	out := NewViewed()
	for id := range v.Orders {
		out.Orders[id] = struct{}{}
	}
	for id := range v.Products {
		out.Products[id] = struct{}{}
	}
	return out
}

// forget removes the ids already present in stored.
func (v Viewed) forget(stored Viewed) {
	for id := range stored.Orders {
		delete(v.Orders, id)
	}
	for id := range stored.Products {
		delete(v.Products, id)
	}
}

func (v Viewed) Equal(o Viewed) bool {
	return sameSet(v.Orders, o.Orders) && sameSet(v.Products, o.Products)
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// viewedJSON is the stored form: {"orders": [...], "products": [...]}.
type viewedJSON struct {
	Orders   []string `json:"orders"`
	Products []string `json:"products"`
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (v Viewed) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewedJSON{
		Orders:   sortedKeys(v.Orders),
		Products: sortedKeys(v.Products),
	})
}

// UnmarshalJSON accepts missing or null lists as empty.
func (v *Viewed) UnmarshalJSON(b []byte) error {
	var raw viewedJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*v = NewViewed()
	for _, id := range raw.Orders {
		v.Orders[id] = struct{}{}
	}
	for _, id := range raw.Products {
		v.Products[id] = struct{}{}
	}
	return nil
}

// ViewedStore persists the viewed set. Implementations must return an empty
// Viewed, not an error, when nothing has been stored yet.
type ViewedStore interface {
	Load(ctx context.Context) (Viewed, error)
	MarkOrder(ctx context.Context, id string) error
	MarkProduct(ctx context.Context, id string) error
}

// MemoryStore keeps the viewed set for the life of the process.
type MemoryStore struct {
	mu sync.Mutex
	v  Viewed
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{v: NewViewed()}
}

func (m *MemoryStore) Load(ctx context.Context) (Viewed, error) {
	if err := ctx.Err(); err != nil {
		return Viewed{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.Clone(), nil
}

func (m *MemoryStore) MarkOrder(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.AddOrder(id)
	return nil
}

func (m *MemoryStore) MarkProduct(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.AddProduct(id)
	return nil
}
