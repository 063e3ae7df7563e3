package notify

import "time"

// Snapshot is the unseen notification state after one successful cycle.
type Snapshot struct {
	NewOrders []NewOrder `json:"new_orders"`
	LowStock  []LowStock `json:"low_stock"`
	SoldOut   []SoldOut  `json:"sold_out"`
	Unread    int        `json:"unread"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Unseen removes viewed ids from raw. Orders are checked against the viewed
// orders set; low stock and sold out against the viewed products set.
func Unseen(raw Raw, viewed Viewed) Snapshot {
	s := Snapshot{
		NewOrders: keep(raw.NewOrders, viewed.HasOrder),
		LowStock:  keep(raw.LowStock, viewed.HasProduct),
		SoldOut:   keep(raw.SoldOut, viewed.HasProduct),
	}
	s.recount()
	return s
}

// without drops every event whose id is in v.
func (s Snapshot) without(v Viewed) Snapshot {
	s.NewOrders = keep(s.NewOrders, v.HasOrder)
	s.LowStock = keep(s.LowStock, v.HasProduct)
	s.SoldOut = keep(s.SoldOut, v.HasProduct)
	s.recount()
	return s
}

func (s Snapshot) Events() []Event {
	out := make([]Event, 0, s.Unread)
	for _, e := range s.NewOrders {
		out = append(out, e)
	}
	for _, e := range s.LowStock {
		out = append(out, e)
	}
	for _, e := range s.SoldOut {
		out = append(out, e)
	}
	return out
}

func keep[E Event](events []E, seen func(string) bool) []E {
	out := make([]E, 0, len(events))
	for _, e := range events {
		if !seen(e.Key()) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Snapshot) recount() {
	s.Unread = len(s.NewOrders) + len(s.LowStock) + len(s.SoldOut)
}

func (s Snapshot) clone() Snapshot {
	s.NewOrders = append([]NewOrder(nil), s.NewOrders...)
	s.LowStock = append([]LowStock(nil), s.LowStock...)
	s.SoldOut = append([]SoldOut(nil), s.SoldOut...)
	return s
}

func (s *Snapshot) dropOrder(id string) {
	s.NewOrders = drop(s.NewOrders, id)
	s.recount()
}

func (s *Snapshot) dropProduct(id string) {
	s.LowStock = drop(s.LowStock, id)
	s.SoldOut = drop(s.SoldOut, id)
	s.recount()
}

func drop[E Event](events []E, id string) []E {
	out := events[:0]
	for _, e := range events {
		if e.Key() != id {
			out = append(out, e)
		}
	}
	return out
}

// Section is one capped category of the dropdown.
type Section[E Event] struct {
	Items []E  `json:"items"`
	Count int  `json:"count"`
	More  bool `json:"more"`
}

// Dropdown is what the admin header renders. Total is the true unseen total,
// not the number of items shown.
type Dropdown struct {
	Total     int               `json:"total"`
	NewOrders Section[NewOrder] `json:"new_orders"`
	LowStock  Section[LowStock] `json:"low_stock"`
	SoldOut   Section[SoldOut]  `json:"sold_out"`
	UpdatedAt time.Time         `json:"updated_at"`
}

const DefaultDisplayLimit = 3

func Display(s Snapshot, limit int) Dropdown {
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}
	return Dropdown{
		Total:     s.Unread,
		NewOrders: section(s.NewOrders, limit),
		LowStock:  section(s.LowStock, limit),
		SoldOut:   section(s.SoldOut, limit),
		UpdatedAt: s.UpdatedAt,
	}
}

func section[E Event](events []E, limit int) Section[E] {
	n := min(len(events), limit)
	items := make([]E, n)
	copy(items, events[:n])
	return Section[E]{Items: items, Count: len(events), More: len(events) > limit}
}
