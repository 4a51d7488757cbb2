package stubapi

import (
	"sync"
	"time"
)

type Order struct {
	ID        int       `json:"id"`
	Owner     string    `json:"owner"`
	SessionID string    `json:"sessionId"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Seller string  `json:"seller"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
}

type Payout struct {
	ID     int     `json:"id"`
	Seller string  `json:"seller"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

var catalog = []Product{
	{ID: 1, Name: "Canvas tote", Seller: "seller", Price: 18.5, Stock: 40},
	{ID: 2, Name: "Ceramic mug", Seller: "seller", Price: 12, Stock: 120},
	{ID: 3, Name: "Linen apron", Seller: "atelier", Price: 32, Stock: 15},
}

var payouts = []Payout{
	{ID: 1, Seller: "seller", Amount: 412.75, Status: "PAID"},
	{ID: 2, Seller: "seller", Amount: 98.2, Status: "PENDING"},
	{ID: 3, Seller: "atelier", Amount: 230, Status: "PAID"},
}

// orderBook records orders created by payment confirmation. Confirming the
// same checkout session twice returns the original order.
type orderBook struct {
	mu            sync.Mutex
	orders        []Order
	bySession     map[string]int
	confirmations map[string]int
	now           func() time.Time
}

func newOrderBook() *orderBook {
	return &orderBook{
		bySession:     make(map[string]int),
		confirmations: make(map[string]int),
		now:           time.Now,
	}
}

// confirm returns the order for sessionID, creating it on first use.
func (b *orderBook) confirm(owner, sessionID string) (Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.confirmations[sessionID]++
	if idx, ok := b.bySession[sessionID]; ok {
		return b.orders[idx], true
	}

	o := Order{
		ID:        len(b.orders) + 1,
		Owner:     owner,
		SessionID: sessionID,
		Status:    "PAID",
		Total:     49.99,
		CreatedAt: b.now().UTC(),
	}
	b.orders = append(b.orders, o)
	b.bySession[sessionID] = len(b.orders) - 1
	return o, false
}

func (b *orderBook) ownedBy(owner string) []Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Order, 0)
	for _, o := range b.orders {
		if o.Owner == owner {
			out = append(out, o)
		}
	}
	return out
}

func (b *orderBook) all() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(make([]Order, 0, len(b.orders)), b.orders...)
}

func (b *orderBook) confirmationCount(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.confirmations[sessionID]
}
