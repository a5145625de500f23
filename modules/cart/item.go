package cart

import (
	"encoding/json"
	"math"
)

// LineItem is one product entry of the cart.
type LineItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// MarshalJSON writes non-finite prices as null so one bad price never
// blocks later snapshots. A null price reads back as zero.
func (item LineItem) MarshalJSON() ([]byte, error) {
	var price *float64
	if !math.IsInf(item.Price, 0) && !math.IsNaN(item.Price) {
		price = &item.Price
	}

	return json.Marshal(struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		ImageURL string   `json:"image_url"`
		Price    *float64 `json:"price"`
		Quantity int      `json:"quantity"`
	}{item.ID, item.Title, item.ImageURL, price, item.Quantity})
}

// Candidate is what callers hand to Add. The cart seeds the quantity.
type Candidate struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

func (c Candidate) withQuantity(n int) LineItem {
	return LineItem{
		ID:       c.ID,
		Title:    c.Title,
		ImageURL: c.ImageURL,
		Price:    c.Price,
		Quantity: n,
	}
}

// Snapshot is an immutable view of the cart contents at one point in time.
type Snapshot []LineItem

// Find returns the item stored under id.
func (s Snapshot) Find(id string) (LineItem, bool) {
	if i := s.index(id); i >= 0 {
		return s[i], true
	}
	return LineItem{}, false
}

// Count sums the quantities of every item.
func (s Snapshot) Count() int {
	n := 0
	for _, item := range s {
		n += item.Quantity
	}
	return n
}

func (s Snapshot) index(id string) int {
	for i, item := range s {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}
