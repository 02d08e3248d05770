package cart

import "github.com/korattejas/beautyden-nextjs-sub001/internal/model"

// Cart is an ordered set of services keyed by id. Every item has quantity 1.
type Cart struct {
	items []model.CartItem
}

func New(items ...model.CartItem) *Cart {
	c := &Cart{}
	for _, it := range items {
		c.Add(it.BookingService)
	}
	return c
}

// Add appends the service unless its id is already present.
func (c *Cart) Add(s model.BookingService) bool {
	if c.Contains(s.ID) {
		return false
	}
	c.items = append(c.items, model.CartItem{BookingService: s, Quantity: 1})
	return true
}

// Remove drops the item with id. Removing an absent id is a no-op.
func (c *Cart) Remove(id model.ID) bool {
	for i, it := range c.items {
		if it.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Clear() bool {
	if len(c.items) == 0 {
		return false
	}
	c.items = nil
	return true
}

func (c *Cart) Contains(id model.ID) bool {
	for _, it := range c.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// SyncTo makes the cart hold exactly the selected services: ids new to the cart
// are added, ids no longer selected are removed. Order of existing items is kept.
func (c *Cart) SyncTo(selection []model.BookingService) (added, removed []model.ID) {
	selected := make(map[model.ID]struct{}, len(selection))
	for _, s := range selection {
		selected[s.ID] = struct{}{}
	}

	for _, it := range c.Items() {
		if _, ok := selected[it.ID]; !ok {
			c.Remove(it.ID)
			removed = append(removed, it.ID)
		}
	}
	for _, s := range selection {
		if c.Add(s) {
			added = append(added, s.ID)
		}
	}
	return added, removed
}

// Items returns a copy of the cart contents.
func (c *Cart) Items() []model.CartItem {
	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Services returns the cart contents as plain services.
func (c *Cart) Services() []model.BookingService {
	out := make([]model.BookingService, len(c.items))
	for i, it := range c.items {
		out[i] = it.BookingService
	}
	return out
}

func (c *Cart) TotalItems() int {
	return len(c.items)
}

// TotalPrice sums the discounted price of each item, falling back to the list price.
func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, it := range c.items {
		total += it.EffectivePrice()
	}
	return total
}

func (c *Cart) Summary() model.CartSummary {
	return model.CartSummary{
		Items:      c.Items(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}
