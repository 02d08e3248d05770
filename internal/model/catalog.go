package model

// ServiceCategory groups services in the catalog.
type ServiceCategory struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
}

// BookingService is a bookable catalog entry. Cart items carry the same shape.
type BookingService struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Price         Amount `json:"price"`
	DiscountPrice Amount `json:"discount_price,omitempty"`
	Duration      string `json:"duration"`
	CategoryID    ID     `json:"category_id"`
	CategoryName  string `json:"category_name"`
	Description   string `json:"description,omitempty"`
	Icon          string `json:"icon,omitempty"`
}

// EffectivePrice is the discounted price when one is set, otherwise the list price.
func (s BookingService) EffectivePrice() float64 {
	if s.DiscountPrice > 0 {
		return float64(s.DiscountPrice)
	}
	return float64(s.Price)
}

// ServiceFilter narrows a catalog listing.
type ServiceFilter struct {
	Pagination
	CityID     ID     `json:"city_id" form:"-"`
	CategoryID ID     `json:"category_id,omitempty" form:"category_id"`
	Search     string `json:"search,omitempty" form:"search"`
}

// CartItem is a selected service. Quantity is always 1.
type CartItem struct {
	BookingService
	Quantity int `json:"quantity"`
}

// CartSummary is the cart as returned to clients.
type CartSummary struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}
