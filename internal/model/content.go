package model

// Settings is the flat remote configuration blob (phone_number, our_mission, ...).
type Settings map[string]string

// Get returns the value for key or fallback when it is missing or blank.
func (s Settings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

type Blog struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Excerpt     string `json:"excerpt,omitempty"`
	Content     string `json:"content,omitempty"`
	Image       string `json:"image,omitempty"`
	Author      string `json:"author,omitempty"`
	Category    string `json:"category,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

type BlogFilter struct {
	Pagination
	Search   string `form:"search"`
	Category string `form:"category"`
}

type FAQ struct {
	ID       ID     `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

type Policy struct {
	ID      ID     `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Review struct {
	ID           ID     `json:"id"`
	CustomerName string `json:"customer_name"`
	Rating       Amount `json:"rating"`
	Review       string `json:"review"`
	ServiceID    ID     `json:"service_id,omitempty"`
	ServiceName  string `json:"service_name,omitempty"`
	Photo        string `json:"photo,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type ReviewFilter struct {
	Pagination
	ServiceID ID `form:"service_id"`
}

type ProductBrand struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type HiringApplication struct {
	Name       string `json:"name" binding:"required,min=2"`
	Phone      string `json:"phone" binding:"required,min=10,max=15"`
	Email      string `json:"email" binding:"omitempty,email"`
	City       string `json:"city" binding:"required"`
	Role       string `json:"role" binding:"required"`
	Experience string `json:"experience"`
	Message    string `json:"message" binding:"max=2000"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"omitempty,min=10,max=15"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required,max=2000"`
}
