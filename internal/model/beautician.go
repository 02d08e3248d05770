package model

// TeamMember is the raw team record the backend returns.
type TeamMember struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Address     string `json:"address"`
	Phone       string `json:"phone,omitempty"`
	Photo       string `json:"photo,omitempty"`
	Experience  string `json:"experience,omitempty"`
	Rating      Amount `json:"rating,omitempty"`
	Specialties string `json:"specialties,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// Beautician is a team member placed on the map. Latitude, Longitude and Area
// come from the neighborhood table, not from real geocoding.
type Beautician struct {
	TeamMember
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Area      string   `json:"area"`
	Distance  *float64 `json:"distance,omitempty"`
}

type BeauticianQuery struct {
	Location string   `form:"location" binding:"max=100"`
	Lat      *float64 `form:"lat" binding:"omitempty,min=-90,max=90"`
	Lng      *float64 `form:"lng" binding:"omitempty,min=-180,max=180"`
	RadiusKm float64  `form:"radius" binding:"min=0,max=100"`
	All      bool     `form:"all"`
}
