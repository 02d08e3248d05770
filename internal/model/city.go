package model

// City is a service area. Selecting one gates the catalog and booking flow.
type City struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Area      string `json:"area"`
	Slug      string `json:"slug"`
	Icon      string `json:"icon"`
	IsPopular Flag   `json:"is_popular"`
}

// CityState is what a client sees when it first loads: the selected city (if any)
// and whether the city picker should be shown.
type CityState struct {
	SelectedCity  *City `json:"selected_city"`
	IsFirstVisit  bool  `json:"is_first_visit"`
	ShowCityPopup bool  `json:"show_city_popup"`
}

type SelectCityRequest struct {
	City *City `json:"city"`
}

type CityPopupRequest struct {
	Visible bool `json:"visible"`
}
