package model

// BookingFormData is the wizard's accumulated form. Fields are filled step by step
// and the whole form is only sent on confirmation.
type BookingFormData struct {
	Services        []BookingService `json:"services" validate:"min=1"`
	AppointmentDate string           `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	AppointmentTime string           `json:"appointment_time" validate:"required"`
	FirstName       string           `json:"first_name" validate:"required"`
	LastName        string           `json:"last_name" validate:"required"`
	Email           string           `json:"email" validate:"omitempty,email"`
	Phone           string           `json:"phone" validate:"required,min=10,max=15"`
	Address         string           `json:"address" validate:"required"`
	CityID          ID               `json:"city_id"`
	Notes           string           `json:"notes,omitempty" validate:"max=1000"`
}

// BookingFormPatch is a partial update. Nil fields are left untouched.
type BookingFormPatch struct {
	AppointmentDate *string `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	Notes           *string `json:"notes"`
}

// WizardState is the persisted booking wizard.
type WizardState struct {
	CurrentStep int             `json:"current_step"`
	FormData    BookingFormData `json:"form_data"`
}

type SelectServicesRequest struct {
	Services []BookingService `json:"services"`
}

// BookingRequest is the body posted to the backend on confirmation.
type BookingRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone"`
	ServiceIDs      []string `json:"service_id"`
	CategoryIDs     []string `json:"service_category_id"`
	AppointmentDate string   `json:"appointment_date"`
	AppointmentTime string   `json:"appointment_time"`
	Subtotal        float64  `json:"price"`
	DiscountPrice   float64  `json:"discount_price"`
	ServiceTotal    float64  `json:"service_total"`
	Address         string   `json:"service_address"`
	CityID          string   `json:"city_id"`
	Notes           string   `json:"special_notes,omitempty"`
}

// BookingConfirmation is what the backend returns for a created booking.
type BookingConfirmation struct {
	OrderNumber string `json:"order_number"`
	BookingID   ID     `json:"id,omitempty"`
	Status      string `json:"status,omitempty"`
}
