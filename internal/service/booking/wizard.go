package booking

import "github.com/korattejas/beautyden-nextjs-sub001/internal/model"

// Wizard steps, in order.
const (
	StepSelectServices = iota + 1
	StepDateTime
	StepCustomerInfo
	StepReviewConfirm
)

const (
	FirstStep = StepSelectServices
	LastStep  = StepReviewConfirm
)

// StepName returns a label for step, used in logs and metrics.
func StepName(step int) string {
	switch step {
	case StepSelectServices:
		return "select_services"
	case StepDateTime:
		return "date_time"
	case StepCustomerInfo:
		return "customer_info"
	case StepReviewConfirm:
		return "review_confirm"
	default:
		return "unknown"
	}
}

// Wizard is the linear booking state machine. It holds no I/O.
type Wizard struct {
	state model.WizardState
}

func NewWizard(state model.WizardState) *Wizard {
	if state.CurrentStep < FirstStep || state.CurrentStep > LastStep {
		state.CurrentStep = FirstStep
	}
	return &Wizard{state: state}
}

func (w *Wizard) State() model.WizardState {
	s := w.state
	s.FormData.Services = append([]model.BookingService(nil), w.state.FormData.Services...)
	return s
}

func (w *Wizard) CurrentStep() int {
	return w.state.CurrentStep
}

// Next advances one step. It reports false at the last step.
func (w *Wizard) Next() bool {
	if w.state.CurrentStep >= LastStep {
		return false
	}
	w.state.CurrentStep++
	return true
}

// Prev goes back one step. It reports false at the first step.
func (w *Wizard) Prev() bool {
	if w.state.CurrentStep <= FirstStep {
		return false
	}
	w.state.CurrentStep--
	return true
}

// Update merges the non-nil fields of patch into the form.
func (w *Wizard) Update(patch model.BookingFormPatch) {
	f := &w.state.FormData
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.AppointmentDate, patch.AppointmentDate)
	set(&f.AppointmentTime, patch.AppointmentTime)
	set(&f.FirstName, patch.FirstName)
	set(&f.LastName, patch.LastName)
	set(&f.Email, patch.Email)
	set(&f.Phone, patch.Phone)
	set(&f.Address, patch.Address)
	set(&f.Notes, patch.Notes)
}

func (w *Wizard) SetServices(services []model.BookingService) {
	w.state.FormData.Services = append([]model.BookingService(nil), services...)
}

func (w *Wizard) SetCity(id model.ID) {
	w.state.FormData.CityID = id
}

// AdvanceFromCart moves from service selection to date and time when the cart
// holds something.
func (w *Wizard) AdvanceFromCart(cartSize int) bool {
	if w.state.CurrentStep != StepSelectServices || cartSize == 0 {
		return false
	}
	w.state.CurrentStep = StepDateTime
	return true
}

// Request assembles the backend booking body from the form.
func (w *Wizard) Request() model.BookingRequest {
	f := w.state.FormData
	req := model.BookingRequest{
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		Email:           f.Email,
		Phone:           f.Phone,
		AppointmentDate: f.AppointmentDate,
		AppointmentTime: f.AppointmentTime,
		Address:         f.Address,
		CityID:          f.CityID.String(),
		Notes:           f.Notes,
		ServiceIDs:      make([]string, 0, len(f.Services)),
		CategoryIDs:     make([]string, 0, len(f.Services)),
	}

	seen := make(map[model.ID]bool)
	for _, s := range f.Services {
		req.ServiceIDs = append(req.ServiceIDs, s.ID.String())
		if s.CategoryID != "" && !seen[s.CategoryID] {
			seen[s.CategoryID] = true
			req.CategoryIDs = append(req.CategoryIDs, s.CategoryID.String())
		}
		req.Subtotal += float64(s.Price)
		req.ServiceTotal += s.EffectivePrice()
	}
	req.DiscountPrice = req.Subtotal - req.ServiceTotal
	return req
}
