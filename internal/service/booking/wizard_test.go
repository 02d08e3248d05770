package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
)

func TestWizardBoundaries(t *testing.T) {
	w := NewWizard(model.WizardState{})
	assert.Equal(t, StepSelectServices, w.CurrentStep())

	assert.False(t, w.Prev())
	assert.Equal(t, StepSelectServices, w.CurrentStep())

	for i := 0; i < 3; i++ {
		assert.True(t, w.Next())
	}
	assert.Equal(t, StepReviewConfirm, w.CurrentStep())
	assert.False(t, w.Next())
	assert.Equal(t, StepReviewConfirm, w.CurrentStep())

	assert.True(t, w.Prev())
	assert.Equal(t, StepCustomerInfo, w.CurrentStep())
}

func TestWizardClampsInvalidStoredStep(t *testing.T) {
	assert.Equal(t, FirstStep, NewWizard(model.WizardState{CurrentStep: 9}).CurrentStep())
}

func TestWizardUpdateMergesPresentFields(t *testing.T) {
	w := NewWizard(model.WizardState{})
	date, first := "2026-11-02", "Asha"
	w.Update(model.BookingFormPatch{AppointmentDate: &date, FirstName: &first})

	time := "10:30"
	other := "Riya"
	w.Update(model.BookingFormPatch{AppointmentTime: &time, FirstName: &other})

	f := w.State().FormData
	assert.Equal(t, "2026-11-02", f.AppointmentDate)
	assert.Equal(t, "10:30", f.AppointmentTime)
	assert.Equal(t, "Riya", f.FirstName)
}

func TestAdvanceFromCartOnlyFromFirstStep(t *testing.T) {
	w := NewWizard(model.WizardState{})
	assert.False(t, w.AdvanceFromCart(0))
	assert.True(t, w.AdvanceFromCart(2))
	assert.Equal(t, StepDateTime, w.CurrentStep())
	assert.False(t, w.AdvanceFromCart(2))
	assert.Equal(t, StepDateTime, w.CurrentStep())
}

func TestRequestTotals(t *testing.T) {
	w := NewWizard(model.WizardState{})
	w.SetCity("3")
	w.SetServices([]model.BookingService{
		{ID: "1", Price: 100, CategoryID: "10"},
		{ID: "2", Price: 200, DiscountPrice: 150, CategoryID: "10"},
		{ID: "3", Price: 50, CategoryID: "11"},
	})

	req := w.Request()
	assert.Equal(t, []string{"1", "2", "3"}, req.ServiceIDs)
	assert.Equal(t, []string{"10", "11"}, req.CategoryIDs)
	assert.Equal(t, 350.0, req.Subtotal)
	assert.Equal(t, 300.0, req.ServiceTotal)
	assert.Equal(t, 50.0, req.DiscountPrice)
	assert.Equal(t, "3", req.CityID)
}
