package model

import (
	"encoding/json"
	"fmt"
)

type Customer struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Pincode      string `json:"pincode,omitempty"`
}

type SendOTPRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required,numeric,len=10"`
}

type VerifyOTPRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required,numeric,len=10"`
	OTP          string `json:"otp" binding:"required,numeric,min=4,max=6"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode" binding:"omitempty,numeric,len=6"`
}

// CustomerPayload is the normalized shape of auth and profile responses. The
// backend sends either {"customer": {...}, "token": "..."} or the customer
// object at the top level.
type CustomerPayload struct {
	Customer Customer
	Token    string
}

func (p *CustomerPayload) UnmarshalJSON(b []byte) error {
	var wrapped struct {
		Customer    json.RawMessage `json:"customer"`
		Token       string          `json:"token"`
		AccessToken string          `json:"access_token"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return fmt.Errorf("invalid customer payload: %w", err)
	}

	p.Token = wrapped.Token
	if p.Token == "" {
		p.Token = wrapped.AccessToken
	}

	body := b
	if len(wrapped.Customer) > 0 && string(wrapped.Customer) != "null" {
		body = wrapped.Customer
	}
	if err := json.Unmarshal(body, &p.Customer); err != nil {
		return fmt.Errorf("invalid customer payload: %w", err)
	}
	return nil
}

// AuthSession is the gateway's view of the OTP login state.
type AuthSession struct {
	IsOTPVerified bool   `json:"is_otp_verified"`
	MobileNumber  string `json:"mobile_number,omitempty"`
}
