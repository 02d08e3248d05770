package model

type CookieConsent string

const (
	CookieConsentAccepted CookieConsent = "accepted"
	CookieConsentRejected CookieConsent = "rejected"
)

type CookieConsentRequest struct {
	Choice CookieConsent `json:"choice" binding:"required,oneof=accepted rejected"`
}

type Preferences struct {
	CookieConsent       CookieConsent `json:"cookie_consent,omitempty"`
	SeasonalBannerShown bool          `json:"seasonal_banner_shown"`
}
