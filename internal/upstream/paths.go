package upstream

// Backend API paths, relative to the content or customer base URL.
const (
	PathSettings        = "/settings"
	PathCities          = "/cities"
	PathPopularCities   = "/cities/popular"
	PathCategories      = "/service-categories"
	PathServices        = "/services"
	PathServiceDetail   = "/services/%s"
	PathBlogs           = "/blogs"
	PathBlogDetail      = "/blogs/%s"
	PathFAQs            = "/faqs"
	PathPolicies        = "/policies/%s"
	PathReviews         = "/customer-reviews"
	PathTeamMembers     = "/team-members"
	PathProductBrands   = "/product-brands"
	PathHiring          = "/hiring"
	PathContact         = "/contact-submit"
	PathBookings        = "/bookings"
	PathSendOTP         = "/customer/send-otp"
	PathVerifyOTP       = "/customer/verify-otp"
	PathCustomerProfile = "/customer/profile"
	PathUpdateProfile   = "/customer/profile/update"
	PathLogout          = "/customer/logout"
)
