package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
)

// API is the typed surface of the backend, split over the content and
// customer clients.
type API struct {
	content  *Client
	customer *Client
}

func NewAPI(content, customer *Client) *API {
	return &API{content: content, customer: customer}
}

func pageQuery(p model.Pagination) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	return q
}

func (a *API) Settings(ctx context.Context) (model.Settings, error) {
	var raw map[string]interface{}
	if err := a.content.Get(ctx, PathSettings, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}
	settings := make(model.Settings, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			settings[k] = ""
		case string:
			settings[k] = t
		default:
			settings[k] = fmt.Sprint(t)
		}
	}
	return settings, nil
}

func (a *API) Cities(ctx context.Context, popularOnly bool) ([]model.City, error) {
	path := PathCities
	if popularOnly {
		path = PathPopularCities
	}
	var cities []model.City
	if err := a.content.Get(ctx, path, nil, &cities); err != nil {
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}
	return cities, nil
}

func (a *API) Categories(ctx context.Context, cityID model.ID) ([]model.ServiceCategory, error) {
	q := url.Values{}
	if cityID != "" {
		q.Set("city_id", cityID.String())
	}
	var categories []model.ServiceCategory
	if err := a.content.Get(ctx, PathCategories, q, &categories); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (a *API) Services(ctx context.Context, f model.ServiceFilter) (model.Page[model.BookingService], error) {
	q := pageQuery(f.Pagination)
	q.Set("city_id", f.CityID.String())
	if f.CategoryID != "" {
		q.Set("category_id", f.CategoryID.String())
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	var p paginated[model.BookingService]
	if err := a.content.Get(ctx, PathServices, q, &p); err != nil {
		return model.Page[model.BookingService]{}, fmt.Errorf("failed to fetch services: %w", err)
	}
	return p.page(), nil
}

func (a *API) Service(ctx context.Context, id model.ID) (*model.BookingService, error) {
	var s model.BookingService
	if err := a.content.Get(ctx, fmt.Sprintf(PathServiceDetail, url.PathEscape(id.String())), nil, &s); err != nil {
		return nil, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}
	return &s, nil
}

func (a *API) Blogs(ctx context.Context, f model.BlogFilter) (model.Page[model.Blog], error) {
	q := pageQuery(f.Pagination)
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	var p paginated[model.Blog]
	if err := a.content.Get(ctx, PathBlogs, q, &p); err != nil {
		return model.Page[model.Blog]{}, fmt.Errorf("failed to fetch blogs: %w", err)
	}
	return p.page(), nil
}

func (a *API) Blog(ctx context.Context, slug string) (*model.Blog, error) {
	var b model.Blog
	if err := a.content.Get(ctx, fmt.Sprintf(PathBlogDetail, url.PathEscape(slug)), nil, &b); err != nil {
		return nil, fmt.Errorf("failed to fetch blog %s: %w", slug, err)
	}
	return &b, nil
}

func (a *API) FAQs(ctx context.Context) ([]model.FAQ, error) {
	var faqs []model.FAQ
	if err := a.content.Get(ctx, PathFAQs, nil, &faqs); err != nil {
		return nil, fmt.Errorf("failed to fetch faqs: %w", err)
	}
	return faqs, nil
}

func (a *API) Policy(ctx context.Context, kind string) (*model.Policy, error) {
	var p model.Policy
	if err := a.content.Get(ctx, fmt.Sprintf(PathPolicies, url.PathEscape(kind)), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch %s policy: %w", kind, err)
	}
	return &p, nil
}

func (a *API) Reviews(ctx context.Context, f model.ReviewFilter) (model.Page[model.Review], error) {
	q := pageQuery(f.Pagination)
	if f.ServiceID != "" {
		q.Set("service_id", f.ServiceID.String())
	}
	var p paginated[model.Review]
	if err := a.content.Get(ctx, PathReviews, q, &p); err != nil {
		return model.Page[model.Review]{}, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return p.page(), nil
}

func (a *API) TeamMembers(ctx context.Context) ([]model.TeamMember, error) {
	var members []model.TeamMember
	if err := a.content.Get(ctx, PathTeamMembers, nil, &members); err != nil {
		return nil, fmt.Errorf("failed to fetch team members: %w", err)
	}
	return members, nil
}

func (a *API) ProductBrands(ctx context.Context) ([]model.ProductBrand, error) {
	var brands []model.ProductBrand
	if err := a.content.Get(ctx, PathProductBrands, nil, &brands); err != nil {
		return nil, fmt.Errorf("failed to fetch product brands: %w", err)
	}
	return brands, nil
}

func (a *API) SubmitHiring(ctx context.Context, req model.HiringApplication) error {
	if err := a.content.PostJSON(ctx, PathHiring, req, nil); err != nil {
		return fmt.Errorf("failed to submit hiring application: %w", err)
	}
	return nil
}

func (a *API) SubmitContact(ctx context.Context, req model.ContactRequest) error {
	if err := a.content.PostJSON(ctx, PathContact, req, nil); err != nil {
		return fmt.Errorf("failed to submit contact request: %w", err)
	}
	return nil
}

func (a *API) CreateBooking(ctx context.Context, req model.BookingRequest) (*model.BookingConfirmation, error) {
	var conf model.BookingConfirmation
	if err := a.content.PostJSON(ctx, PathBookings, req, &conf); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return &conf, nil
}

func (a *API) SendOTP(ctx context.Context, mobile string) error {
	if err := a.customer.PostForm(ctx, PathSendOTP, map[string]string{"mobile_number": mobile}, nil); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}
	return nil
}

func (a *API) VerifyOTP(ctx context.Context, mobile, otp string) (*model.CustomerPayload, error) {
	var p model.CustomerPayload
	fields := map[string]string{"mobile_number": mobile, "otp": otp}
	if err := a.customer.PostForm(ctx, PathVerifyOTP, fields, &p); err != nil {
		return nil, fmt.Errorf("failed to verify otp: %w", err)
	}
	return &p, nil
}

func (a *API) Profile(ctx context.Context) (*model.Customer, error) {
	var p model.CustomerPayload
	if err := a.customer.Get(ctx, PathCustomerProfile, nil, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p.Customer, nil
}

func (a *API) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (*model.Customer, error) {
	fields := map[string]string{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      req.Email,
		"address":    req.Address,
		"city":       req.City,
		"state":      req.State,
		"pincode":    req.Pincode,
	}
	var p model.CustomerPayload
	if err := a.customer.PostForm(ctx, PathUpdateProfile, fields, &p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p.Customer, nil
}

func (a *API) Logout(ctx context.Context) error {
	if err := a.customer.PostJSON(ctx, PathLogout, struct{}{}, nil); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}
