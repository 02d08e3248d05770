package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/city"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/sequence"
)

const (
	DefaultPerPage = 12
	MaxPerPage     = 50
)

const (
	settingsKey      = "settings"
	citiesKey        = "cities"
	popularCitiesKey = "cities:popular"
)

// ContentAPI is the backend surface the catalog reads from.
type ContentAPI interface {
	Settings(ctx context.Context) (model.Settings, error)
	Cities(ctx context.Context, popularOnly bool) ([]model.City, error)
	Categories(ctx context.Context, cityID model.ID) ([]model.ServiceCategory, error)
	Services(ctx context.Context, f model.ServiceFilter) (model.Page[model.BookingService], error)
	Service(ctx context.Context, id model.ID) (*model.BookingService, error)
	Blogs(ctx context.Context, f model.BlogFilter) (model.Page[model.Blog], error)
	Blog(ctx context.Context, slug string) (*model.Blog, error)
	FAQs(ctx context.Context) ([]model.FAQ, error)
	Policy(ctx context.Context, kind string) (*model.Policy, error)
	Reviews(ctx context.Context, f model.ReviewFilter) (model.Page[model.Review], error)
	TeamMembers(ctx context.Context) ([]model.TeamMember, error)
	ProductBrands(ctx context.Context) ([]model.ProductBrand, error)
	SubmitHiring(ctx context.Context, req model.HiringApplication) error
	SubmitContact(ctx context.Context, req model.ContactRequest) error
}

type CatalogServicer interface {
	Settings(ctx context.Context) (model.Settings, error)
	RefreshSettings(ctx context.Context) error
	Cities(ctx context.Context, popularOnly bool) ([]model.City, error)
	RefreshCities(ctx context.Context) error
	Categories(ctx context.Context, sess *session.Session) ([]model.ServiceCategory, error)
	Services(ctx context.Context, sess *session.Session, f model.ServiceFilter) (model.Page[model.BookingService], error)
	Service(ctx context.Context, id model.ID) (*model.BookingService, error)
	Blogs(ctx context.Context, sess *session.Session, f model.BlogFilter) (model.Page[model.Blog], error)
	Blog(ctx context.Context, slug string) (*model.Blog, error)
	FAQs(ctx context.Context) ([]model.FAQ, error)
	Policy(ctx context.Context, kind string) (*model.Policy, error)
	Reviews(ctx context.Context, f model.ReviewFilter) (model.Page[model.Review], error)
	TeamMembers(ctx context.Context) ([]model.TeamMember, error)
	ProductBrands(ctx context.Context) ([]model.ProductBrand, error)
	SubmitHiring(ctx context.Context, req model.HiringApplication) error
	SubmitContact(ctx context.Context, req model.ContactRequest) error
}

type Service struct {
	api     ContentAPI
	cities  city.CityServicer
	seq     *sequence.Tracker
	cache   *cache.Cache
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewService creates the catalog. Settings and city lists are kept for
// cacheTTL and refreshed in the background.
func NewService(api ContentAPI, cities city.CityServicer, seq *sequence.Tracker, cacheTTL time.Duration, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		api:     api,
		cities:  cities,
		seq:     seq,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		log:     log,
		metrics: m,
	}
}

// Settings returns the remote configuration, fetched once and cached.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	if v, ok := s.cache.Get(settingsKey); ok {
		return copySettings(v.(model.Settings)), nil
	}
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	return copySettings(settings), nil
}

func (s *Service) RefreshSettings(ctx context.Context) error {
	_, err := s.loadSettings(ctx)
	return err
}

func (s *Service) loadSettings(ctx context.Context) (model.Settings, error) {
	settings, err := s.api.Settings(ctx)
	if err != nil {
		s.metrics.ContentRefreshes.WithLabelValues(settingsKey, "error").Inc()
		s.log.WithContext(ctx).Error(err, "failed to refresh settings")
		return nil, err
	}
	s.cache.SetDefault(settingsKey, settings)
	s.metrics.ContentRefreshes.WithLabelValues(settingsKey, "success").Inc()
	return settings, nil
}

func (s *Service) Cities(ctx context.Context, popularOnly bool) ([]model.City, error) {
	key := citiesKey
	if popularOnly {
		key = popularCitiesKey
	}
	if v, ok := s.cache.Get(key); ok {
		return copyCities(v.([]model.City)), nil
	}

	cities, err := s.api.Cities(ctx, popularOnly)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch cities", "popular", popularOnly)
		return nil, err
	}
	s.cache.SetDefault(key, cities)
	return copyCities(cities), nil
}

// RefreshCities reloads both city lists.
func (s *Service) RefreshCities(ctx context.Context) error {
	for _, popular := range []bool{false, true} {
		key := citiesKey
		if popular {
			key = popularCitiesKey
		}
		cities, err := s.api.Cities(ctx, popular)
		if err != nil {
			s.metrics.ContentRefreshes.WithLabelValues(key, "error").Inc()
			return err
		}
		s.cache.SetDefault(key, cities)
		s.metrics.ContentRefreshes.WithLabelValues(key, "success").Inc()
	}
	return nil
}

// Categories lists the categories offered in the session's city.
func (s *Service) Categories(ctx context.Context, sess *session.Session) ([]model.ServiceCategory, error) {
	c, err := s.cities.Require(ctx, sess)
	if err != nil {
		return nil, err
	}
	categories, err := s.api.Categories(ctx, c.ID)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch categories", "city_id", c.ID.String())
		return nil, err
	}
	return categories, nil
}

// Services lists the catalog for the session's city. A response that a later
// search from the same session has overtaken is dropped with ErrStaleResponse.
func (s *Service) Services(ctx context.Context, sess *session.Session, f model.ServiceFilter) (model.Page[model.BookingService], error) {
	c, err := s.cities.Require(ctx, sess)
	if err != nil {
		return model.Page[model.BookingService]{}, err
	}
	f.CityID = c.ID
	f.Search = strings.TrimSpace(f.Search)
	f.Pagination = f.Pagination.Normalize(DefaultPerPage, MaxPerPage)

	key := sess.ID() + ":services"
	seq := s.seq.Begin(key)

	page, err := s.api.Services(ctx, f)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch services", "city_id", c.ID.String())
		return model.Page[model.BookingService]{}, err
	}
	if !s.seq.IsCurrent(key, seq) {
		s.metrics.StaleResponses.WithLabelValues("services").Inc()
		return model.Page[model.BookingService]{}, apperrors.ErrStaleResponse
	}
	return page, nil
}

func (s *Service) Service(ctx context.Context, id model.ID) (*model.BookingService, error) {
	svc, err := s.api.Service(ctx, id)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch service", "service_id", id.String())
		return nil, err
	}
	return svc, nil
}

// Blogs lists posts with the same supersession guard as Services.
func (s *Service) Blogs(ctx context.Context, sess *session.Session, f model.BlogFilter) (model.Page[model.Blog], error) {
	f.Search = strings.TrimSpace(f.Search)
	f.Pagination = f.Pagination.Normalize(DefaultPerPage, MaxPerPage)

	key := sess.ID() + ":blogs"
	seq := s.seq.Begin(key)

	page, err := s.api.Blogs(ctx, f)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch blogs")
		return model.Page[model.Blog]{}, err
	}
	if !s.seq.IsCurrent(key, seq) {
		s.metrics.StaleResponses.WithLabelValues("blogs").Inc()
		return model.Page[model.Blog]{}, apperrors.ErrStaleResponse
	}
	return page, nil
}

func (s *Service) Blog(ctx context.Context, slug string) (*model.Blog, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperrors.NewBadRequest("blog slug is required", nil)
	}
	return s.api.Blog(ctx, slug)
}

func (s *Service) FAQs(ctx context.Context) ([]model.FAQ, error) {
	faqs, err := s.api.FAQs(ctx)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch faqs")
		return nil, err
	}
	return faqs, nil
}

func (s *Service) Policy(ctx context.Context, kind string) (*model.Policy, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, apperrors.NewBadRequest("policy type is required", nil)
	}
	return s.api.Policy(ctx, kind)
}

func (s *Service) Reviews(ctx context.Context, f model.ReviewFilter) (model.Page[model.Review], error) {
	f.Pagination = f.Pagination.Normalize(DefaultPerPage, MaxPerPage)
	page, err := s.api.Reviews(ctx, f)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch reviews")
		return model.Page[model.Review]{}, err
	}
	return page, nil
}

func (s *Service) TeamMembers(ctx context.Context) ([]model.TeamMember, error) {
	members, err := s.api.TeamMembers(ctx)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch team members")
		return nil, err
	}
	return members, nil
}

func (s *Service) ProductBrands(ctx context.Context) ([]model.ProductBrand, error) {
	return s.api.ProductBrands(ctx)
}

func (s *Service) SubmitHiring(ctx context.Context, req model.HiringApplication) error {
	if err := s.api.SubmitHiring(ctx, req); err != nil {
		s.log.WithContext(ctx).Error(err, "hiring application failed")
		return fmt.Errorf("failed to submit application: %w", err)
	}
	s.log.WithContext(ctx).Info("hiring application submitted", "role", req.Role)
	return nil
}

func (s *Service) SubmitContact(ctx context.Context, req model.ContactRequest) error {
	if err := s.api.SubmitContact(ctx, req); err != nil {
		s.log.WithContext(ctx).Error(err, "contact submission failed")
		return fmt.Errorf("failed to submit contact form: %w", err)
	}
	return nil
}

// Cached values are shared between requests; callers get their own copy.
func copySettings(in model.Settings) model.Settings {
	out := make(model.Settings, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyCities(in []model.City) []model.City {
	out := make([]model.City, len(in))
	copy(out, in)
	return out
}
