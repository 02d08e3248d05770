package beautician

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/geo"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
)

// DefaultRadiusKm is the search radius when the caller gives none.
const DefaultRadiusKm = 20.0

const teamCacheKey = "team_members"

// roleKeywords select the team members that take bookings.
var roleKeywords = []string{"beautician", "artist", "nail", "mehndi"}

type TeamAPI interface {
	TeamMembers(ctx context.Context) ([]model.TeamMember, error)
}

type BeauticianServicer interface {
	List(ctx context.Context) ([]model.Beautician, error)
	Search(ctx context.Context, q model.BeauticianQuery) (*SearchResult, error)
}

// SearchResult is a locator answer.
type SearchResult struct {
	Origin      geo.Point          `json:"origin"`
	Area        string             `json:"area"`
	Matched     bool               `json:"matched"`
	RadiusKm    float64            `json:"radius_km,omitempty"`
	Beauticians []model.Beautician `json:"beauticians"`
}

type Service struct {
	api   TeamAPI
	cache *cache.Cache
	log   *logger.Logger
}

func NewService(api TeamAPI, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		api:   api,
		cache: cache.New(ttl, 2*ttl),
		log:   log,
	}
}

// List returns the geocoded beauticians, served from cache while fresh.
func (s *Service) List(ctx context.Context) ([]model.Beautician, error) {
	if v, ok := s.cache.Get(teamCacheKey); ok {
		return copyList(v.([]model.Beautician)), nil
	}

	members, err := s.api.TeamMembers(ctx)
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to fetch team members")
		return nil, fmt.Errorf("failed to list beauticians: %w", err)
	}

	list := Geocode(FilterByRole(members))
	s.cache.SetDefault(teamCacheKey, list)
	return copyList(list), nil
}

// Search resolves the query origin and ranks beauticians by distance from it.
// Explicit coordinates win over a location string.
func (s *Service) Search(ctx context.Context, q model.BeauticianQuery) (*SearchResult, error) {
	if math.IsNaN(q.RadiusKm) || math.IsInf(q.RadiusKm, 0) {
		return nil, apperrors.NewBadRequest("radius must be a number", nil)
	}

	res := &SearchResult{}
	switch {
	case q.Lat != nil && q.Lng != nil:
		res.Origin = geo.Point{Lat: *q.Lat, Lng: *q.Lng}
		if !res.Origin.Valid() {
			return nil, apperrors.NewBadRequest("coordinates are out of range", nil)
		}
		res.Matched = true
	case strings.TrimSpace(q.Location) != "":
		nb, ok := Locate(q.Location)
		res.Origin, res.Area, res.Matched = nb.Point, nb.Name, ok
	default:
		return nil, apperrors.NewBadRequest("location or coordinates are required", nil)
	}

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if q.All {
		res.Beauticians = AllWithDistances(list, res.Origin)
		return res, nil
	}

	res.RadiusKm = q.RadiusKm
	if res.RadiusKm <= 0 {
		res.RadiusKm = DefaultRadiusKm
	}
	res.Beauticians = FindNearby(list, res.Origin, res.RadiusKm)
	return res, nil
}

// Invalidate drops the cached team list.
func (s *Service) Invalidate() {
	s.cache.Delete(teamCacheKey)
}

// FilterByRole keeps members whose role mentions one of the booking keywords.
func FilterByRole(members []model.TeamMember) []model.TeamMember {
	out := make([]model.TeamMember, 0, len(members))
	for _, m := range members {
		role := strings.ToLower(m.Role)
		for _, kw := range roleKeywords {
			if strings.Contains(role, kw) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Geocode places each member on the neighborhood named in its address, or on
// the city center when none is.
func Geocode(members []model.TeamMember) []model.Beautician {
	out := make([]model.Beautician, len(members))
	for i, m := range members {
		nb, _ := Locate(m.Address)
		out[i] = model.Beautician{
			TeamMember: m,
			Latitude:   nb.Point.Lat,
			Longitude:  nb.Point.Lng,
			Area:       nb.Name,
		}
	}
	return out
}

// FindNearby keeps beauticians within radiusKm of origin (inclusive), nearest first.
func FindNearby(list []model.Beautician, origin geo.Point, radiusKm float64) []model.Beautician {
	all := AllWithDistances(list, origin)
	out := all[:0]
	for _, b := range all {
		if *b.Distance <= radiusKm {
			out = append(out, b)
		}
	}
	return out
}

// AllWithDistances attaches the distance from origin to every beautician and
// sorts nearest first.
func AllWithDistances(list []model.Beautician, origin geo.Point) []model.Beautician {
	out := make([]model.Beautician, len(list))
	for i, b := range list {
		d := geo.Distance(origin, geo.Point{Lat: b.Latitude, Lng: b.Longitude})
		b.Distance = &d
		out[i] = b
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Distance < *out[j].Distance
	})
	return out
}

func copyList(list []model.Beautician) []model.Beautician {
	out := make([]model.Beautician, len(list))
	copy(out, list)
	return out
}
