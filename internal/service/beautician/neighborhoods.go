package beautician

import (
	"strings"
	"unicode"

	"github.com/korattejas/beautyden-nextjs-sub001/pkg/geo"
)

// CityCenter is where members and queries without a recognised area are placed.
var CityCenter = Neighborhood{Name: "Surat", Point: geo.Point{Lat: 21.1702, Lng: 72.8311}}

// Neighborhood is a named area with a fixed coordinate.
type Neighborhood struct {
	Name    string
	Aliases []string
	Point   geo.Point
}

// neighborhoods is scanned in order; the first alias found in an address wins.
// Multi-word and longer names come before short ones that could appear inside them.
var neighborhoods = []Neighborhood{
	{Name: "Ghod Dod Road", Aliases: []string{"ghod dod"}, Point: geo.Point{Lat: 21.1730, Lng: 72.8040}},
	{Name: "Parle Point", Aliases: []string{"parle point"}, Point: geo.Point{Lat: 21.1664, Lng: 72.7848}},
	{Name: "Majura Gate", Aliases: []string{"majura gate", "majura"}, Point: geo.Point{Lat: 21.1800, Lng: 72.8170}},
	{Name: "City Light", Aliases: []string{"city light", "citylight"}, Point: geo.Point{Lat: 21.1689, Lng: 72.7929}},
	{Name: "Athwa", Aliases: []string{"athwalines", "athwa gate", "athwa"}, Point: geo.Point{Lat: 21.1789, Lng: 72.8102}},
	{Name: "Adajan", Aliases: []string{"adajan"}, Point: geo.Point{Lat: 21.1959, Lng: 72.7933}},
	{Name: "Vesu", Aliases: []string{"vesu"}, Point: geo.Point{Lat: 21.1418, Lng: 72.7709}},
	{Name: "Piplod", Aliases: []string{"piplod"}, Point: geo.Point{Lat: 21.1615, Lng: 72.7767}},
	{Name: "Varachha", Aliases: []string{"varachha", "varacha"}, Point: geo.Point{Lat: 21.2120, Lng: 72.8550}},
	{Name: "Katargam", Aliases: []string{"katargam"}, Point: geo.Point{Lat: 21.2281, Lng: 72.8270}},
	{Name: "Sarthana", Aliases: []string{"sarthana"}, Point: geo.Point{Lat: 21.2301, Lng: 72.9030}},
	{Name: "Althan", Aliases: []string{"althan"}, Point: geo.Point{Lat: 21.1473, Lng: 72.7990}},
	{Name: "Bhatar", Aliases: []string{"bhatar"}, Point: geo.Point{Lat: 21.1581, Lng: 72.8136}},
	{Name: "Nanpura", Aliases: []string{"nanpura"}, Point: geo.Point{Lat: 21.1880, Lng: 72.8150}},
	{Name: "Rander", Aliases: []string{"rander"}, Point: geo.Point{Lat: 21.2217, Lng: 72.7953}},
	{Name: "Udhna", Aliases: []string{"udhna"}, Point: geo.Point{Lat: 21.1700, Lng: 72.8420}},
	{Name: "Dumas", Aliases: []string{"dumas"}, Point: geo.Point{Lat: 21.0770, Lng: 72.7150}},
	{Name: "Umra", Aliases: []string{"umra"}, Point: geo.Point{Lat: 21.1780, Lng: 72.7950}},
	{Name: "Pal", Aliases: []string{"pal gam", "pal"}, Point: geo.Point{Lat: 21.2024, Lng: 72.7673}},
}

// normalize lowercases s and drops everything but letters and digits, so
// "City-Light" and "citylight" compare equal.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Locate resolves free text (an address or a search query) to a neighborhood.
// It reports false and returns the city center when nothing matches.
func Locate(text string) (Neighborhood, bool) {
	n := normalize(text)
	if n == "" {
		return CityCenter, false
	}
	for _, nb := range neighborhoods {
		for _, alias := range nb.Aliases {
			if strings.Contains(n, normalize(alias)) {
				return nb, true
			}
		}
	}
	return CityCenter, false
}

// Neighborhoods returns the known areas in match order.
func Neighborhoods() []Neighborhood {
	out := make([]Neighborhood, len(neighborhoods))
	copy(out, neighborhoods)
	return out
}
