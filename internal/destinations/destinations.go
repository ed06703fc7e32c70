// Package destinations holds the static destination reference data. The
// catalog is loaded once at process start and never mutated afterwards.
package destinations

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Destination is read-only reference data describing a candidate city.
type Destination struct {
	Code    string `json:"code"`
	City    string `json:"city"`
	Country string `json:"country"`
	Flag    string `json:"flag"`
}

var builtin = map[string]Destination{
	// Europe
	"BCN": {"BCN", "Barcelona", "Spain", "🇪🇸"},
	"LIS": {"LIS", "Lisbon", "Portugal", "🇵🇹"},
	"MAD": {"MAD", "Madrid", "Spain", "🇪🇸"},
	"FCO": {"FCO", "Rome", "Italy", "🇮🇹"},
	"CDG": {"CDG", "Paris", "France", "🇫🇷"},
	"LHR": {"LHR", "London", "United Kingdom", "🇬🇧"},
	"DUB": {"DUB", "Dublin", "Ireland", "🇮🇪"},
	"AMS": {"AMS", "Amsterdam", "Netherlands", "🇳🇱"},
	"BER": {"BER", "Berlin", "Germany", "🇩🇪"},
	"PRG": {"PRG", "Prague", "Czech Republic", "🇨🇿"},
	"ATH": {"ATH", "Athens", "Greece", "🇬🇷"},
	"VIE": {"VIE", "Vienna", "Austria", "🇦🇹"},
	"BUD": {"BUD", "Budapest", "Hungary", "🇭🇺"},
	"WAW": {"WAW", "Warsaw", "Poland", "🇵🇱"},
	"CPH": {"CPH", "Copenhagen", "Denmark", "🇩🇰"},
	"OSL": {"OSL", "Oslo", "Norway", "🇳🇴"},
	"STO": {"STO", "Stockholm", "Sweden", "🇸🇪"},
	"HEL": {"HEL", "Helsinki", "Finland", "🇫🇮"},
	"ZRH": {"ZRH", "Zurich", "Switzerland", "🇨🇭"},
	"MUC": {"MUC", "Munich", "Germany", "🇩🇪"},
	"BRU": {"BRU", "Brussels", "Belgium", "🇧🇪"},
	"VCE": {"VCE", "Venice", "Italy", "🇮🇹"},
	"NAP": {"NAP", "Naples", "Italy", "🇮🇹"},
	"MXP": {"MXP", "Milan", "Italy", "🇮🇹"},
	"OPO": {"OPO", "Porto", "Portugal", "🇵🇹"},

	// Americas
	"MEX": {"MEX", "Mexico City", "Mexico", "🇲🇽"},
	"BOG": {"BOG", "Bogotá", "Colombia", "🇨🇴"},
	"LIM": {"LIM", "Lima", "Peru", "🇵🇪"},
	"GRU": {"GRU", "São Paulo", "Brazil", "🇧🇷"},
	"EZE": {"EZE", "Buenos Aires", "Argentina", "🇦🇷"},
	"SCL": {"SCL", "Santiago", "Chile", "🇨🇱"},
	"PTY": {"PTY", "Panama City", "Panama", "🇵🇦"},
	"CUN": {"CUN", "Cancún", "Mexico", "🇲🇽"},
	"GDL": {"GDL", "Guadalajara", "Mexico", "🇲🇽"},
	"MDE": {"MDE", "Medellín", "Colombia", "🇨🇴"},

	// Asia
	"NRT": {"NRT", "Tokyo", "Japan", "🇯🇵"},
	"ICN": {"ICN", "Seoul", "South Korea", "🇰🇷"},
	"BKK": {"BKK", "Bangkok", "Thailand", "🇹🇭"},
	"SIN": {"SIN", "Singapore", "Singapore", "🇸🇬"},
	"HKG": {"HKG", "Hong Kong", "Hong Kong", "🇭🇰"},
	"DEL": {"DEL", "Delhi", "India", "🇮🇳"},
	"BOM": {"BOM", "Mumbai", "India", "🇮🇳"},
	"DXB": {"DXB", "Dubai", "United Arab Emirates", "🇦🇪"},
}

// Catalog is an immutable set of destinations keyed by code.
type Catalog struct {
	byCode map[string]Destination
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{byCode: builtin}
}

// LoadFile reads a catalog from a JSON file containing an array of
// destinations. It replaces the built-in catalog entirely.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read destinations file: %w", err)
	}

	var list []Destination
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse destinations file: %w", err)
	}

	byCode := make(map[string]Destination, len(list))
	for _, d := range list {
		if d.Code == "" {
			return nil, fmt.Errorf("destination entry without code in %s", path)
		}
		byCode[d.Code] = d
	}
	return &Catalog{byCode: byCode}, nil
}

// Lookup returns the destination for a code.
func (c *Catalog) Lookup(code string) (Destination, bool) {
	d, ok := c.byCode[code]
	return d, ok
}

// Codes returns all destination codes in lexical order.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.byCode))
	for code := range c.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the catalog size.
func (c *Catalog) Len() int {
	return len(c.byCode)
}
