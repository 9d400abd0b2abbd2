package bibtex

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed venues.yaml
var defaultVenuesYAML []byte

// Venue describes a known conference series.
type Venue struct {
	Code        string   `yaml:"code"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Match       []string `yaml:"match"`
}

// Venues maps booktitles and journal names to Event codes.
type Venues struct {
	Venues []Venue `yaml:"venues"`
}

// DefaultVenues returns the built-in venue catalogue.
func DefaultVenues() *Venues {
	v, err := ParseVenues(defaultVenuesYAML)
	if err != nil {
		panic(fmt.Sprintf("bibtex: embedded venues: %v", err))
	}
	return v
}

// LoadVenues reads a venue catalogue from a YAML file.
func LoadVenues(path string) (*Venues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venues: %w", err)
	}
	return ParseVenues(data)
}

// ParseVenues parses YAML venue catalogue data.
func ParseVenues(data []byte) (*Venues, error) {
	var v Venues
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse venues YAML: %w", err)
	}
	for i, venue := range v.Venues {
		if strings.TrimSpace(venue.Code) == "" {
			return nil, fmt.Errorf("venue %d: code is required", i)
		}
		for j, m := range venue.Match {
			v.Venues[i].Match[j] = strings.ToLower(m)
		}
	}
	return &v, nil
}

// Resolve returns the Event code, name and description for a venue title.
// Known venues win; otherwise the code is built from the initials of the
// first three words when they are capitalized, falling back to "CONF".
func (v *Venues) Resolve(title string) (code, name, description string) {
	lower := strings.ToLower(title)
	if v != nil {
		for _, venue := range v.Venues {
			if strings.EqualFold(venue.Code, title) {
				return venue.Code, venue.Name, venue.Description
			}
			for _, m := range venue.Match {
				if m != "" && strings.Contains(lower, m) {
					return venue.Code, venue.Name, venue.Description
				}
			}
		}
	}
	return acronym(title), title, "Conferência: " + title
}

// Lookup returns the known venue with the given code, if any.
func (v *Venues) Lookup(code string) (Venue, bool) {
	if v == nil {
		return Venue{}, false
	}
	for _, venue := range v.Venues {
		if strings.EqualFold(venue.Code, code) {
			return venue, true
		}
	}
	return Venue{}, false
}

func acronym(title string) string {
	words := strings.Fields(title)
	if len(words) > 3 {
		words = words[:3]
	}
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsUpper(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "CONF"
	}
	return b.String()
}
