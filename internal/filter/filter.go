// Package filter narrows a listing set by type, region, price range and
// free-text query. Apply is pure: same inputs, same ordered output.
package filter

import (
	"strings"

	"github.com/yashraj-ghemud/royal-state/internal/models"
)

// All matches every value of its field.
const All = "All"

// Criteria are the current filter inputs. Zero values mean "not applied":
// empty or All for the selects, nil bounds, empty query.
type Criteria struct {
	Type     string
	District string
	MinPrice *int64
	MaxPrice *int64
	Query    string
}

// Apply returns the listings matching every active predicate, preserving the
// upstream recency order. The input slice is never mutated.
func Apply(listings []models.Listing, c Criteria) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	query := strings.ToLower(strings.TrimSpace(c.Query))
	for _, l := range listings {
		if matches(&l, c, query) {
			out = append(out, l)
		}
	}
	return out
}

func matches(l *models.Listing, c Criteria, query string) bool {
	if c.Type != "" && c.Type != All && string(l.RoomType) != c.Type {
		return false
	}
	if c.District != "" && c.District != All && string(l.District) != c.District {
		return false
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		if c.MinPrice != nil && l.Price < *c.MinPrice {
			return false
		}
		if c.MaxPrice != nil && l.Price > *c.MaxPrice {
			return false
		}
	}
	if query != "" && !matchesQuery(l, query) {
		return false
	}
	return true
}

// matchesQuery is a case-insensitive substring OR across the text fields.
func matchesQuery(l *models.Listing, query string) bool {
	for _, field := range []string{l.Title, l.Location, l.Description, string(l.District)} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
