package registry

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Route is a delivery route. Names are stored upper-cased so that lookups and
// the uniqueness rule are case-insensitive.
type Route struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// SalesExecutive is the directory view of a non-admin user account.
type SalesExecutive struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsActive    bool   `json:"is_active"`
}

var upperCaser = cases.Upper(language.Und)

// NormalizeRouteName canonicalizes a route name for storage and comparison.
func NormalizeRouteName(name string) string {
	return upperCaser.String(strings.TrimSpace(name))
}
