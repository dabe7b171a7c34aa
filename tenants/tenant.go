package tenants

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Tenant is an organisation. The slug is the routing key used in every tenant scoped path.
type Tenant struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidateSlug checks that slug is lowercase alphanumeric words separated by single hyphens
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return errors.Errorf("invalid tenant slug %q", slug)
	}
	return nil
}
