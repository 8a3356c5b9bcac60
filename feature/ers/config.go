package ers

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds the External Retail System connection settings.
type Config struct {
	// BaseURL is the API root, e.g. https://ers.example.com/api/v1.
	BaseURL string `mapstructure:"base_url" default:""`
	// Token is the bearer token sent with every request.
	Token string `mapstructure:"token" default:""`
	// SalesPointID scopes price list discovery and the position cursor strategy.
	SalesPointID string `mapstructure:"sales_point_id" default:""`
	// CatalogRootID is the root folder for page and folder strategies.
	CatalogRootID string `mapstructure:"catalog_root_id" default:""`
	// PriceListHint selects a discovered price list whose name contains it.
	PriceListHint string `mapstructure:"price_list_hint" default:""`
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxPageSize caps the page size of every listing request.
	MaxPageSize int `mapstructure:"max_page_size" default:"100"`
}

// Validate checks that the client can be built before any network call.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: ers.base_url is required", ErrConfiguration)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: ers.base_url %q is not an absolute URL", ErrConfiguration, c.BaseURL)
	}
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("%w: ers.token is required", ErrConfiguration)
	}
	if c.MaxPageSize < 0 {
		return fmt.Errorf("%w: ers.max_page_size must not be negative", ErrConfiguration)
	}
	return nil
}

// PageSize caps a requested page size to MaxPageSize. Non-positive requests get the maximum.
func (c Config) PageSize(requested int) int {
	max := c.MaxPageSize
	if max <= 0 {
		max = 100
	}
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}
