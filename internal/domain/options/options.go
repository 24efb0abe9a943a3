package options

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/fieldspec"
)

// Options is the configuration of one similarity request. It is immutable once built.
type Options struct {
	Fields          fieldspec.Spec
	Threshold       float64
	Delimiter       string
	LanguageFilter  bool
	CacheEnabled    bool
	CacheTTLMinutes int // 0 = entries never expire
}

// Defaults returns the built-in defaults: tags, 0.1, ",", no language filter, cache on for a week.
func Defaults() Options {
	return Options{
		Fields:          fieldspec.MustSingle(domain.DefaultField),
		Threshold:       domain.DefaultThreshold,
		Delimiter:       domain.DefaultDelimiter,
		LanguageFilter:  false,
		CacheEnabled:    true,
		CacheTTLMinutes: domain.DefaultCacheTTLMinutes,
	}
}

// Overrides holds caller-supplied values. Nil fields keep the base value.
type Overrides struct {
	Fields          *fieldspec.Spec `json:"fields,omitempty" yaml:"fields,omitempty"`
	Threshold       *float64        `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Delimiter       *string         `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	LanguageFilter  *bool           `json:"language_filter,omitempty" yaml:"language_filter,omitempty"`
	CacheEnabled    *bool           `json:"cache,omitempty" yaml:"cache,omitempty"`
	CacheTTLMinutes *int            `json:"expires_minutes,omitempty" yaml:"expires_minutes,omitempty"`
}

// Merge applies overrides on top of o and validates the result.
func (o Options) Merge(ov Overrides) (Options, error) {
	out := o
	if ov.Fields != nil {
		out.Fields = *ov.Fields
	}
	if ov.Threshold != nil {
		out.Threshold = *ov.Threshold
	}
	if ov.Delimiter != nil {
		out.Delimiter = *ov.Delimiter
	}
	if ov.LanguageFilter != nil {
		out.LanguageFilter = *ov.LanguageFilter
	}
	if ov.CacheEnabled != nil {
		out.CacheEnabled = *ov.CacheEnabled
	}
	if ov.CacheTTLMinutes != nil {
		out.CacheTTLMinutes = *ov.CacheTTLMinutes
	}
	if err := out.Validate(); err != nil {
		return Options{}, err
	}
	return out, nil
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Fields.IsZero() {
		return fmt.Errorf("%w: fields is required", domain.ErrInvalidConfiguration)
	}
	if math.IsNaN(o.Threshold) || o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be between 0 and 1, got %v", domain.ErrInvalidConfiguration, o.Threshold)
	}
	if o.Delimiter == "" {
		return fmt.Errorf("%w: delimiter must not be empty", domain.ErrInvalidConfiguration)
	}
	if o.CacheTTLMinutes < 0 {
		return fmt.Errorf("%w: cache ttl must not be negative, got %d", domain.ErrInvalidConfiguration, o.CacheTTLMinutes)
	}
	return nil
}

// TTL returns the cache lifetime as a duration.
func (o Options) TTL() time.Duration {
	return time.Duration(o.CacheTTLMinutes) * time.Minute
}

// canonical fixes the field order of the key material. Cache switches are left out:
// they do not change which items rank.
type canonical struct {
	Fields         fieldspec.Spec `json:"fields"`
	Threshold      float64        `json:"threshold"`
	Delimiter      string         `json:"delimiter"`
	LanguageFilter bool           `json:"language_filter"`
}

// Canonical encodes the ranking-relevant options deterministically.
func (o Options) Canonical() ([]byte, error) {
	b, err := json.Marshal(canonical{
		Fields:         o.Fields,
		Threshold:      o.Threshold,
		Delimiter:      o.Delimiter,
		LanguageFilter: o.LanguageFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: serialize options: %w", domain.ErrInvalidConfiguration, err)
	}
	return b, nil
}
