package governance

import (
	"strconv"

	"github.com/kbukum/govkit/record"
)

// Matches reports whether o applies to p. Only enabled overrides with
// parameters match. An empty, wildcard or any-host address matches every
// provider address, and an empty application matches every application.
func (o *Override) Matches(p *Provider) bool {
	if o == nil || p == nil || !o.Enabled || o.Params == "" {
		return false
	}
	if record.NormalizeServiceKey(o.Service) != record.NormalizeServiceKey(p.Service) {
		return false
	}
	switch o.Address {
	case "", record.AnyValue, record.AnyHost, p.Address:
	default:
		return false
	}
	return o.Application == "" || p.Application == "" || o.Application == p.Application
}

// IsProviderEnabled applies the disabled parameter of the first matching
// override, falling back to the provider's own enabled flag.
func IsProviderEnabled(p *Provider, overrides []*Override) bool {
	for _, o := range overrides {
		if !o.Matches(p) {
			continue
		}
		if v := record.ParseQueryString(o.Params)[record.KeyDisabled]; v != "" {
			return v != "true"
		}
	}
	return p.Enabled
}

// ProviderWeight applies the weight parameter of the first matching
// override, falling back to the provider's own weight.
func ProviderWeight(p *Provider, overrides []*Override) int {
	for _, o := range overrides {
		if !o.Matches(p) {
			continue
		}
		if v := record.ParseQueryString(o.Params)[record.KeyWeight]; v != "" {
			if w, err := strconv.Atoi(v); err == nil {
				return w
			}
		}
	}
	return p.Weight
}

// OverridesToWeights returns the weights configured by overrides, skipping
// overrides without a weight parameter.
func OverridesToWeights(overrides []*Override) []*Weight {
	out := make([]*Weight, 0, len(overrides))
	for _, o := range overrides {
		if w := OverrideToWeight(o); w != nil {
			out = append(out, w)
		}
	}
	return out
}

// OverrideToWeight returns nil when o carries no valid weight.
func OverrideToWeight(o *Override) *Weight {
	if o == nil {
		return nil
	}
	v := record.ParseQueryString(o.Params)[record.KeyWeight]
	w, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &Weight{ID: o.ID, Service: o.Service, Address: o.Address, Weight: w}
}

// WeightToOverride builds the enabled override that sets w.
func WeightToOverride(w *Weight) *Override {
	return &Override{
		ID:      w.ID,
		Service: w.Service,
		Address: w.Address,
		Params:  record.KeyWeight + "=" + strconv.Itoa(w.Weight),
		Enabled: true,
	}
}

// scaleWeight multiplies a weight parameter, treating an absent or
// malformed value as the default. The result is never below 1.
func scaleWeight(value string, multiple float64) int {
	w, err := strconv.Atoi(value)
	if err != nil {
		w = record.DefaultWeight
	}
	w = int(float64(w) * multiple)
	if w < 1 {
		w = 1
	}
	return w
}
