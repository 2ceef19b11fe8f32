package governance

import (
	"maps"
	"slices"

	"github.com/kbukum/govkit/record"
)

// overrideReserved are the parameters that describe where an override
// applies rather than what it configures.
var overrideReserved = []string{
	record.KeyInterface,
	record.KeyGroup,
	record.KeyVersion,
	record.KeyApplication,
	record.KeyCategory,
	record.KeyDynamic,
	record.KeyEnabled,
}

// ToProvider builds the provider view of r.
func ToProvider(id int64, r *record.Record) *Provider {
	if r == nil {
		return nil
	}
	return &Provider{
		ID:          id,
		Service:     r.ServiceKey(),
		Address:     r.Address(),
		Application: r.Param(record.KeyApplication),
		URL:         r.IdentityString(),
		Parameters:  r.ParameterString(),
		Dynamic:     r.BoolParam(record.KeyDynamic, true),
		Enabled:     r.BoolParam(record.KeyEnabled, true),
		Weight:      r.IntParam(record.KeyWeight, record.DefaultWeight),
		Username:    r.Param(record.KeyOwner),
	}
}

// ToConsumer builds the consumer view of r.
func ToConsumer(id int64, r *record.Record) *Consumer {
	if r == nil {
		return nil
	}
	return &Consumer{
		ID:          id,
		Service:     r.ServiceKey(),
		Address:     r.Host(),
		Application: r.Param(record.KeyApplication),
		Parameters:  r.ParameterString(),
	}
}

// ToRoute builds the route view of r.
func ToRoute(id int64, r *record.Record) *Route {
	if r == nil {
		return nil
	}
	return &Route{
		ID:       id,
		Name:     r.Param(record.KeyName),
		Service:  r.ServiceKey(),
		Priority: r.IntParam(record.KeyPriority, 0),
		Enabled:  r.BoolParam(record.KeyEnabled, true),
		Force:    r.BoolParam(record.KeyForce, false),
		Rule:     r.DecodedParam(record.KeyRule),
	}
}

// ToOverride builds the override view of r.
func ToOverride(id int64, r *record.Record) *Override {
	if r == nil {
		return nil
	}
	params := r.Params()
	for _, k := range overrideReserved {
		delete(params, k)
	}

	o := &Override{
		ID:          id,
		Service:     r.ServiceKey(),
		Application: r.ParamOr(record.KeyApplication, r.Username()),
		Params:      record.QueryString(params),
		Enabled:     r.BoolParam(record.KeyEnabled, true),
	}
	if !r.BoolParam(record.KeyAnyHost, false) || r.Host() != record.AnyHost {
		o.Address = r.Address()
	}
	return o
}

func ToProviders(m map[int64]*record.Record) []*Provider { return translateAll(m, ToProvider) }
func ToConsumers(m map[int64]*record.Record) []*Consumer { return translateAll(m, ToConsumer) }
func ToRoutes(m map[int64]*record.Record) []*Route       { return translateAll(m, ToRoute) }
func ToOverrides(m map[int64]*record.Record) []*Override { return translateAll(m, ToOverride) }

func translateAll[T any](m map[int64]*record.Record, fn func(int64, *record.Record) *T) []*T {
	out := make([]*T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		if v := fn(id, m[id]); v != nil {
			out = append(out, v)
		}
	}
	return out
}
