package governance

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/regsync"
	"github.com/kbukum/govkit/validation"
)

// ProviderService queries and manages providers. Dynamic providers are
// changed through overrides; static providers are re-registered.
type ProviderService struct {
	reader    Reader
	w         *Writer
	overrides *OverrideService
}

// NewProviderService creates a ProviderService.
func NewProviderService(reader Reader, w *Writer, overrides *OverrideService) *ProviderService {
	return &ProviderService{reader: reader, w: w, overrides: overrides}
}

func (s *ProviderService) filter(p regsync.Predicates) map[int64]*record.Record {
	return s.reader.FilterByCategory(record.CategoryProviders, p)
}

func (s *ProviderService) FindAll() []*Provider { return ToProviders(s.filter(nil)) }

// Find lists providers matching every non-empty field of q.
func (s *ProviderService) Find(q Query) []*Provider {
	return ToProviders(s.filter(q.predicates()))
}

func (s *ProviderService) FindByService(service string) []*Provider {
	return ToProviders(s.filter(regsync.ByService(service)))
}

func (s *ProviderService) FindByAddress(address string) []*Provider {
	return ToProviders(s.filter(regsync.ByAddress(address)))
}

func (s *ProviderService) FindByApplication(application string) []*Provider {
	return ToProviders(s.filter(regsync.ByApplication(application)))
}

// FindByID returns the provider with id, or a NotFound error.
func (s *ProviderService) FindByID(id int64) (*Provider, error) {
	return find(s.reader, record.CategoryProviders, id, "provider", ToProvider)
}

// FindByServiceAndAddress returns the provider with the lowest id serving
// service at address.
func (s *ProviderService) FindByServiceAndAddress(service, address string) (*Provider, error) {
	providers := ToProviders(s.filter(predicates(service, address, "")))
	if len(providers) == 0 {
		return nil, errors.NotFound("provider", service+"@"+address)
	}
	return providers[0], nil
}

func (s *ProviderService) FindServices() []string {
	return distinct(s.filter(nil), serviceKeyOf)
}

func (s *ProviderService) FindAddresses() []string {
	return distinct(s.filter(nil), addressOf)
}

func (s *ProviderService) FindAddressesByService(service string) []string {
	return distinct(s.filter(regsync.ByService(service)), addressOf)
}

func (s *ProviderService) FindAddressesByApplication(application string) []string {
	return distinct(s.filter(regsync.ByApplication(application)), addressOf)
}

func (s *ProviderService) FindApplications() []string {
	return distinct(s.filter(nil), applicationOf)
}

func (s *ProviderService) FindApplicationsByService(service string) []string {
	return distinct(s.filter(regsync.ByService(service)), applicationOf)
}

func (s *ProviderService) FindServicesByAddress(address string) []string {
	return distinct(s.filter(regsync.ByAddress(address)), serviceKeyOf)
}

func (s *ProviderService) FindServicesByApplication(application string) []string {
	return distinct(s.filter(regsync.ByApplication(application)), serviceKeyOf)
}

// FindMethodsByService returns the union of the methods parameter of every
// provider of service, sorted.
func (s *ProviderService) FindMethodsByService(service string) []string {
	set := make(map[string]struct{})
	for _, r := range s.filter(regsync.ByService(service)) {
		for _, m := range strings.Split(r.Param(record.KeyMethods), ",") {
			if m = strings.TrimSpace(m); m != "" {
				set[m] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Create registers p as a static provider.
func (s *ProviderService) Create(ctx context.Context, p *Provider) error {
	if p == nil {
		return errors.MissingField("provider")
	}
	if err := validation.Validate(p); err != nil {
		return err
	}
	static := *p
	static.Dynamic = false
	r, err := static.ToRecord()
	if err != nil {
		return err
	}
	return s.w.Register(ctx, r)
}

// Update replaces the cached provider p.ID with p.
func (s *ProviderService) Update(ctx context.Context, p *Provider) error {
	if p == nil {
		return errors.MissingField("provider")
	}
	if err := validation.Validate(p); err != nil {
		return err
	}
	prev, err := lookup(s.reader, record.CategoryProviders, p.ID, "provider")
	if err != nil {
		return err
	}
	next, err := p.ToRecord()
	if err != nil {
		return err
	}
	return s.w.Replace(ctx, prev, next)
}

// Delete unregisters a static provider. Dynamic providers belong to their
// process and cannot be deleted.
func (s *ProviderService) Delete(ctx context.Context, id int64) error {
	prev, err := lookup(s.reader, record.CategoryProviders, id, "provider")
	if err != nil {
		return err
	}
	if prev.BoolParam(record.KeyDynamic, true) {
		return errors.InvalidInput("id", "dynamic providers cannot be deleted")
	}
	return s.w.Unregister(ctx, prev)
}

func (s *ProviderService) Enable(ctx context.Context, id int64) error {
	return s.setEnabled(ctx, id, true)
}

func (s *ProviderService) Disable(ctx context.Context, id int64) error {
	return s.setEnabled(ctx, id, false)
}

func (s *ProviderService) setEnabled(ctx context.Context, id int64, enabled bool) error {
	prev, err := lookup(s.reader, record.CategoryProviders, id, "provider")
	if err != nil {
		return err
	}
	p := ToProvider(id, prev)

	if !p.Dynamic {
		if p.Enabled == enabled {
			return nil
		}
		p.Enabled = enabled
		next, err := p.ToRecord()
		if err != nil {
			return err
		}
		return s.w.Replace(ctx, prev, next)
	}

	// Drop overrides that force the opposite state, then add one only if
	// the provider still does not end up in the wanted state.
	opposite := strconv.FormatBool(enabled)
	overrides := s.overrides.FindByServiceAndAddress(p.Service, p.Address)
	remaining := make([]*Override, 0, len(overrides))
	for _, o := range overrides {
		if record.ParseQueryString(o.Params)[record.KeyDisabled] != opposite {
			remaining = append(remaining, o)
			continue
		}
		if err := s.overrides.dropParam(ctx, o, record.KeyDisabled); err != nil {
			return err
		}
	}
	if IsProviderEnabled(p, remaining) == enabled {
		return nil
	}
	return s.overrides.Save(ctx, &Override{
		Service: p.Service,
		Address: p.Address,
		Params:  record.KeyDisabled + "=" + strconv.FormatBool(!enabled),
		Enabled: true,
	})
}

// DoubleWeight doubles the provider's weight.
func (s *ProviderService) DoubleWeight(ctx context.Context, id int64) error {
	return s.scaleWeight(ctx, id, 2)
}

// HalveWeight halves the provider's weight, never going below 1.
func (s *ProviderService) HalveWeight(ctx context.Context, id int64) error {
	return s.scaleWeight(ctx, id, 0.5)
}

func (s *ProviderService) scaleWeight(ctx context.Context, id int64, multiple float64) error {
	prev, err := lookup(s.reader, record.CategoryProviders, id, "provider")
	if err != nil {
		return err
	}
	p := ToProvider(id, prev)
	own := prev.Param(record.KeyWeight)

	if !p.Dynamic {
		params := record.ParseQueryString(p.Parameters)
		if w := scaleWeight(own, multiple); w == record.DefaultWeight {
			delete(params, record.KeyWeight)
		} else {
			params[record.KeyWeight] = strconv.Itoa(w)
		}
		p.Parameters = record.QueryString(params)
		next, err := p.ToRecord()
		if err != nil {
			return err
		}
		return s.w.Replace(ctx, prev, next)
	}

	overrides := s.overrides.FindByServiceAndAddress(p.Service, p.Address)
	if len(overrides) == 0 {
		w := scaleWeight(own, multiple)
		if w == record.DefaultWeight {
			return nil
		}
		return s.overrides.Save(ctx, WeightToOverride(&Weight{Service: p.Service, Address: p.Address, Weight: w}))
	}

	base := scaleWeight(own, 1)
	for _, o := range overrides {
		params := record.ParseQueryString(o.Params)
		current := params[record.KeyWeight]
		if current == "" {
			current = own
		}
		if w := scaleWeight(current, multiple); w == base {
			delete(params, record.KeyWeight)
		} else {
			params[record.KeyWeight] = strconv.Itoa(w)
		}
		if err := s.overrides.setParams(ctx, o, params); err != nil {
			return err
		}
	}
	return nil
}
