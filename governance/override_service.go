package governance

import (
	"context"
	"strconv"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/validation"
)

// OverrideService manages dynamic configuration overrides.
type OverrideService struct {
	reader Reader
	w      *Writer
}

// NewOverrideService creates an OverrideService.
func NewOverrideService(reader Reader, w *Writer) *OverrideService {
	return &OverrideService{reader: reader, w: w}
}

func (s *OverrideService) filter(service, address, application string) []*Override {
	return ToOverrides(s.reader.FilterByCategory(record.CategoryConfigurators, predicates(service, address, application)))
}

func (s *OverrideService) FindAll() []*Override { return s.filter("", "", "") }

func (s *OverrideService) Find(q Query) []*Override {
	return s.filter(q.Service, q.Address, q.Application)
}

func (s *OverrideService) FindByService(service string) []*Override {
	return s.filter(service, "", "")
}

func (s *OverrideService) FindByAddress(address string) []*Override {
	return s.filter("", address, "")
}

func (s *OverrideService) FindByApplication(application string) []*Override {
	return s.filter("", "", application)
}

func (s *OverrideService) FindByServiceAndAddress(service, address string) []*Override {
	return s.filter(service, address, "")
}

func (s *OverrideService) FindByServiceAndApplication(service, application string) []*Override {
	return s.filter(service, "", application)
}

// FindByID returns the override with id, or a NotFound error.
func (s *OverrideService) FindByID(id int64) (*Override, error) {
	return find(s.reader, record.CategoryConfigurators, id, "override", ToOverride)
}

// Save registers a new override.
func (s *OverrideService) Save(ctx context.Context, o *Override) error {
	if o == nil {
		return errors.MissingField("override")
	}
	if err := validation.Validate(o); err != nil {
		return err
	}
	return s.w.Register(ctx, o.ToRecord())
}

// Update replaces the cached override o.ID with o.
func (s *OverrideService) Update(ctx context.Context, o *Override) error {
	if o == nil {
		return errors.MissingField("override")
	}
	if err := validation.Validate(o); err != nil {
		return err
	}
	prev, err := lookup(s.reader, record.CategoryConfigurators, o.ID, "override")
	if err != nil {
		return err
	}
	return s.w.Replace(ctx, prev, o.ToRecord())
}

// Delete unregisters the override with id.
func (s *OverrideService) Delete(ctx context.Context, id int64) error {
	prev, err := lookup(s.reader, record.CategoryConfigurators, id, "override")
	if err != nil {
		return err
	}
	return s.w.Unregister(ctx, prev)
}

func (s *OverrideService) Enable(ctx context.Context, id int64) error {
	return toggle(ctx, s.reader, s.w, record.CategoryConfigurators, id, "override", true)
}

func (s *OverrideService) Disable(ctx context.Context, id int64) error {
	return toggle(ctx, s.reader, s.w, record.CategoryConfigurators, id, "override", false)
}

// setParams rewrites the parameters of o, deleting it when none are left.
func (s *OverrideService) setParams(ctx context.Context, o *Override, params map[string]string) error {
	if len(params) == 0 {
		return s.Delete(ctx, o.ID)
	}
	next := *o
	next.Params = record.QueryString(params)
	next.Enabled = true
	return s.Update(ctx, &next)
}

func (s *OverrideService) dropParam(ctx context.Context, o *Override, key string) error {
	params := record.ParseQueryString(o.Params)
	delete(params, key)
	return s.setParams(ctx, o, params)
}

// toggle re-registers the cached record with the enabled parameter set.
func toggle(ctx context.Context, reader Reader, w *Writer, category string, id int64, resource string, enabled bool) error {
	prev, err := lookup(reader, category, id, resource)
	if err != nil {
		return err
	}
	if prev.BoolParam(record.KeyEnabled, true) == enabled {
		return nil
	}
	return w.Replace(ctx, prev, prev.WithParam(record.KeyEnabled, strconv.FormatBool(enabled)))
}
