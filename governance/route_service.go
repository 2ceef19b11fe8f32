package governance

import (
	"context"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/validation"
)

// RouteService manages condition routes.
type RouteService struct {
	reader Reader
	w      *Writer
}

// NewRouteService creates a RouteService.
func NewRouteService(reader Reader, w *Writer) *RouteService {
	return &RouteService{reader: reader, w: w}
}

func (s *RouteService) filter(service, address string, force bool) []*Route {
	p := predicates(service, address, "")
	if force {
		p = p.With(record.KeyForce, "true")
	}
	return ToRoutes(s.reader.FilterByCategory(record.CategoryRouters, p))
}

func (s *RouteService) FindAll() []*Route { return s.filter("", "", false) }

// Find lists routes by service and address; q.Application is ignored.
func (s *RouteService) Find(q Query) []*Route {
	return s.filter(q.Service, q.Address, q.Force)
}

func (s *RouteService) FindByService(service string) []*Route {
	return s.filter(service, "", false)
}

func (s *RouteService) FindByAddress(address string) []*Route {
	return s.filter("", address, false)
}

func (s *RouteService) FindByServiceAndAddress(service, address string) []*Route {
	return s.filter(service, address, false)
}

func (s *RouteService) FindForceRouteByService(service string) []*Route {
	return s.filter(service, "", true)
}

func (s *RouteService) FindForceRouteByAddress(address string) []*Route {
	return s.filter("", address, true)
}

func (s *RouteService) FindAllForceRoutes() []*Route { return s.filter("", "", true) }

// FindByID returns the route with id, or a NotFound error.
func (s *RouteService) FindByID(id int64) (*Route, error) {
	return find(s.reader, record.CategoryRouters, id, "route", ToRoute)
}

// Create registers a new route.
func (s *RouteService) Create(ctx context.Context, rt *Route) error {
	if rt == nil {
		return errors.MissingField("route")
	}
	if err := validation.Validate(rt); err != nil {
		return err
	}
	return s.w.Register(ctx, rt.ToRecord())
}

// Update replaces the cached route rt.ID with rt.
func (s *RouteService) Update(ctx context.Context, rt *Route) error {
	if rt == nil {
		return errors.MissingField("route")
	}
	if err := validation.Validate(rt); err != nil {
		return err
	}
	prev, err := lookup(s.reader, record.CategoryRouters, rt.ID, "route")
	if err != nil {
		return err
	}
	return s.w.Replace(ctx, prev, rt.ToRecord())
}

// Delete unregisters the route with id.
func (s *RouteService) Delete(ctx context.Context, id int64) error {
	prev, err := lookup(s.reader, record.CategoryRouters, id, "route")
	if err != nil {
		return err
	}
	return s.w.Unregister(ctx, prev)
}

func (s *RouteService) Enable(ctx context.Context, id int64) error {
	return toggle(ctx, s.reader, s.w, record.CategoryRouters, id, "route", true)
}

func (s *RouteService) Disable(ctx context.Context, id int64) error {
	return toggle(ctx, s.reader, s.w, record.CategoryRouters, id, "route", false)
}
