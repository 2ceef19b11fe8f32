// Package api serves the governance views over HTTP under /api/v1.
package api

import (
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/governance"
	"github.com/kbukum/govkit/server"
)

// Prefix is the mount point of every route registered by Handler.
const Prefix = "/api/v1"

// Handler exposes read-only governance queries.
type Handler struct {
	svcs *governance.Services
}

// NewHandler creates a Handler over svcs.
func NewHandler(svcs *governance.Services) *Handler {
	return &Handler{svcs: svcs}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group(Prefix)

	g.GET("/providers", h.listProviders)
	g.GET("/providers/:id", h.getProvider)
	g.GET("/consumers", h.listConsumers)
	g.GET("/consumers/:id", h.getConsumer)
	g.GET("/routes", h.listRoutes)
	g.GET("/routes/:id", h.getRoute)
	g.GET("/overrides", h.listOverrides)
	g.GET("/overrides/:id", h.getOverride)

	g.GET("/services", h.listServices)
	g.GET("/applications", h.listApplications)
	g.GET("/addresses", h.listAddresses)
}

func (h *Handler) listProviders(c *gin.Context) {
	list(c, h.svcs.Providers.Find)
}

func (h *Handler) getProvider(c *gin.Context) {
	get(c, h.svcs.Providers.FindByID)
}

func (h *Handler) listConsumers(c *gin.Context) {
	list(c, h.svcs.Consumers.Find)
}

func (h *Handler) getConsumer(c *gin.Context) {
	get(c, h.svcs.Consumers.FindByID)
}

func (h *Handler) listRoutes(c *gin.Context) {
	list(c, h.svcs.Routes.Find)
}

func (h *Handler) getRoute(c *gin.Context) {
	get(c, h.svcs.Routes.FindByID)
}

func (h *Handler) listOverrides(c *gin.Context) {
	list(c, h.svcs.Overrides.Find)
}

func (h *Handler) getOverride(c *gin.Context) {
	get(c, h.svcs.Overrides.FindByID)
}

// listServices returns the service keys known from providers and consumers,
// optionally narrowed to one application.
func (h *Handler) listServices(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	p, cs := h.svcs.Providers, h.svcs.Consumers
	if q.Application != "" {
		server.RespondList(c, union(p.FindServicesByApplication(q.Application), cs.FindServicesByApplication(q.Application)))
		return
	}
	if q.Address != "" {
		server.RespondList(c, p.FindServicesByAddress(q.Address))
		return
	}
	server.RespondList(c, union(p.FindServices(), cs.FindServices()))
}

func (h *Handler) listApplications(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	p, cs := h.svcs.Providers, h.svcs.Consumers
	if q.Service != "" {
		server.RespondList(c, union(p.FindApplicationsByService(q.Service), cs.FindApplicationsByService(q.Service)))
		return
	}
	server.RespondList(c, union(p.FindApplications(), cs.FindApplications()))
}

// listAddresses returns provider addresses (host:port).
func (h *Handler) listAddresses(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	p := h.svcs.Providers
	switch {
	case q.Service != "":
		server.RespondList(c, p.FindAddressesByService(q.Service))
	case q.Application != "":
		server.RespondList(c, p.FindAddressesByApplication(q.Application))
	default:
		server.RespondList(c, p.FindAddresses())
	}
}

func list[T any](c *gin.Context, find func(governance.Query) []T) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	server.RespondList(c, find(q))
}

func get[T any](c *gin.Context, find func(int64) (*T, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		server.RespondWithError(c, apperrors.InvalidInput("id", "must be a positive integer"))
		return
	}
	v, err := find(id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, v)
}

func bindQuery(c *gin.Context) (governance.Query, bool) {
	var q governance.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return q, false
	}
	return q, true
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(append(out, a...), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
