package governance

import "github.com/kbukum/govkit/regsync"

// Provider is an endpoint serving a service.
type Provider struct {
	ID          int64  `json:"id"`
	Service     string `json:"service" validate:"required,servicekey"`
	Address     string `json:"address" validate:"omitempty,hostport"`
	Application string `json:"application,omitempty"`
	// URL is the identity string, without parameters.
	URL        string `json:"url" validate:"required"`
	Parameters string `json:"parameters,omitempty"`
	Dynamic    bool   `json:"dynamic"`
	Enabled    bool   `json:"enabled"`
	Weight     int    `json:"weight" validate:"min=0,max=65535"`
	Username   string `json:"username,omitempty"`
}

// Consumer is a client subscribed to a service. Address is the host only.
type Consumer struct {
	ID          int64  `json:"id"`
	Service     string `json:"service"`
	Address     string `json:"address"`
	Application string `json:"application,omitempty"`
	Parameters  string `json:"parameters,omitempty"`
}

// Route is a condition routing rule.
type Route struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required,excludes=&"`
	Service  string `json:"service" validate:"required,servicekey"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
	Force    bool   `json:"force"`
	// Rule is the decoded "match => filter" expression.
	Rule string `json:"rule" validate:"required"`
}

// Override is a dynamic configuration applied to the providers of a service.
// An empty Address applies to every address.
type Override struct {
	ID          int64  `json:"id"`
	Service     string `json:"service" validate:"required,servicekey"`
	Address     string `json:"address,omitempty"`
	Application string `json:"application,omitempty"`
	// Params is the sorted query string of the configured parameters.
	Params  string `json:"params"`
	Enabled bool   `json:"enabled"`
}

// Weight is the weight carried by an override.
type Weight struct {
	ID      int64  `json:"id"`
	Service string `json:"service" validate:"required,servicekey"`
	Address string `json:"address"`
	Weight  int    `json:"weight" validate:"min=0,max=65535"`
}

// Query narrows a listing. Empty fields match everything.
type Query struct {
	Service     string `form:"service" json:"service,omitempty"`
	Address     string `form:"address" json:"address,omitempty"`
	Application string `form:"application" json:"application,omitempty"`

	// Force restricts route listings to force routes.
	Force bool `form:"force" json:"force,omitempty"`
}

func (q Query) predicates() regsync.Predicates {
	return predicates(q.Service, q.Address, q.Application)
}
