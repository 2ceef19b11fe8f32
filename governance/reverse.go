package governance

import (
	"net/url"
	"strconv"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/record"
)

// ToRecord builds the provider record to register. The service key is
// written into the interface, group and version parameters.
func (p *Provider) ToRecord() (*record.Record, error) {
	base, err := record.Parse(p.URL)
	if err != nil {
		return nil, errors.InvalidInput("url", err.Error())
	}

	params := record.ParseQueryString(p.Parameters)
	for k, v := range serviceParams(p.Service) {
		params[k] = v
	}
	if !p.Dynamic {
		params[record.KeyDynamic] = "false"
	}
	r := base.WithParams(params)

	if p.Enabled != r.BoolParam(record.KeyEnabled, true) {
		if p.Enabled {
			r = r.WithoutParams(record.KeyEnabled)
		} else {
			r = r.WithParam(record.KeyEnabled, "false")
		}
	}
	return r, nil
}

// ToRecord builds the condition route record to register.
func (rt *Route) ToRecord() *record.Record {
	params := serviceParams(rt.Service)
	params[record.KeyCategory] = record.CategoryRouters
	params[record.KeyRouter] = "condition"
	params[record.KeyRuntime] = "false"
	params[record.KeyDynamic] = "false"
	params[record.KeyEnabled] = strconv.FormatBool(rt.Enabled)
	params[record.KeyForce] = strconv.FormatBool(rt.Force)
	params[record.KeyPriority] = strconv.Itoa(rt.Priority)
	params[record.KeyName] = rt.Name
	params[record.KeyRule] = url.QueryEscape(rt.Rule)

	return record.New(record.ProtocolRoute, record.AnyHost, 0, params[record.KeyInterface], params)
}

// ToRecord builds the override record to register. An empty Address
// targets every host.
func (o *Override) ToRecord() *record.Record {
	params := record.ParseQueryString(o.Params)
	for k, v := range serviceParams(o.Service) {
		params[k] = v
	}
	params[record.KeyCategory] = record.CategoryConfigurators
	params[record.KeyEnabled] = strconv.FormatBool(o.Enabled)
	params[record.KeyDynamic] = "false"
	if o.Application != "" {
		params[record.KeyApplication] = o.Application
	}

	host, port := record.AnyHost, 0
	if o.Address != "" {
		host, port = splitAddress(o.Address)
	} else {
		params[record.KeyAnyHost] = "true"
	}
	return record.New(record.ProtocolOverride, host, port, params[record.KeyInterface], params)
}

// serviceParams returns the interface, group and version parameters of a
// service key. Empty parts are left out.
func serviceParams(serviceKey string) map[string]string {
	group, iface, version := record.ParseServiceKey(record.NormalizeServiceKey(serviceKey))
	params := map[string]string{record.KeyInterface: iface}
	if group != "" {
		params[record.KeyGroup] = group
	}
	if version != "" {
		params[record.KeyVersion] = version
	}
	return params
}

func splitAddress(addr string) (string, int) {
	r, err := record.Parse("override://" + addr)
	if err != nil {
		return addr, 0
	}
	return r.Host(), r.Port()
}
