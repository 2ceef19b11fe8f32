package events

import (
	"context"
	"fmt"

	"github.com/kbukum/govkit/component"
)

// Component closes a Sink when the application stops. Register it before
// the producer of events so the sink outlives it.
type Component struct {
	sink Sink
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps sink.
func NewComponent(sink Sink) *Component {
	return &Component{sink: sink}
}

func (c *Component) Name() string { return "events" }

func (c *Component) Start(ctx context.Context) error { return nil }

func (c *Component) Stop(ctx context.Context) error { return c.sink.Close() }

func (c *Component) Health(ctx context.Context) component.Health {
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%T", c.sink)
	if _, ok := c.sink.(Nop); ok {
		details = "disabled"
	}
	return component.Description{Name: "Change Events", Type: "events", Details: details}
}
