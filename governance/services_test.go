package governance

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/govkit/errors"
	"github.com/kbukum/govkit/logger"
	"github.com/kbukum/govkit/record"
	"github.com/kbukum/govkit/registry"
	"github.com/kbukum/govkit/registry/memory"
	"github.com/kbukum/govkit/regsync"
	"github.com/kbukum/govkit/resilience"
)

type testEnv struct {
	reg  *memory.Registry
	sync *regsync.Syncer
	svcs *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	reg := memory.New(logger.Nop())
	s, err := regsync.New(regsync.Config{Localhost: "127.0.0.1"}, reg, logger.Nop())
	if err != nil {
		t.Fatalf("regsync.New: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Stop(ctx)
		_ = reg.Close()
	})
	return &testEnv{reg: reg, sync: s, svcs: NewServices(s, reg, logger.Nop())}
}

func (e *testEnv) register(t *testing.T, raw ...string) {
	t.Helper()
	for _, s := range raw {
		if err := e.reg.Register(context.Background(), record.MustParse(s)); err != nil {
			t.Fatalf("Register(%s): %v", s, err)
		}
	}
}

func onlyProvider(t *testing.T, svc *ProviderService, service string) *Provider {
	t.Helper()
	got := svc.FindByService(service)
	if len(got) != 1 {
		t.Fatalf("FindByService(%s) = %d providers, want 1", service, len(got))
	}
	return got[0]
}

func TestProviderService_Queries(t *testing.T) {
	env := newTestEnv(t)
	env.register(t,
		"dubbo://10.0.0.1:20880/com.x.Foo?application=app1&interface=com.x.Foo&methods=get,put&version=1.0",
		"dubbo://10.0.0.2:20880/com.x.Foo?application=app2&interface=com.x.Foo&methods=delete,get&version=1.0",
		"dubbo://10.0.0.1:20880/com.x.Bar?application=app1&interface=com.x.Bar",
	)
	svc := env.svcs.Providers

	if n := len(svc.FindAll()); n != 3 {
		t.Errorf("FindAll = %d, want 3", n)
	}
	if n := len(svc.FindByService("/com.x.Foo:1.0")); n != 2 {
		t.Errorf("FindByService = %d, want 2", n)
	}
	if n := len(svc.FindByAddress("10.0.0.1:20880")); n != 2 {
		t.Errorf("FindByAddress = %d, want 2", n)
	}
	if n := len(svc.FindByApplication("app2")); n != 1 {
		t.Errorf("FindByApplication = %d, want 1", n)
	}

	checks := []struct {
		name string
		got  []string
		want []string
	}{
		{"services", svc.FindServices(), []string{"com.x.Bar", "com.x.Foo:1.0"}},
		{"addresses", svc.FindAddresses(), []string{"10.0.0.1:20880", "10.0.0.2:20880"}},
		{"addresses by service", svc.FindAddressesByService("com.x.Bar"), []string{"10.0.0.1:20880"}},
		{"addresses by application", svc.FindAddressesByApplication("app2"), []string{"10.0.0.2:20880"}},
		{"applications", svc.FindApplications(), []string{"app1", "app2"}},
		{"applications by service", svc.FindApplicationsByService("com.x.Foo:1.0"), []string{"app1", "app2"}},
		{"services by address", svc.FindServicesByAddress("10.0.0.2:20880"), []string{"com.x.Foo:1.0"}},
		{"services by application", svc.FindServicesByApplication("app1"), []string{"com.x.Bar", "com.x.Foo:1.0"}},
		{"methods", svc.FindMethodsByService("com.x.Foo:1.0"), []string{"delete", "get", "put"}},
	}
	for _, c := range checks {
		if diff := cmp.Diff(c.want, c.got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", c.name, diff)
		}
	}

	p, err := svc.FindByServiceAndAddress("com.x.Foo:1.0", "10.0.0.2:20880")
	if err != nil || p.Application != "app2" {
		t.Errorf("FindByServiceAndAddress = %+v, %v", p, err)
	}
	if _, err := svc.FindByServiceAndAddress("com.x.Foo:1.0", "10.9.9.9:1"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("missing provider error = %v, want NOT_FOUND", err)
	}

	byID, err := svc.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if diff := cmp.Diff(p, byID); diff != "" {
		t.Errorf("FindByID mismatch (-want +got):\n%s", diff)
	}
	if _, err := svc.FindByID(9999); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("FindByID(9999) error = %v, want NOT_FOUND", err)
	}
}

func TestProviderService_StaticLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.svcs.Providers

	err := svc.Create(ctx, &Provider{
		Service:    "com.x.Foo:1.0",
		URL:        "dubbo://10.0.0.9:20880/com.x.Foo",
		Parameters: "application=ops",
		Dynamic:    true,
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	p := onlyProvider(t, svc, "com.x.Foo:1.0")
	if p.Dynamic {
		t.Error("created providers must be static")
	}

	if err := svc.Disable(ctx, p.ID); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	p = onlyProvider(t, svc, "com.x.Foo:1.0")
	if p.Enabled {
		t.Error("provider still enabled after Disable")
	}
	if err := svc.Enable(ctx, p.ID); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	p = onlyProvider(t, svc, "com.x.Foo:1.0")
	if !p.Enabled {
		t.Error("provider still disabled after Enable")
	}

	if err := svc.HalveWeight(ctx, p.ID); err != nil {
		t.Fatalf("HalveWeight: %v", err)
	}
	p = onlyProvider(t, svc, "com.x.Foo:1.0")
	if p.Weight != 50 {
		t.Errorf("weight after halving = %d, want 50", p.Weight)
	}
	if err := svc.DoubleWeight(ctx, p.ID); err != nil {
		t.Fatalf("DoubleWeight: %v", err)
	}
	p = onlyProvider(t, svc, "com.x.Foo:1.0")
	if p.Weight != 100 {
		t.Errorf("weight after doubling = %d, want 100", p.Weight)
	}
	if _, ok := record.ParseQueryString(p.Parameters)[record.KeyWeight]; ok {
		t.Errorf("default weight should not be written, parameters %q", p.Parameters)
	}

	if len(env.svcs.Overrides.FindAll()) != 0 {
		t.Error("static providers must not create overrides")
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := len(svc.FindAll()); n != 0 {
		t.Errorf("providers after Delete = %d, want 0", n)
	}
}

func TestProviderService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "dubbo://10.0.0.1:20880/com.x.Foo?dynamic=false&interface=com.x.Foo&timeout=100")
	svc := env.svcs.Providers

	p := onlyProvider(t, svc, "com.x.Foo")
	stale := *p
	p.Parameters = "dynamic=false&interface=com.x.Foo&timeout=200"
	if err := svc.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := onlyProvider(t, svc, "com.x.Foo")
	if got.Parameters != "dynamic=false&interface=com.x.Foo&timeout=200" {
		t.Errorf("parameters = %q", got.Parameters)
	}

	if err := svc.Update(ctx, &stale); !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("stale Update error = %v, want CONFLICT", err)
	}
	if err := svc.Update(ctx, &Provider{ID: got.ID, URL: got.URL}); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid Update error = %v, want INVALID_INPUT", err)
	}
}

func TestProviderService_DeleteDynamicRejected(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dubbo://10.0.0.1:20880/com.x.Foo?interface=com.x.Foo")
	p := onlyProvider(t, env.svcs.Providers, "com.x.Foo")

	err := env.svcs.Providers.Delete(context.Background(), p.ID)
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Delete(dynamic) error = %v, want INVALID_INPUT", err)
	}
	if _, err := env.svcs.Providers.FindByID(p.ID); err != nil {
		t.Errorf("dynamic provider removed: %v", err)
	}
}

func TestProviderService_DynamicEnableDisable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "dubbo://10.0.0.1:20880/com.x.Foo?application=app1&interface=com.x.Foo&version=1.0")
	svc := env.svcs.Providers
	p := onlyProvider(t, svc, "com.x.Foo:1.0")

	if err := svc.Disable(ctx, p.ID); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	overrides := env.svcs.Overrides.FindByServiceAndAddress(p.Service, p.Address)
	if len(overrides) != 1 || overrides[0].Params != "disabled=true" {
		t.Fatalf("overrides after Disable = %+v", overrides)
	}
	if IsProviderEnabled(p, overrides) {
		t.Error("provider should be disabled by the override")
	}
	if again := onlyProvider(t, svc, "com.x.Foo:1.0"); again.ID != p.ID {
		t.Error("dynamic provider record must not be re-registered")
	}

	if err := svc.Disable(ctx, p.ID); err != nil {
		t.Fatalf("second Disable: %v", err)
	}
	if n := len(env.svcs.Overrides.FindAll()); n != 1 {
		t.Errorf("overrides after second Disable = %d, want 1", n)
	}

	if err := svc.Enable(ctx, p.ID); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if n := len(env.svcs.Overrides.FindAll()); n != 0 {
		t.Errorf("overrides after Enable = %d, want 0", n)
	}
}

func TestProviderService_DynamicWeight(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "dubbo://10.0.0.1:20880/com.x.Foo?interface=com.x.Foo")
	svc := env.svcs.Providers
	p := onlyProvider(t, svc, "com.x.Foo")

	if err := svc.DoubleWeight(ctx, p.ID); err != nil {
		t.Fatalf("DoubleWeight: %v", err)
	}
	overrides := env.svcs.Overrides.FindByServiceAndAddress(p.Service, p.Address)
	if got := ProviderWeight(p, overrides); got != 200 {
		t.Errorf("weight after doubling = %d, want 200", got)
	}
	weights := OverridesToWeights(overrides)
	if len(weights) != 1 || weights[0].Weight != 200 || weights[0].Address != p.Address {
		t.Errorf("weights = %+v", weights)
	}

	if err := svc.HalveWeight(ctx, p.ID); err != nil {
		t.Fatalf("HalveWeight: %v", err)
	}
	if n := len(env.svcs.Overrides.FindAll()); n != 0 {
		t.Errorf("overrides after returning to the default weight = %d, want 0", n)
	}
}

func TestProviderService_UnknownID(t *testing.T) {
	ctx := context.Background()
	svc := newTestEnv(t).svcs.Providers

	for name, op := range map[string]func(context.Context, int64) error{
		"enable":  svc.Enable,
		"disable": svc.Disable,
		"double":  svc.DoubleWeight,
		"halve":   svc.HalveWeight,
		"delete":  svc.Delete,
	} {
		if err := op(ctx, 42); !errors.IsCode(err, errors.ErrCodeConflict) {
			t.Errorf("%s(42) error = %v, want CONFLICT", name, err)
		}
	}
	if err := svc.Enable(ctx, 0); !errors.IsCode(err, errors.ErrCodeMissingField) {
		t.Errorf("Enable(0) error = %v, want MISSING_FIELD", err)
	}
}

func TestConsumerService(t *testing.T) {
	env := newTestEnv(t)
	env.register(t,
		"consumer://10.0.0.5/com.x.Foo?application=web&category=consumers&interface=com.x.Foo&version=1.0",
		"consumer://10.0.0.6/com.x.Foo?application=batch&category=consumers&interface=com.x.Foo&version=1.0",
		"consumer://10.0.0.5/com.x.Bar?application=web&category=consumers&interface=com.x.Bar",
	)
	svc := env.svcs.Consumers

	if n := len(svc.FindAll()); n != 3 {
		t.Errorf("FindAll = %d, want 3", n)
	}
	if n := len(svc.FindByService("com.x.Foo:1.0")); n != 2 {
		t.Errorf("FindByService = %d, want 2", n)
	}
	byAddr := svc.FindByAddress("10.0.0.5")
	if len(byAddr) != 2 || byAddr[0].Address != "10.0.0.5" {
		t.Errorf("FindByAddress = %+v", byAddr)
	}
	if n := len(svc.FindByApplication("batch")); n != 1 {
		t.Errorf("FindByApplication = %d, want 1", n)
	}
	if diff := cmp.Diff([]string{"com.x.Bar", "com.x.Foo:1.0"}, svc.FindServices()); diff != "" {
		t.Errorf("FindServices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"10.0.0.5", "10.0.0.6"}, svc.FindAddresses()); diff != "" {
		t.Errorf("FindAddresses mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"batch", "web"}, svc.FindApplications()); diff != "" {
		t.Errorf("FindApplications mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"com.x.Bar", "com.x.Foo:1.0"}, svc.FindServicesByApplication("web")); diff != "" {
		t.Errorf("FindServicesByApplication mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"batch", "web"}, svc.FindApplicationsByService("com.x.Foo:1.0")); diff != "" {
		t.Errorf("FindApplicationsByService mismatch (-want +got):\n%s", diff)
	}

	c := byAddr[0]
	got, err := svc.FindByID(c.ID)
	if err != nil || got.Service != c.Service {
		t.Errorf("FindByID = %+v, %v", got, err)
	}
}

func TestRouteService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.svcs.Routes

	err := svc.Create(ctx, &Route{
		Name:    "canary",
		Service: "com.x.Foo:1.0",
		Enabled: true,
		Force:   true,
		Rule:    "host = 10.0.0.1 => host = 10.0.0.2",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	routes := svc.FindByService("com.x.Foo:1.0")
	if len(routes) != 1 || routes[0].Rule != "host = 10.0.0.1 => host = 10.0.0.2" {
		t.Fatalf("FindByService = %+v", routes)
	}
	if n := len(svc.FindForceRouteByService("com.x.Foo:1.0")); n != 1 {
		t.Errorf("FindForceRouteByService = %d, want 1", n)
	}
	if n := len(svc.FindForceRouteByAddress(record.AnyHost)); n != 1 {
		t.Errorf("FindForceRouteByAddress = %d, want 1", n)
	}
	if n := len(svc.FindByAddress("10.0.0.1")); n != 0 {
		t.Errorf("FindByAddress(other) = %d, want 0", n)
	}

	rt := routes[0]
	if err := svc.Disable(ctx, rt.ID); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	routes = svc.FindAll()
	if len(routes) != 1 || routes[0].Enabled {
		t.Fatalf("routes after Disable = %+v", routes)
	}
	if err := svc.Enable(ctx, rt.ID); !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("Enable(stale id) error = %v, want CONFLICT", err)
	}

	updated := *routes[0]
	updated.Rule = "host = 10.0.0.3 => host = 10.0.0.4"
	updated.Force = false
	if err := svc.Update(ctx, &updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	routes = svc.FindAll()
	if len(routes) != 1 || routes[0].Rule != updated.Rule || routes[0].Force {
		t.Fatalf("routes after Update = %+v", routes)
	}
	if n := len(svc.FindAllForceRoutes()); n != 0 {
		t.Errorf("force routes after Update = %d, want 0", n)
	}

	got, err := svc.FindByID(routes[0].ID)
	if err != nil || got.Name != "canary" {
		t.Errorf("FindByID = %+v, %v", got, err)
	}

	if err := svc.Delete(ctx, routes[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := len(svc.FindAll()); n != 0 {
		t.Errorf("routes after Delete = %d, want 0", n)
	}
	if err := svc.Delete(ctx, routes[0].ID); !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("second Delete error = %v, want CONFLICT", err)
	}
}

func TestRouteService_Validation(t *testing.T) {
	svc := newTestEnv(t).svcs.Routes
	tests := []struct {
		name string
		rt   *Route
	}{
		{"missing name", &Route{Service: "com.x.Foo", Rule: "a => b"}},
		{"bad name", &Route{Name: "a&b", Service: "com.x.Foo", Rule: "a => b"}},
		{"missing rule", &Route{Name: "r", Service: "com.x.Foo"}},
		{"bad service", &Route{Name: "r", Service: "com.x.Foo bar", Rule: "a => b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Create(context.Background(), tt.rt); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Create error = %v, want INVALID_INPUT", err)
			}
		})
	}
	if err := svc.Create(context.Background(), nil); !errors.IsCode(err, errors.ErrCodeMissingField) {
		t.Errorf("Create(nil) error = %v, want MISSING_FIELD", err)
	}
}

func TestOverrideService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.svcs.Overrides

	saves := []*Override{
		{Service: "com.x.Foo:1.0", Address: "10.0.0.1:20880", Application: "app1", Params: "timeout=500", Enabled: true},
		{Service: "com.x.Foo:1.0", Application: "app2", Params: "weight=50", Enabled: true},
		{Service: "com.x.Bar", Address: "10.0.0.1:20880", Params: "mock=force", Enabled: true},
	}
	for _, o := range saves {
		if err := svc.Save(ctx, o); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	counts := []struct {
		name string
		got  []*Override
		want int
	}{
		{"all", svc.FindAll(), 3},
		{"service", svc.FindByService("com.x.Foo:1.0"), 2},
		{"address", svc.FindByAddress("10.0.0.1:20880"), 2},
		{"application", svc.FindByApplication("app2"), 1},
		{"service and address", svc.FindByServiceAndAddress("com.x.Foo:1.0", "10.0.0.1:20880"), 1},
		{"service and application", svc.FindByServiceAndApplication("com.x.Foo:1.0", "app1"), 1},
	}
	for _, c := range counts {
		if len(c.got) != c.want {
			t.Errorf("%s: got %d overrides, want %d", c.name, len(c.got), c.want)
		}
	}

	if wildcard := svc.FindByApplication("app2")[0]; wildcard.Address != "" {
		t.Errorf("any-address override read back with Address %q, want empty", wildcard.Address)
	}

	o := svc.FindByServiceAndApplication("com.x.Foo:1.0", "app1")[0]
	if err := svc.Disable(ctx, o.ID); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	o = svc.FindByServiceAndApplication("com.x.Foo:1.0", "app1")[0]
	if o.Enabled {
		t.Error("override still enabled after Disable")
	}
	if err := svc.Enable(ctx, o.ID); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	o = svc.FindByServiceAndApplication("com.x.Foo:1.0", "app1")[0]
	if !o.Enabled {
		t.Error("override still disabled after Enable")
	}

	stale := *o
	o.Params = "timeout=900"
	if err := svc.Update(ctx, o); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := svc.FindByServiceAndApplication("com.x.Foo:1.0", "app1")
	if len(got) != 1 || got[0].Params != "timeout=900" {
		t.Fatalf("overrides after Update = %+v", got)
	}
	if err := svc.Update(ctx, &stale); !errors.IsCode(err, errors.ErrCodeConflict) {
		t.Errorf("stale Update error = %v, want CONFLICT", err)
	}

	if err := svc.Delete(ctx, got[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := len(svc.FindAll()); n != 2 {
		t.Errorf("overrides after Delete = %d, want 2", n)
	}
	if _, err := svc.FindByID(got[0].ID); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("FindByID(deleted) error = %v, want NOT_FOUND", err)
	}
}

func TestOverrideService_SaveValidates(t *testing.T) {
	svc := newTestEnv(t).svcs.Overrides
	if err := svc.Save(context.Background(), &Override{Params: "weight=1"}); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save error = %v, want INVALID_INPUT", err)
	}
}

// flakyRegistry fails the first n writes with a retryable error.
type flakyRegistry struct {
	registry.Registry
	failures int
	err      error
	calls    int
}

func (f *flakyRegistry) Register(ctx context.Context, r *record.Record) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.Registry.Register(ctx, r)
}

func TestWriter_Retries(t *testing.T) {
	retry := resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	r := record.MustParse("dubbo://10.0.0.1:20880/com.x.Foo")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"transient", 2, errors.ServiceUnavailable("registry"), 3, false},
		{"exhausted", 5, errors.ServiceUnavailable("registry"), 3, true},
		{"permanent", 5, errors.InvalidInput("record", "bad"), 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &flakyRegistry{Registry: memory.New(logger.Nop()), failures: tt.failures, err: tt.err}
			w := NewWriter(reg, logger.Nop(), retry)

			err := w.Register(context.Background(), r)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register error = %v, wantErr %v", err, tt.wantErr)
			}
			if reg.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", reg.calls, tt.wantCalls)
			}
		})
	}
}

func TestWriter_ReplaceIdentical(t *testing.T) {
	reg := memory.New(logger.Nop())
	w := NewWriter(reg, logger.Nop(), DefaultWriteRetry())
	r := record.MustParse("dubbo://10.0.0.1:20880/com.x.Foo")
	ctx := context.Background()

	if err := w.Register(ctx, r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := w.Replace(ctx, r, record.MustParse(r.FullString())); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n := len(reg.Records()); n != 1 {
		t.Errorf("records after identical Replace = %d, want 1", n)
	}
}

func TestFind_Query(t *testing.T) {
	env := newTestEnv(t)
	env.register(t,
		"dubbo://10.0.0.1:20880/com.x.Foo?application=app1&interface=com.x.Foo",
		"dubbo://10.0.0.2:20880/com.x.Foo?application=app2&interface=com.x.Foo",
		"dubbo://10.0.0.1:20880/com.x.Bar?application=app1&interface=com.x.Bar",
		"route://0.0.0.0/com.x.Foo?category=routers&force=true&name=r1&rule=host%3D1",
		"route://0.0.0.0/com.x.Foo?category=routers&name=r2&rule=host%3D2",
	)

	tests := []struct {
		name string
		q    Query
		want int
	}{
		{"all", Query{}, 3},
		{"service", Query{Service: "com.x.Foo"}, 2},
		{"service and application", Query{Service: "com.x.Foo", Application: "app2"}, 1},
		{"address", Query{Address: "10.0.0.1:20880"}, 2},
		{"no match", Query{Service: "com.x.Bar", Application: "app2"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(env.svcs.Providers.Find(tt.q)); got != tt.want {
				t.Errorf("Find(%+v) = %d providers, want %d", tt.q, got, tt.want)
			}
		})
	}

	if got := len(env.svcs.Routes.Find(Query{Service: "com.x.Foo"})); got != 2 {
		t.Errorf("routes = %d, want 2", got)
	}
	forced := env.svcs.Routes.Find(Query{Force: true})
	if len(forced) != 1 || forced[0].Name != "r1" {
		t.Errorf("force routes = %+v, want r1 only", forced)
	}
}
