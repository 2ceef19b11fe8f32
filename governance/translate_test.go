package governance

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/govkit/record"
)

func TestToProvider_EndToEndScenario(t *testing.T) {
	r := record.MustParse("dubbo://10.0.0.1:20880/com.x.Foo?category=providers&version=1.0&application=app1")

	got := ToProvider(1, r)
	want := &Provider{
		ID:          1,
		Service:     "com.x.Foo:1.0",
		Address:     "10.0.0.1:20880",
		Application: "app1",
		URL:         "dubbo://10.0.0.1:20880/com.x.Foo",
		Parameters:  "application=app1&category=providers&version=1.0",
		Dynamic:     true,
		Enabled:     true,
		Weight:      100,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToProvider mismatch (-want +got):\n%s", diff)
	}
}

func TestToProvider_ExplicitParameters(t *testing.T) {
	r := record.MustParse("dubbo://10.0.0.2:20880/com.x.Foo?dynamic=false&enabled=false&weight=50&owner=alice")
	p := ToProvider(2, r)
	if p.Dynamic || p.Enabled {
		t.Errorf("Dynamic=%v Enabled=%v, want both false", p.Dynamic, p.Enabled)
	}
	if p.Weight != 50 {
		t.Errorf("Weight = %d, want 50", p.Weight)
	}
	if p.Username != "alice" {
		t.Errorf("Username = %q, want alice", p.Username)
	}
}

func TestToProvider_MalformedWeight(t *testing.T) {
	p := ToProvider(1, record.MustParse("dubbo://h:1/com.x.Foo?weight=heavy"))
	if p.Weight != record.DefaultWeight {
		t.Errorf("Weight = %d, want default", p.Weight)
	}
}

func TestToConsumer(t *testing.T) {
	r := record.MustParse("consumer://10.0.0.5:41000/com.x.Foo?application=web&category=consumers&interface=com.x.Foo&version=1.0")
	got := ToConsumer(9, r)
	want := &Consumer{
		ID:          9,
		Service:     "com.x.Foo:1.0",
		Address:     "10.0.0.5",
		Application: "web",
		Parameters:  "application=web&category=consumers&interface=com.x.Foo&version=1.0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToConsumer mismatch (-want +got):\n%s", diff)
	}
}

func TestToRoute_Defaults(t *testing.T) {
	r := record.MustParse("route://0.0.0.0/com.x.Foo?category=routers&rule=host%3D1+%3D%3E+host%3D2")
	got := ToRoute(4, r)
	want := &Route{ID: 4, Service: "com.x.Foo", Enabled: true, Rule: "host=1 => host=2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToRoute mismatch (-want +got):\n%s", diff)
	}
}

func TestToOverride(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *Override
	}{
		{
			name: "address kept",
			raw:  "override://10.0.0.1:20880/com.x.Foo?application=app1&category=configurators&dynamic=false&enabled=true&interface=com.x.Foo&timeout=500&version=1.0",
			want: &Override{ID: 1, Service: "com.x.Foo:1.0", Address: "10.0.0.1:20880", Application: "app1", Params: "timeout=500", Enabled: true},
		},
		{
			name: "any host dropped",
			raw:  "override://0.0.0.0/com.x.Foo?anyhost=true&category=configurators&weight=50",
			want: &Override{ID: 1, Service: "com.x.Foo", Params: "anyhost=true&weight=50", Enabled: true},
		},
		{
			name: "any host without flag kept",
			raw:  "override://0.0.0.0/com.x.Foo?category=configurators&enabled=false&weight=50",
			want: &Override{ID: 1, Service: "com.x.Foo", Address: "0.0.0.0", Params: "weight=50", Enabled: false},
		},
		{
			name: "application from username",
			raw:  "override://admin@10.0.0.1/com.x.Foo?category=configurators&mock=force",
			want: &Override{ID: 1, Service: "com.x.Foo", Address: "10.0.0.1", Application: "admin", Params: "mock=force", Enabled: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToOverride(1, record.MustParse(tt.raw))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ToOverride mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranslators_Nil(t *testing.T) {
	if ToProvider(1, nil) != nil || ToConsumer(1, nil) != nil || ToRoute(1, nil) != nil || ToOverride(1, nil) != nil {
		t.Error("translators must return nil for a nil record")
	}
}

func TestListTranslators_SortedByID(t *testing.T) {
	m := map[int64]*record.Record{
		30: record.MustParse("dubbo://10.0.0.3:1/com.x.Foo"),
		10: record.MustParse("dubbo://10.0.0.1:1/com.x.Foo"),
		20: record.MustParse("dubbo://10.0.0.2:1/com.x.Foo"),
		40: nil,
	}
	got := ToProviders(m)
	var ids []int64
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	if diff := cmp.Diff([]int64{10, 20, 30}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	if got := ToRoutes(nil); got == nil || len(got) != 0 {
		t.Errorf("ToRoutes(nil) = %v, want empty slice", got)
	}
}

func TestProviderToRecord_RoundTrip(t *testing.T) {
	r := record.MustParse("dubbo://10.0.0.1:20880/com.x.Foo?application=app1&category=providers&interface=com.x.Foo&version=1.0")
	p := ToProvider(7, r)

	back, err := p.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	if !back.Equal(r) {
		t.Errorf("round trip = %s, want %s", back, r)
	}
}

func TestProviderToRecord_ValuelessParameter(t *testing.T) {
	p := &Provider{
		Service:    "com.x.Foo",
		URL:        "dubbo://10.0.0.1:20880/com.x.Foo",
		Parameters: "anyhost&application=app1",
		Dynamic:    true,
		Enabled:    true,
	}
	r, err := p.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	want := record.MustParse("dubbo://10.0.0.1:20880/com.x.Foo?anyhost&application=app1&interface=com.x.Foo")
	if !r.Equal(want) {
		t.Errorf("ToRecord = %s, want %s", r, want)
	}
}

func TestProviderToRecord_StaticAndDisabled(t *testing.T) {
	p := &Provider{
		Service: "g/com.x.Foo:2.0",
		URL:     "dubbo://10.0.0.9:20880/com.x.Foo",
		Enabled: false,
	}
	r, err := p.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	want := "dubbo://10.0.0.9:20880/com.x.Foo?dynamic=false&enabled=false&group=g&interface=com.x.Foo&version=2.0"
	if r.FullString() != want {
		t.Errorf("ToRecord = %s, want %s", r, want)
	}

	p.Enabled = true
	p.Parameters = "enabled=false"
	r, _ = p.ToRecord()
	if r.HasParam(record.KeyEnabled) {
		t.Errorf("enabling should drop the enabled parameter, got %s", r)
	}
}

func TestProviderToRecord_BadURL(t *testing.T) {
	p := &Provider{Service: "com.x.Foo", URL: "dubbo://host:port/com.x.Foo"}
	if _, err := p.ToRecord(); err == nil {
		t.Error("expected error for a malformed URL")
	}
}

func TestRouteToRecord_RoundTrip(t *testing.T) {
	rt := &Route{
		Name:     "blacklist",
		Service:  "g/com.x.Foo:1.0",
		Priority: 2,
		Enabled:  true,
		Force:    true,
		Rule:     "host = 10.0.0.1 => host != 10.0.0.2",
	}
	r := rt.ToRecord()
	if r.Protocol() != record.ProtocolRoute || r.Host() != record.AnyHost || r.Category() != record.CategoryRouters {
		t.Errorf("unexpected route record %s", r)
	}

	got := ToRoute(5, r)
	want := *rt
	want.ID = 5
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestOverrideToRecord_RoundTrip(t *testing.T) {
	o := &Override{
		Service:     "com.x.Foo:1.0",
		Address:     "10.0.0.1:20880",
		Application: "app1",
		Params:      "timeout=500&weight=200",
		Enabled:     false,
	}
	r := o.ToRecord()
	if r.Protocol() != record.ProtocolOverride || r.Category() != record.CategoryConfigurators {
		t.Errorf("unexpected override record %s", r)
	}

	got := ToOverride(3, r)
	want := *o
	want.ID = 3
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestOverrideToRecord_AnyAddress(t *testing.T) {
	r := (&Override{Service: "com.x.Foo", Params: "weight=10", Enabled: true}).ToRecord()
	if r.Host() != record.AnyHost || r.Port() != 0 {
		t.Errorf("address = %s, want any host", r.Address())
	}
	if !r.BoolParam(record.KeyAnyHost, false) {
		t.Errorf("anyhost = %q, want true", r.Param(record.KeyAnyHost))
	}

	got := ToOverride(4, r)
	if got.Address != "" {
		t.Errorf("Address = %q, want empty", got.Address)
	}
	if got.Params != "anyhost=true&weight=10" {
		t.Errorf("Params = %q, want %q", got.Params, "anyhost=true&weight=10")
	}

	// Saving the view again keeps it an any-address override.
	again := ToOverride(4, got.ToRecord())
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("second round trip mismatch (-want +got):\n%s", diff)
	}
}
